package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventasoft/facturacion-cpe/internal/application/billing"
	"github.com/ventasoft/facturacion-cpe/internal/application/dto"
	"github.com/ventasoft/facturacion-cpe/internal/domain"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat"
	apphttp "github.com/ventasoft/facturacion-cpe/internal/interfaces/http"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
	"github.com/ventasoft/facturacion-cpe/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// billServiceAceptaTodo responde siempre con un CDR de aceptación.
type billServiceAceptaTodo struct{ t *testing.T }

func (m billServiceAceptaTodo) SendBill(ctx context.Context, nombreZip string, zipBytes []byte) (*sunat.RespuestaEnvio, error) {
	xml := `<?xml version="1.0"?>
<ApplicationResponse>
  <DocumentResponse>
    <Response><ResponseCode>0</ResponseCode><Description>aceptada</Description></Response>
  </DocumentResponse>
</ApplicationResponse>`
	cdrZip, _, err := sunat.EmpaquetarXML([]byte(xml), "R-cdr.xml")
	require.NoError(m.t, err)
	return &sunat.RespuestaEnvio{CDRZip: cdrZip}, nil
}

func (m billServiceAceptaTodo) GetStatus(ctx context.Context, ticket string) (*sunat.RespuestaEstado, error) {
	return &sunat.RespuestaEstado{StatusCode: "98"}, nil
}

// repoMemoria repositorio de envíos en memoria.
type repoMemoria struct {
	mu     sync.Mutex
	envios map[string]entity.EnvioCPE
}

func nuevoRepoMemoria() *repoMemoria {
	return &repoMemoria{envios: map[string]entity.EnvioCPE{}}
}

func (r *repoMemoria) Create(ctx context.Context, e *entity.EnvioCPE) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envios[e.ID] = *e
	return nil
}

func (r *repoMemoria) Update(ctx context.Context, e *entity.EnvioCPE) error {
	return r.Create(ctx, e)
}

func (r *repoMemoria) GetByID(ctx context.Context, id string) (*entity.EnvioCPE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.envios[id]; ok {
		copia := e
		return &copia, nil
	}
	return nil, domain.ErrNotFound
}

func (r *repoMemoria) GetUltimoPorComprobante(ctx context.Context, comprobanteID string) (*entity.EnvioCPE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.envios {
		if e.ComprobanteID == comprobanteID {
			copia := e
			return &copia, nil
		}
	}
	return nil, nil
}

func buildTestApp(t *testing.T) (*fiber.App, *repoMemoria, *billing.Despachador) {
	t.Helper()
	repo := nuevoRepoMemoria()
	cliente := billing.NewClienteTransmision(
		billing.ConfigTransmision{
			RUC:        "20123456789",
			SOLUsuario: "MODDATOS",
			SOLClave:   "moddatos",
			Entorno:    sunat.EntornoBeta,
			CertPath:   "/etc/cpe/cert.pfx",
			EsperaBase: time.Millisecond,
		},
		&entity.Empresa{
			RUC:          "20123456789",
			RazonSocial:  "VENTASOFT S.A.C.",
			Direccion:    "Av. Arequipa 1234",
			Departamento: "LIMA",
			Provincia:    "LIMA",
			Distrito:     "LIMA",
			Ubigeo:       "150101",
		},
		sunat.NewXMLBuilderService(),
		pkgcpe.FirmadorNoOp{},
		billServiceAceptaTodo{t: t},
		repo,
		logger.Nop(),
	)
	despachador := billing.NewDespachador(cliente, 2, logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Cliente:     cliente,
		Despachador: despachador,
		Envios:      repo,
	})
	return app, repo, despachador
}

func bodyEnviar(correlativo int) []byte {
	return []byte(fmt.Sprintf(`{
		"tipo": "BOLETA",
		"serie": "B001",
		"correlativo": %d,
		"moneda": "PEN",
		"cliente": {"tipo_documento": "1", "numero_documento": "44556677", "razon_social": "JUAN PEREZ"},
		"items": [
			{"descripcion": "Producto de prueba", "cantidad": "2", "precio_unitario": "10.00", "afectacion": "10"}
		]
	}`, correlativo))
}

func hacerPost(t *testing.T, app *fiber.App, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/api/cpe/enviar", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/cpe/enviar
// ──────────────────────────────────────────────────────────────────────────────

func TestEnviarEncolaYResponde202(t *testing.T) {
	app, repo, despachador := buildTestApp(t)
	defer despachador.Cerrar()

	resp := hacerPost(t, app, bodyEnviar(1))

	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	var out dto.EnvioAceptadoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.EnvioID)
	assert.Equal(t, "20123456789-03-B001-00000001.xml", out.NombreXML)
	assert.Equal(t, entity.EnvioPendiente, out.Estado)

	// El registro existe desde antes de transmitir.
	guardado, err := repo.GetByID(context.Background(), out.EnvioID)
	require.NoError(t, err)
	assert.NotNil(t, guardado)
}

func TestEnviarCuerpoInvalido(t *testing.T) {
	app, _, despachador := buildTestApp(t)
	defer despachador.Cerrar()

	resp := hacerPost(t, app, []byte("{esto no es json"))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnviarComprobanteInvalido(t *testing.T) {
	app, _, despachador := buildTestApp(t)
	defer despachador.Cerrar()

	// Sin ítems: la validación de dominio responde 422 con el detalle.
	body := []byte(`{
		"tipo": "BOLETA",
		"serie": "B001",
		"correlativo": 9,
		"cliente": {"tipo_documento": "1", "numero_documento": "44556677", "razon_social": "JUAN PEREZ"},
		"items": []
	}`)
	resp := hacerPost(t, app, body)

	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "errores")
}

func TestEnviarFechaInvalida(t *testing.T) {
	app, _, despachador := buildTestApp(t)
	defer despachador.Cerrar()

	body := []byte(`{"tipo": "BOLETA", "serie": "B001", "correlativo": 1, "fecha_emision": "15/08/2026",
		"cliente": {"tipo_documento": "1", "numero_documento": "44556677", "razon_social": "JP"},
		"items": [{"descripcion": "x", "cantidad": "1", "precio_unitario": "1.00"}]}`)
	resp := hacerPost(t, app, body)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/cpe/envios/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestGetEnvioPorID(t *testing.T) {
	app, repo, despachador := buildTestApp(t)
	defer despachador.Cerrar()
	require.NoError(t, repo.Create(context.Background(), &entity.EnvioCPE{
		ID:            "env-123",
		ComprobanteID: "cmp-1",
		NombreXML:     "20123456789-03-B001-00000001.xml",
		Estado:        entity.EnvioAceptado,
		CodigoCDR:     "0",
		Intentos:      1,
	}))

	req, err := http.NewRequest(http.MethodGet, "/api/cpe/envios/env-123", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.EnvioResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.EnvioAceptado, out.Estado)
	assert.Equal(t, "0", out.CodigoCDR)
}

func TestGetEnvioNoExiste(t *testing.T) {
	app, _, despachador := buildTestApp(t)
	defer despachador.Cerrar()

	req, err := http.NewRequest(http.MethodGet, "/api/cpe/envios/no-existe", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
