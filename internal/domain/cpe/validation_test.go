package cpe_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func emisorValido() *entity.Empresa {
	return &entity.Empresa{
		RUC:          "20123456789",
		RazonSocial:  "Comercial Andina S.A.C.",
		Direccion:    "Av. Arequipa 1234",
		Departamento: "LIMA",
		Provincia:    "LIMA",
		Distrito:     "LINCE",
		Ubigeo:       "150116",
	}
}

// boletaValida es el ejemplo de referencia: 2 × 10.00 gravado
// → subtotal 20.00, IGV 3.60, total 23.60.
func boletaValida() *entity.Comprobante {
	return &entity.Comprobante{
		ID:           "cpe-001",
		Tipo:         entity.ComprobanteBoleta,
		Serie:        "B001",
		Correlativo:  1,
		FechaEmision: time.Date(2025, 7, 14, 10, 30, 0, 0, time.FixedZone("-05", -5*3600)),
		Moneda:       pkgcpe.MonedaSoles,
		Cliente: entity.Cliente{
			TipoDocumento:   pkgcpe.DocIdentidadDNI,
			NumeroDocumento: "45678912",
			RazonSocial:     "Juan Pérez Quispe",
		},
		Items: []entity.ItemComprobante{{
			Cantidad:       decimal.NewFromInt(2),
			PrecioUnitario: decimal.RequireFromString("10.00"),
			Descripcion:    "Gaseosa 500ml",
			CodigoProducto: "P0001",
			Afectacion:     pkgcpe.AfectacionGravado,
		}},
		Totales: entity.Totales{
			SubTotal: decimal.RequireFromString("20.00"),
			IGV:      decimal.RequireFromString("3.60"),
			Total:    decimal.RequireFromString("23.60"),
		},
	}
}

// ── casos válidos ─────────────────────────────────────────────────────────────

func TestValidar_BoletaDeReferencia(t *testing.T) {
	res := cpe.Validar(boletaValida(), emisorValido())
	assert.True(t, res.Valido, "la boleta de referencia debe ser válida: %v", res.Errores)
	assert.Empty(t, res.Errores)
}

func TestValidar_SerieDerivadaDeNumeroCompleto(t *testing.T) {
	comp := boletaValida()
	comp.Serie = ""
	comp.Correlativo = 0
	comp.NumeroCompleto = "B001-00000001"

	res := cpe.Validar(comp, emisorValido())
	assert.True(t, res.Valido, "serie y correlativo derivables del número combinado: %v", res.Errores)
}

// ── reglas del emisor ─────────────────────────────────────────────────────────

func TestValidar_RUCConLongitudIncorrecta(t *testing.T) {
	emisor := emisorValido()
	emisor.RUC = "123"

	res := cpe.Validar(boletaValida(), emisor)
	require.False(t, res.Valido)
	assert.Contains(t, res.Errores[0], "RUC", "el mensaje debe referirse al RUC del emisor")
	assert.Contains(t, res.Errores[0], "11 dígitos")
}

func TestValidar_RUCVacio(t *testing.T) {
	emisor := emisorValido()
	emisor.RUC = ""

	res := cpe.Validar(boletaValida(), emisor)
	require.False(t, res.Valido)
	assert.Contains(t, res.Errores[0], "RUC")
}

func TestValidar_DireccionEmisorFaltante(t *testing.T) {
	emisor := emisorValido()
	emisor.Direccion = "  "

	res := cpe.Validar(boletaValida(), emisor)
	require.False(t, res.Valido)
	require.Len(t, res.Errores, 1)
	assert.Contains(t, res.Errores[0], "dirección del emisor")
}

func TestValidar_MensajesDistintosPorRegla(t *testing.T) {
	// Un emisor casi vacío debe producir un mensaje distinto y no vacío por
	// cada regla incumplida, sin duplicados.
	res := cpe.Validar(boletaValida(), &entity.Empresa{})
	require.False(t, res.Valido)

	vistos := map[string]bool{}
	for _, msg := range res.Errores {
		require.NotEmpty(t, msg)
		assert.False(t, vistos[msg], "mensaje duplicado: %q", msg)
		vistos[msg] = true
	}
	assert.GreaterOrEqual(t, len(res.Errores), 6, "RUC + 5 campos de domicilio fiscal")
}

// ── reglas del comprobante ────────────────────────────────────────────────────

func TestValidar_SinItems(t *testing.T) {
	comp := boletaValida()
	comp.Items = nil
	comp.Totales = entity.Totales{}

	res := cpe.Validar(comp, emisorValido())
	require.False(t, res.Valido)
	assert.Contains(t, res.Errores, "el comprobante debe tener al menos un ítem")
}

func TestValidar_TotalNoPositivo(t *testing.T) {
	comp := boletaValida()
	comp.Totales.Total = decimal.Zero

	res := cpe.Validar(comp, emisorValido())
	require.False(t, res.Valido)

	var encontrado bool
	for _, msg := range res.Errores {
		if strings.Contains(msg, "total del comprobante debe ser mayor a cero") {
			encontrado = true
		}
	}
	assert.True(t, encontrado, "debe existir un mensaje sobre el total no positivo: %v", res.Errores)
}

func TestValidar_ClienteSinDocumento(t *testing.T) {
	comp := boletaValida()
	comp.Cliente.NumeroDocumento = ""

	res := cpe.Validar(comp, emisorValido())
	require.False(t, res.Valido)
	require.Len(t, res.Errores, 1)
	assert.Contains(t, res.Errores[0], "documento de identidad del cliente")
}

func TestValidar_CorrelativoCero(t *testing.T) {
	comp := boletaValida()
	comp.Correlativo = 0
	comp.Serie = "B001"

	res := cpe.Validar(comp, emisorValido())
	require.False(t, res.Valido)
	assert.Contains(t, res.Errores[0], "correlativo")
}

func TestValidar_TotalesIncoherentes(t *testing.T) {
	comp := boletaValida()
	comp.Totales.IGV = decimal.RequireFromString("9.99")
	comp.Totales.Total = decimal.RequireFromString("29.99")

	res := cpe.Validar(comp, emisorValido())
	require.False(t, res.Valido)
	assert.Contains(t, res.Errores[0], "IGV declarado")
}

func TestValidar_MixtoGravadoExonerado(t *testing.T) {
	// IGV solo sobre la línea gravada: 2×10.00 gravado + 1×5.00 exonerado
	// → subtotal 25.00, IGV 3.60, total 28.60.
	comp := boletaValida()
	comp.Items = append(comp.Items, entity.ItemComprobante{
		Cantidad:       decimal.NewFromInt(1),
		PrecioUnitario: decimal.RequireFromString("5.00"),
		Descripcion:    "Pan integral",
		Afectacion:     pkgcpe.AfectacionExonerado,
	})
	comp.Totales = entity.Totales{
		SubTotal: decimal.RequireFromString("25.00"),
		IGV:      decimal.RequireFromString("3.60"),
		Total:    decimal.RequireFromString("28.60"),
	}

	res := cpe.Validar(comp, emisorValido())
	assert.True(t, res.Valido, "documento mixto con IGV por línea: %v", res.Errores)
}
