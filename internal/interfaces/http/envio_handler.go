package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ventasoft/facturacion-cpe/internal/application/billing"
	"github.com/ventasoft/facturacion-cpe/internal/application/dto"
	"github.com/ventasoft/facturacion-cpe/internal/domain"
	domaincpe "github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
)

// EnvioReader consulta de envíos para la API (subconjunto del repositorio).
type EnvioReader interface {
	GetByID(ctx context.Context, id string) (*entity.EnvioCPE, error)
}

// EnvioHandler maneja las peticiones HTTP de emisión de comprobantes.
type EnvioHandler struct {
	cliente     *billing.ClienteTransmision
	despachador *billing.Despachador
	envios      EnvioReader
}

// NewEnvioHandler construye el handler.
func NewEnvioHandler(cliente *billing.ClienteTransmision, despachador *billing.Despachador, envios EnvioReader) *EnvioHandler {
	return &EnvioHandler{cliente: cliente, despachador: despachador, envios: envios}
}

// Enviar valida el comprobante, crea el registro de envío y lo encola hacia
// SUNAT. Responde 202: la transmisión ocurre en segundo plano.
// POST /api/cpe/enviar
func (h *EnvioHandler) Enviar(c *fiber.Ctx) error {
	var in dto.EnviarCPERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	comp, err := mapearComprobante(in)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	envio, err := h.cliente.Preparar(c.Context(), comp)
	if err != nil {
		return responderErrorEnvio(c, err)
	}
	// El trabajo usa un contexto propio: los reintentos sobreviven a la
	// petición HTTP que los originó.
	if err := h.despachador.Encolar(context.Background(), envio, comp); err != nil {
		return responderErrorEnvio(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.EnvioAceptadoResponse{
		EnvioID:   envio.ID,
		NombreXML: envio.NombreXML,
		Estado:    envio.Estado,
	})
}

// GetByID consulta el estado de un envío.
// GET /api/cpe/envios/:id
func (h *EnvioHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	envio, err := h.envios.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "envío no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(billing.Snapshot(envio))
}

// responderErrorEnvio traduce la taxonomía de fallas de transmisión a HTTP.
func responderErrorEnvio(c *fiber.Ctx, err error) error {
	var ev *billing.ErrorValidacion
	if errors.As(err, &ev) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"code":    "VALIDATION",
			"message": "el comprobante no cumple las reglas de emisión",
			"errores": ev.Errores,
		})
	}
	switch {
	case errors.Is(err, domain.ErrEnvioYaAceptado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "YA_ACEPTADO", Message: "el comprobante ya fue aceptado por SUNAT"})
	case errors.Is(err, billing.ErrConfiguracion):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CONFIG", Message: err.Error()})
	case errors.Is(err, billing.ErrColaLlena), errors.Is(err, billing.ErrDespachadorCerrado):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NO_DISPONIBLE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// mapearComprobante convierte el DTO de entrada en la entidad de dominio.
// Solo resuelve forma y defaults; las reglas de negocio las aplica Validar.
func mapearComprobante(in dto.EnviarCPERequest) (*entity.Comprobante, error) {
	fecha := time.Now()
	if in.FechaEmision != "" {
		var err error
		fecha, err = time.Parse("2006-01-02", in.FechaEmision)
		if err != nil {
			return nil, errors.New("fecha_emision inválida, formato esperado YYYY-MM-DD")
		}
	}

	comp := &entity.Comprobante{
		ID:           uuid.New().String(),
		Tipo:         in.Tipo,
		Serie:        in.Serie,
		Correlativo:  int64(in.Correlativo),
		FechaEmision: fecha,
		Moneda:       in.Moneda,
		Cliente: entity.Cliente{
			TipoDocumento:   in.Cliente.TipoDocumento,
			NumeroDocumento: in.Cliente.NumeroDocumento,
			RazonSocial:     in.Cliente.RazonSocial,
			Direccion:       entity.Direccion{Linea: in.Cliente.Direccion},
		},
	}
	for _, it := range in.Items {
		comp.Items = append(comp.Items, entity.ItemComprobante{
			Descripcion:    it.Descripcion,
			CodigoProducto: it.CodigoProducto,
			UnidadMedida:   it.UnidadMedida,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Afectacion:     it.Afectacion,
		})
	}
	comp.Totales = domaincpe.CalcularTotales(comp.Items)

	if in.Modifica != nil {
		tipoDoc := domaincpe.CodigoTipo(in.Modifica.Tipo)
		if tipoDoc == "" {
			return nil, fmt.Errorf("modifica.tipo desconocido %q", in.Modifica.Tipo)
		}
		comp.Modifica = &entity.ReferenciaModificacion{
			TipoDocumento: tipoDoc,
			SerieNumero:   fmt.Sprintf("%s-%08d", in.Modifica.Serie, in.Modifica.Correlativo),
			CodigoMotivo:  in.Modifica.Motivo,
			Motivo:        in.Modifica.Descripcion,
		}
	}
	return comp, nil
}
