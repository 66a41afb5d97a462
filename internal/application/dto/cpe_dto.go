package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Emisión ───────────────────────────────────────────────────────────────────

// EnviarCPERequest body para POST /api/cpe/enviar. Describe el comprobante a
// generar y transmitir; el emisor sale de la configuración del servicio.
type EnviarCPERequest struct {
	Tipo         string            `json:"tipo"`         // FACTURA|BOLETA|NOTA_CREDITO|NOTA_DEBITO
	Serie        string            `json:"serie"`        // F001, B001, ...
	Correlativo  int               `json:"correlativo"`  // > 0
	FechaEmision string            `json:"fecha_emision,omitempty"` // YYYY-MM-DD; por defecto hoy
	Moneda       string            `json:"moneda,omitempty"`        // default PEN
	Cliente      ClienteCPE        `json:"cliente"`
	Items        []ItemCPE         `json:"items"`
	Modifica     *ReferenciaCPE    `json:"modifica,omitempty"` // obligatorio para NC/ND
}

// ClienteCPE adquirente del comprobante.
type ClienteCPE struct {
	TipoDocumento   string `json:"tipo_documento"` // catálogo 06: 1=DNI, 6=RUC, ...
	NumeroDocumento string `json:"numero_documento"`
	RazonSocial     string `json:"razon_social"`
	Direccion       string `json:"direccion,omitempty"`
}

// ItemCPE línea del comprobante. PrecioUnitario es el valor unitario sin IGV.
type ItemCPE struct {
	Descripcion    string          `json:"descripcion"`
	CodigoProducto string          `json:"codigo_producto,omitempty"`
	UnidadMedida   string          `json:"unidad_medida,omitempty"` // default NIU
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Afectacion     string          `json:"afectacion,omitempty"` // catálogo 07; default 10 (gravado)
}

// ReferenciaCPE documento que una nota de crédito/débito modifica.
type ReferenciaCPE struct {
	Tipo        string `json:"tipo"`        // FACTURA|BOLETA
	Serie       string `json:"serie"`
	Correlativo int    `json:"correlativo"`
	Motivo      string `json:"motivo"`      // catálogo 09/10
	Descripcion string `json:"descripcion"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// EnvioResponse estado de un envío ante SUNAT.
type EnvioResponse struct {
	ID             string    `json:"id"`
	ComprobanteID  string    `json:"comprobante_id"`
	NombreXML      string    `json:"nombre_xml"`
	Estado         string    `json:"estado"` // PENDIENTE|ENVIANDO|ACEPTADO|RECHAZADO|ERROR
	CodigoCDR      string    `json:"codigo_cdr,omitempty"`
	DescripcionCDR string    `json:"descripcion_cdr,omitempty"`
	Intentos       int       `json:"intentos"`
	UltimoError    string    `json:"ultimo_error,omitempty"`
	ActualizadoEn  time.Time `json:"actualizado_en"`
}

// EnvioAceptadoResponse respuesta inmediata de POST /api/cpe/enviar cuando el
// envío se encoló correctamente.
type EnvioAceptadoResponse struct {
	EnvioID   string `json:"envio_id"`
	NombreXML string `json:"nombre_xml"`
	Estado    string `json:"estado"`
}
