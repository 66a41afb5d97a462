package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de comprobante soportados por el pipeline (ver Catálogo 01 en pkg/cpe
// para los códigos de dos dígitos que viajan en el XML y en el nombre de archivo).
const (
	ComprobanteFactura     = "FACTURA"
	ComprobanteBoleta      = "BOLETA"
	ComprobanteNotaCredito = "NOTA_CREDITO"
	ComprobanteNotaDebito  = "NOTA_DEBITO"
)

// Comprobante es el documento electrónico ya emitido, tal como lo entrega el
// colaborador de ventas. Es inmutable: una corrección es siempre una nota de
// crédito o débito nueva que referencia al original, nunca una edición.
type Comprobante struct {
	ID           string
	Tipo         string // ComprobanteFactura, ComprobanteBoleta, ...
	Serie        string // Ej: F001, B001
	Correlativo  int64  // >= 1
	FechaEmision time.Time
	Moneda       string // ISO 4217; vacío = PEN

	// NumeroCompleto es la representación "serie-numero" que algunas pantallas
	// antiguas envían en lugar de los campos separados. Solo se usa como
	// fallback cuando Serie/Correlativo vienen vacíos.
	NumeroCompleto string

	Cliente Cliente
	Items   []ItemComprobante
	Totales Totales

	// Referencia solo presente en notas de crédito/débito.
	Modifica *ReferenciaModificacion
}

// Cliente es el adquirente del comprobante.
type Cliente struct {
	TipoDocumento   string // Catálogo 06: 1=DNI, 6=RUC, 4=CE, 7=Pasaporte
	NumeroDocumento string
	RazonSocial     string
	Direccion       Direccion
}

// Direccion postal estructurada (emisor o adquirente).
type Direccion struct {
	Linea        string
	Distrito     string
	Provincia    string
	Departamento string
	Ubigeo       string
}

// ItemComprobante es una línea del comprobante. PrecioUnitario es la base
// imponible sin IGV; el precio con impuesto solo existe como dato de
// presentación dentro del XML (PricingReference).
type ItemComprobante struct {
	Cantidad       decimal.Decimal // > 0
	PrecioUnitario decimal.Decimal // > 0, sin IGV
	Descripcion    string
	CodigoProducto string
	UnidadMedida   string // Catálogo 03; vacío = NIU
	Afectacion     string // Catálogo 07: 10=Gravado, 20=Exonerado, 30=Inafecto
}

// Totales montos declarados del comprobante.
// Invariante: SubTotal = Σ(cantidad·precio), IGV = Σ(IGV por línea gravada),
// Total = SubTotal + IGV.
type Totales struct {
	SubTotal decimal.Decimal
	IGV      decimal.Decimal
	Total    decimal.Decimal
}

// ReferenciaModificacion referencia de una nota de crédito/débito al
// comprobante que corrige.
type ReferenciaModificacion struct {
	TipoDocumento string // Catálogo 01 del documento original (01 o 03)
	SerieNumero   string // Ej: F001-00000012
	CodigoMotivo  string // Catálogo 09 (NC) o 10 (ND)
	Motivo        string
}
