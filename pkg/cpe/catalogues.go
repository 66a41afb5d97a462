// Package cpe contiene catálogos y contratos alineados a los Anexos de la
// Resolución de Comprobantes de Pago Electrónicos SUNAT (Perú), UBL 2.1.
package cpe

// =============================================================================
// Catálogo 01 - Tipo de Comprobante de Pago
// Código que identifica el documento electrónico; forma parte del nombre del
// archivo y del cbc:InvoiceTypeCode.
// =============================================================================

const (
	TipoFactura     = "01" // Factura electrónica
	TipoBoleta      = "03" // Boleta de venta electrónica
	TipoNotaCredito = "07" // Nota de crédito electrónica
	TipoNotaDebito  = "08" // Nota de débito electrónica
)

// CodigosTipoComprobante tipos de comprobante aceptados por el pipeline.
var CodigosTipoComprobante = map[string]bool{
	TipoFactura: true, TipoBoleta: true, TipoNotaCredito: true, TipoNotaDebito: true,
}

// =============================================================================
// Catálogo 06 - Tipo de Documento de Identidad (@schemeID en PartyIdentification)
// =============================================================================

const (
	DocIdentidadDNI       = "1" // DNI - Documento Nacional de Identidad
	DocIdentidadCE        = "4" // Carnet de extranjería
	DocIdentidadRUC       = "6" // RUC - Registro Único de Contribuyentes
	DocIdentidadPasaporte = "7" // Pasaporte
	DocIdentidadSinRUC    = "0" // Doc. tributario no domiciliado sin RUC
)

// CodigosDocIdentidad códigos de documento de identidad válidos (Catálogo 06).
var CodigosDocIdentidad = map[string]bool{
	DocIdentidadDNI: true, DocIdentidadCE: true, DocIdentidadRUC: true,
	DocIdentidadPasaporte: true, DocIdentidadSinRUC: true,
}

// =============================================================================
// Catálogo 07 - Tipo de Afectación del IGV (cbc:TaxExemptionReasonCode)
// =============================================================================

const (
	AfectacionGravado   = "10" // Gravado - Operación Onerosa (IGV 18%)
	AfectacionExonerado = "20" // Exonerado - Operación Onerosa
	AfectacionInafecto  = "30" // Inafecto - Operación Onerosa
)

// =============================================================================
// Catálogo 05 - Tipos de Tributo (cac:TaxScheme por línea)
// Cada afectación del Catálogo 07 mapea a un tributo con ID, nombre y código
// internacional UN/ECE 5153.
// =============================================================================

// Tributo describe el esquema tributario UBL asociado a una afectación.
type Tributo struct {
	ID     string // ID del tributo (Catálogo 05)
	Nombre string // Nombre corto (IGV, EXO, INA)
	Codigo string // Código internacional (VAT, FRE)
}

var (
	TributoIGV       = Tributo{ID: "1000", Nombre: "IGV", Codigo: "VAT"}
	TributoExonerado = Tributo{ID: "9997", Nombre: "EXO", Codigo: "VAT"}
	TributoInafecto  = Tributo{ID: "9998", Nombre: "INA", Codigo: "FRE"}
)

// TributoPorAfectacion resuelve el tributo del Catálogo 05 según la afectación
// del Catálogo 07. Afectaciones desconocidas se tratan como gravadas: es
// preferible declarar IGV de más que emitir un comprobante sin tributo.
func TributoPorAfectacion(afectacion string) Tributo {
	switch afectacion {
	case AfectacionExonerado:
		return TributoExonerado
	case AfectacionInafecto:
		return TributoInafecto
	default:
		return TributoIGV
	}
}

// =============================================================================
// Catálogo 03 - Unidades de Medida (UN/ECE rec 20, @unitCode)
// =============================================================================

const (
	UnidadNIU       = "NIU" // Unidad (bienes)
	UnidadZZ        = "ZZ"  // Unidad (servicios)
	UnidadKilogramo = "KGM" // Kilogramo
	UnidadLitro     = "LTR" // Litro
	UnidadMetro     = "MTR" // Metro
	UnidadCaja      = "BX"  // Caja
	UnidadDocena    = "DZN" // Docena
	UnidadHora      = "HUR" // Hora
	UnidadDia       = "DAY" // Día
)

// CodigosUnidadMedida unidades de medida de uso frecuente en facturación.
var CodigosUnidadMedida = map[string]bool{
	UnidadNIU: true, UnidadZZ: true, UnidadKilogramo: true, UnidadLitro: true,
	UnidadMetro: true, UnidadCaja: true, UnidadDocena: true, UnidadHora: true,
	UnidadDia: true,
}

// =============================================================================
// Catálogo 02 - Monedas (ISO 4217)
// =============================================================================

const (
	MonedaSoles   = "PEN"
	MonedaDolares = "USD"
)

// =============================================================================
// Catálogo 09 - Tipo de Nota de Crédito / Catálogo 10 - Tipo de Nota de Débito
// (cbc:ResponseCode en cac:DiscrepancyResponse)
// =============================================================================

const (
	MotivoNCAnulacion       = "01" // Anulación de la operación
	MotivoNCAnulacionRUC    = "02" // Anulación por error en el RUC
	MotivoNCDescuentoGlobal = "04" // Descuento global
	MotivoNCDevolucionTotal = "06" // Devolución total

	MotivoNDInteresMora = "01" // Intereses por mora
	MotivoNDAumento     = "02" // Aumento en el valor
	MotivoNDPenalidad   = "03" // Penalidades / otros conceptos
)

// TasaIGV tasa vigente del Impuesto General a las Ventas (18%).
// Se expresa como string para construir decimal.Decimal sin pérdida.
const TasaIGV = "0.18"

// UbigeoLimaCercado ubigeo por defecto cuando el emisor no registró el suyo.
const UbigeoLimaCercado = "150101"
