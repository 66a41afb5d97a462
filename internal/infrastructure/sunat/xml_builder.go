// Package sunat implementa la generación del XML UBL 2.1 del comprobante
// electrónico, su empaquetado en ZIP y el transporte SOAP hacia el servicio de
// recepción de SUNAT (Perú).
package sunat

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
)

// Namespaces oficiales UBL 2.1 requeridos por SUNAT.
const (
	// Namespaces de documento raíz según el tipo de comprobante
	NsInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	NsDebitNote  = "urn:oasis:names:specification:ubl:schema:xsd:DebitNote-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// Extension Components (el firmador inyecta ds:Signature aquí, con su
	// propia declaración xmlns:ds)
	NsExt = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
)

// nombresPorTipo elementos UBL que cambian según el documento raíz.
type nombresPorTipo struct {
	raiz     string // Invoice / CreditNote / DebitNote
	ns       string
	linea    string // InvoiceLine / CreditNoteLine / DebitNoteLine
	cantidad string // InvoicedQuantity / CreditedQuantity / DebitedQuantity
	tipoDoc  string // InvoiceTypeCode; vacío para notas
}

func nombresUBL(codigoTipo string) nombresPorTipo {
	switch codigoTipo {
	case pkgcpe.TipoNotaCredito:
		return nombresPorTipo{raiz: "CreditNote", ns: NsCreditNote, linea: "CreditNoteLine", cantidad: "CreditedQuantity"}
	case pkgcpe.TipoNotaDebito:
		return nombresPorTipo{raiz: "DebitNote", ns: NsDebitNote, linea: "DebitNoteLine", cantidad: "DebitedQuantity"}
	default:
		return nombresPorTipo{raiz: "Invoice", ns: NsInvoice, linea: "InvoiceLine", cantidad: "InvoicedQuantity", tipoDoc: "InvoiceTypeCode"}
	}
}

// lineaCalculada montos derivados de un ítem, redondeados a 2 decimales.
type lineaCalculada struct {
	item         entity.ItemComprobante
	base         decimal.Decimal // cantidad × precio unitario (sin IGV)
	igv          decimal.Decimal // 18% de la base si es gravada, 0 en otro caso
	precioConIGV decimal.Decimal // precio de presentación (PricingReference)
	tributo      pkgcpe.Tributo
}

// XMLBuilderService construye el XML UBL 2.1 del comprobante (sin firma).
// Es una transformación pura: sin I/O ni estado compartido, el mismo par
// comprobante/emisor produce siempre los mismos bytes.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del documento UBL 2.1 según el tipo de comprobante.
// Asume un comprobante ya validado; los opcionales ausentes (ubigeo, unidad de
// medida, moneda) caen a defaults seguros en lugar de fallar.
func (s *XMLBuilderService) Build(comp *entity.Comprobante, emisor *entity.Empresa) ([]byte, error) {
	if comp == nil || emisor == nil {
		return nil, fmt.Errorf("sunat: faltan comprobante o emisor")
	}
	codigoTipo := cpe.CodigoTipo(comp.Tipo)
	if codigoTipo == "" {
		return nil, fmt.Errorf("sunat: tipo de comprobante desconocido %q", comp.Tipo)
	}
	nombres := nombresUBL(codigoTipo)
	moneda := comp.Moneda
	if moneda == "" {
		moneda = pkgcpe.MonedaSoles
	}

	numero, err := cpe.NumeroDocumento(comp)
	if err != nil {
		return nil, fmt.Errorf("sunat: %w", err)
	}
	lineas, totales := calcularLineas(comp.Items)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// El namespace del raíz va solo como atributo manual: fijar también
	// Name.Space haría que el encoder declare xmlns dos veces y el documento
	// deje de ser bien formado. Los hijos cac/cbc/ext declaran el suyo al
	// emitirse y el firmador declara xmlns:ds sobre su propio elemento.
	root := xml.StartElement{
		Name: xml.Name{Local: nombres.raiz},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: nombres.ns},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ext:UBLExtensions siempre como primer hijo: placeholder vacío donde el
	// firmador externo inyecta ds:Signature.
	writeExtensionPlaceholder(enc)

	writeCbc(enc, "UBLVersionID", "2.1")
	writeCbc(enc, "CustomizationID", "2.0")
	writeCbc(enc, "ID", numero)
	writeCbc(enc, "IssueDate", comp.FechaEmision.Format("2006-01-02"))
	writeCbc(enc, "IssueTime", comp.FechaEmision.Format("15:04:05"))
	if nombres.tipoDoc != "" {
		writeCbc(enc, nombres.tipoDoc, codigoTipo)
	}
	writeCbc(enc, "DocumentCurrencyCode", moneda)
	writeCbc(enc, "LineCountNumeric", strconv.Itoa(len(lineas)))

	// Notas de crédito/débito: motivo y referencia al documento modificado.
	if comp.Modifica != nil {
		writeDiscrepancyResponse(enc, comp.Modifica)
		writeBillingReference(enc, comp.Modifica)
	}

	// cac:Signature — bloque de metadatos del firmante exigido por SUNAT.
	// La firma criptográfica en sí vive en el UBLExtension reservado.
	writeSignatureBlock(enc, emisor)

	if err := writeSupplierParty(enc, emisor); err != nil {
		return nil, err
	}
	if err := writeCustomerParty(enc, &comp.Cliente); err != nil {
		return nil, err
	}
	writeTaxTotal(enc, lineas, totales, moneda)
	writeMonetaryTotal(enc, totales, moneda)
	for i, l := range lineas {
		writeLinea(enc, nombres, i+1, l, moneda)
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// calcularLineas deriva los montos por línea y los totales agregados.
func calcularLineas(items []entity.ItemComprobante) ([]lineaCalculada, entity.Totales) {
	tasaIGV, _ := decimal.NewFromString(pkgcpe.TasaIGV)
	factorConIGV := decimal.NewFromInt(1).Add(tasaIGV)

	lineas := make([]lineaCalculada, 0, len(items))
	var totales entity.Totales
	for _, it := range items {
		l := lineaCalculada{
			item:    it,
			base:    it.Cantidad.Mul(it.PrecioUnitario).Round(2),
			tributo: pkgcpe.TributoPorAfectacion(it.Afectacion),
		}
		if l.tributo == pkgcpe.TributoIGV {
			l.igv = l.base.Mul(tasaIGV).Round(2)
			l.precioConIGV = it.PrecioUnitario.Mul(factorConIGV).Round(2)
		} else {
			l.igv = decimal.Zero
			l.precioConIGV = it.PrecioUnitario.Round(2)
		}
		totales.SubTotal = totales.SubTotal.Add(l.base)
		totales.IGV = totales.IGV.Add(l.igv)
		lineas = append(lineas, l)
	}
	totales.Total = totales.SubTotal.Add(totales.IGV)
	return lineas, totales
}

// ── escritura de bloques UBL ──────────────────────────────────────────────────

func writeExtensionPlaceholder(enc *xml.Encoder) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "UBLExtensions"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "UBLExtension"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "ExtensionContent"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "ExtensionContent"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "UBLExtension"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "UBLExtensions"}})
}

func writeDiscrepancyResponse(enc *xml.Encoder, ref *entity.ReferenciaModificacion) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "DiscrepancyResponse"}})
	writeCbc(enc, "ReferenceID", ref.SerieNumero)
	writeCbc(enc, "ResponseCode", ref.CodigoMotivo)
	writeCbc(enc, "Description", ref.Motivo)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "DiscrepancyResponse"}})
}

func writeBillingReference(enc *xml.Encoder, ref *entity.ReferenciaModificacion) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "BillingReference"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "InvoiceDocumentReference"}})
	writeCbc(enc, "ID", ref.SerieNumero)
	writeCbc(enc, "DocumentTypeCode", ref.TipoDocumento)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "InvoiceDocumentReference"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "BillingReference"}})
}

func writeSignatureBlock(enc *xml.Encoder, emisor *entity.Empresa) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Signature"}})
	writeCbc(enc, "ID", emisor.RUC)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "SignatoryParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbc(enc, "ID", emisor.RUC)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})
	writeCbc(enc, "Name", emisor.RazonSocial)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "SignatoryParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "DigitalSignatureAttachment"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "ExternalReference"}})
	writeCbc(enc, "URI", "#SIGN-"+emisor.RUC)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "ExternalReference"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "DigitalSignatureAttachment"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Signature"}})
}

func writeSupplierParty(enc *xml.Encoder, emisor *entity.Empresa) error {
	ubigeo := emisor.Ubigeo
	if ubigeo == "" {
		ubigeo = pkgcpe.UbigeoLimaCercado
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "AccountingSupplierParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Party"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbcWithAttr(enc, "ID", emisor.RUC, "schemeID", pkgcpe.DocIdentidadRUC)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyLegalEntity"}})
	writeCbc(enc, "RegistrationName", emisor.RazonSocial)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "RegistrationAddress"}})
	writeCbc(enc, "ID", ubigeo)
	writeCbc(enc, "StreetName", emisor.Direccion)
	writeCbc(enc, "CityName", emisor.Provincia)
	writeCbc(enc, "CountrySubentity", emisor.Departamento)
	writeCbc(enc, "District", emisor.Distrito)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	writeCbc(enc, "IdentificationCode", "PE")
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "RegistrationAddress"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyLegalEntity"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Party"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "AccountingSupplierParty"}})
	return nil
}

func writeCustomerParty(enc *xml.Encoder, cliente *entity.Cliente) error {
	tipoDoc := cliente.TipoDocumento
	if tipoDoc == "" {
		tipoDoc = pkgcpe.DocIdentidadDNI
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "AccountingCustomerParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Party"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbcWithAttr(enc, "ID", cliente.NumeroDocumento, "schemeID", tipoDoc)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyLegalEntity"}})
	writeCbc(enc, "RegistrationName", cliente.RazonSocial)
	if cliente.Direccion.Linea != "" {
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "RegistrationAddress"}})
		if cliente.Direccion.Ubigeo != "" {
			writeCbc(enc, "ID", cliente.Direccion.Ubigeo)
		}
		writeCbc(enc, "StreetName", cliente.Direccion.Linea)
		if cliente.Direccion.Distrito != "" {
			writeCbc(enc, "District", cliente.Direccion.Distrito)
		}
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "RegistrationAddress"}})
	}
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyLegalEntity"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Party"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "AccountingCustomerParty"}})
	return nil
}

// writeTaxTotal agrega un cac:TaxSubtotal por tributo presente (IGV, EXO, INA),
// en el orden fijo 1000, 9997, 9998 para que la salida sea determinista.
func writeTaxTotal(enc *xml.Encoder, lineas []lineaCalculada, totales entity.Totales, moneda string) {
	type acumulado struct {
		base decimal.Decimal
		igv  decimal.Decimal
	}
	porTributo := map[string]*acumulado{}
	for _, l := range lineas {
		a, ok := porTributo[l.tributo.ID]
		if !ok {
			a = &acumulado{}
			porTributo[l.tributo.ID] = a
		}
		a.base = a.base.Add(l.base)
		a.igv = a.igv.Add(l.igv)
	}

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatDecimal(totales.IGV), moneda)
	for _, tributo := range []pkgcpe.Tributo{pkgcpe.TributoIGV, pkgcpe.TributoExonerado, pkgcpe.TributoInafecto} {
		a, ok := porTributo[tributo.ID]
		if !ok {
			continue
		}
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
		writeCbcAmount(enc, "TaxableAmount", formatDecimal(a.base), moneda)
		writeCbcAmount(enc, "TaxAmount", formatDecimal(a.igv), moneda)
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
		writeTaxScheme(enc, tributo)
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	}
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
}

func writeMonetaryTotal(enc *xml.Encoder, totales entity.Totales, moneda string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(totales.SubTotal), moneda)
	writeCbcAmount(enc, "TaxInclusiveAmount", formatDecimal(totales.Total), moneda)
	writeCbcAmount(enc, "PayableAmount", formatDecimal(totales.Total), moneda)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
}

func writeLinea(enc *xml.Encoder, nombres nombresPorTipo, num int, l lineaCalculada, moneda string) {
	unidad := l.item.UnidadMedida
	if unidad == "" {
		unidad = pkgcpe.UnidadNIU
	}
	tasa := "18.00"
	if l.tributo != pkgcpe.TributoIGV {
		tasa = "0.00"
	}

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: nombres.linea}})
	writeCbc(enc, "ID", strconv.Itoa(num))
	writeCbcWithAttr(enc, nombres.cantidad, formatDecimal(l.item.Cantidad), "unitCode", unidad)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(l.base), moneda)

	// Precio de presentación (incluye IGV). PriceTypeCode 01 = precio unitario
	// con impuesto; el valor base para el cálculo es cac:Price al final.
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PricingReference"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "AlternativeConditionPrice"}})
	writeCbcAmount(enc, "PriceAmount", formatDecimal(l.precioConIGV), moneda)
	writeCbc(enc, "PriceTypeCode", "01")
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "AlternativeConditionPrice"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PricingReference"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatDecimal(l.igv), moneda)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	writeCbcAmount(enc, "TaxableAmount", formatDecimal(l.base), moneda)
	writeCbcAmount(enc, "TaxAmount", formatDecimal(l.igv), moneda)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
	writeCbc(enc, "Percent", tasa)
	writeCbc(enc, "TaxExemptionReasonCode", afectacionODefault(l.item.Afectacion))
	writeTaxScheme(enc, l.tributo)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Item"}})
	writeCbc(enc, "Description", l.item.Descripcion)
	if l.item.CodigoProducto != "" {
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "SellersItemIdentification"}})
		writeCbc(enc, "ID", l.item.CodigoProducto)
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "SellersItemIdentification"}})
	}
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Item"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Price"}})
	writeCbcAmount(enc, "PriceAmount", formatDecimal(l.item.PrecioUnitario), moneda)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Price"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: nombres.linea}})
}

func writeTaxScheme(enc *xml.Encoder, tributo pkgcpe.Tributo) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	writeCbc(enc, "ID", tributo.ID)
	writeCbc(enc, "Name", tributo.Nombre)
	writeCbc(enc, "TaxTypeCode", tributo.Codigo)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
}

func afectacionODefault(afectacion string) string {
	if afectacion == "" {
		return pkgcpe.AfectacionGravado
	}
	return afectacion
}

// ── helpers de bajo nivel ─────────────────────────────────────────────────────

func writeCbc(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcAmount(enc *xml.Encoder, local, value, currency string) {
	attr := []xml.Attr{}
	if currency != "" {
		attr = append(attr, xml.Attr{Name: xml.Name{Local: "currencyID"}, Value: currency})
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}, Attr: attr})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Space: NsCbc, Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
