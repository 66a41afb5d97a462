// Package cpe contiene la lógica de dominio pura del pipeline de comprobantes
// electrónicos: validación previa a la construcción del XML, derivación del
// nombre canónico de archivo y la máquina de estados del envío.
package cpe

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
)

// ResultadoValidacion agrupa el veredicto y los mensajes de cada regla
// incumplida. Si Valido es false el pipeline no debe construir el XML.
type ResultadoValidacion struct {
	Valido  bool
	Errores []string
}

// toleranciaRedondeo margen aceptado al comparar totales declarados contra
// los calculados por línea (redondeos a 2 decimales).
var toleranciaRedondeo = decimal.NewFromFloat(0.01)

// Validar aplica las reglas obligatorias sobre el comprobante y el emisor
// antes de cualquier construcción de documento. Cada regla incumplida aporta
// un mensaje propio y no vacío; el orden de los mensajes es estable.
func Validar(comp *entity.Comprobante, emisor *entity.Empresa) ResultadoValidacion {
	var errs []string

	// ── Emisor ────────────────────────────────────────────────────────────
	if !esRUCValido(emisor.RUC) {
		errs = append(errs, fmt.Sprintf("el RUC del emisor debe tener exactamente 11 dígitos (recibido: %q)", emisor.RUC))
	}
	if strings.TrimSpace(emisor.RazonSocial) == "" {
		errs = append(errs, "la razón social del emisor es obligatoria")
	}
	if strings.TrimSpace(emisor.Direccion) == "" {
		errs = append(errs, "la dirección del emisor es obligatoria")
	}
	if strings.TrimSpace(emisor.Departamento) == "" {
		errs = append(errs, "el departamento del emisor es obligatorio")
	}
	if strings.TrimSpace(emisor.Provincia) == "" {
		errs = append(errs, "la provincia del emisor es obligatoria")
	}
	if strings.TrimSpace(emisor.Distrito) == "" {
		errs = append(errs, "el distrito del emisor es obligatorio")
	}

	// ── Identificación del comprobante ────────────────────────────────────
	if _, ok := pkgcpe.CodigosTipoComprobante[CodigoTipo(comp.Tipo)]; !ok {
		errs = append(errs, fmt.Sprintf("tipo de comprobante no soportado: %q", comp.Tipo))
	}
	serie, correlativo, errNum := serieYCorrelativo(comp)
	if errNum != nil {
		errs = append(errs, errNum.Error())
	} else {
		if serie == "" {
			errs = append(errs, "la serie del comprobante es obligatoria")
		}
		if correlativo < 1 {
			errs = append(errs, fmt.Sprintf("el correlativo debe ser mayor o igual a 1 (recibido: %d)", correlativo))
		}
	}

	// ── Adquirente ────────────────────────────────────────────────────────
	if strings.TrimSpace(comp.Cliente.NumeroDocumento) == "" {
		errs = append(errs, "el número de documento de identidad del cliente es obligatorio")
	}

	// ── Líneas y totales ──────────────────────────────────────────────────
	if len(comp.Items) == 0 {
		errs = append(errs, "el comprobante debe tener al menos un ítem")
	}
	for i, it := range comp.Items {
		if !it.Cantidad.IsPositive() {
			errs = append(errs, fmt.Sprintf("ítem %d: la cantidad debe ser mayor a cero", i+1))
		}
		if !it.PrecioUnitario.IsPositive() {
			errs = append(errs, fmt.Sprintf("ítem %d: el precio unitario debe ser mayor a cero", i+1))
		}
	}
	if !comp.Totales.Total.IsPositive() {
		errs = append(errs, fmt.Sprintf("el total del comprobante debe ser mayor a cero (recibido: %s)", comp.Totales.Total.String()))
	}
	if len(comp.Items) > 0 {
		if msg := validarCoherenciaTotales(comp); msg != "" {
			errs = append(errs, msg)
		}
	}

	return ResultadoValidacion{Valido: len(errs) == 0, Errores: errs}
}

// validarCoherenciaTotales comprueba que los totales declarados coincidan con
// la suma por línea dentro de la tolerancia de redondeo.
func validarCoherenciaTotales(comp *entity.Comprobante) string {
	tasaIGV, _ := decimal.NewFromString(pkgcpe.TasaIGV)
	var subtotal, igv decimal.Decimal
	for _, it := range comp.Items {
		base := it.Cantidad.Mul(it.PrecioUnitario)
		subtotal = subtotal.Add(base)
		if pkgcpe.TributoPorAfectacion(it.Afectacion) == pkgcpe.TributoIGV {
			igv = igv.Add(base.Mul(tasaIGV))
		}
	}
	subtotal = subtotal.Round(2)
	igv = igv.Round(2)

	if comp.Totales.SubTotal.Sub(subtotal).Abs().GreaterThan(toleranciaRedondeo) {
		return fmt.Sprintf("el subtotal declarado (%s) no coincide con la suma de las líneas (%s)",
			comp.Totales.SubTotal.StringFixed(2), subtotal.StringFixed(2))
	}
	if comp.Totales.IGV.Sub(igv).Abs().GreaterThan(toleranciaRedondeo) {
		return fmt.Sprintf("el IGV declarado (%s) no coincide con el calculado por línea (%s)",
			comp.Totales.IGV.StringFixed(2), igv.StringFixed(2))
	}
	esperado := subtotal.Add(igv)
	if comp.Totales.Total.Sub(esperado).Abs().GreaterThan(toleranciaRedondeo) {
		return fmt.Sprintf("el total declarado (%s) no coincide con subtotal + IGV (%s)",
			comp.Totales.Total.StringFixed(2), esperado.StringFixed(2))
	}
	return ""
}

func esRUCValido(ruc string) bool {
	if len(ruc) != 11 {
		return false
	}
	for _, r := range ruc {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CodigoTipo resuelve el código del Catálogo 01 para el tipo de comprobante.
// Devuelve cadena vacía para tipos desconocidos.
func CodigoTipo(tipo string) string {
	switch tipo {
	case entity.ComprobanteFactura:
		return pkgcpe.TipoFactura
	case entity.ComprobanteBoleta:
		return pkgcpe.TipoBoleta
	case entity.ComprobanteNotaCredito:
		return pkgcpe.TipoNotaCredito
	case entity.ComprobanteNotaDebito:
		return pkgcpe.TipoNotaDebito
	}
	return ""
}
