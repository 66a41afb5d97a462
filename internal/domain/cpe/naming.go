package cpe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
)

// NombreArchivoXML deriva el nombre canónico del documento:
//
//	{RUC}-{codigoTipo}-{serie}-{correlativo:08d}.xml
//
// Ejemplo: 20123456789-03-B001-00000001.xml
// El mismo nombre, sin extensión, nombra el ZIP que viaja a SUNAT.
func NombreArchivoXML(ruc string, comp *entity.Comprobante) (string, error) {
	codigo := CodigoTipo(comp.Tipo)
	if codigo == "" {
		return "", fmt.Errorf("tipo de comprobante sin código de Catálogo 01: %q", comp.Tipo)
	}
	serie, correlativo, err := serieYCorrelativo(comp)
	if err != nil {
		return "", err
	}
	if serie == "" || correlativo < 1 {
		return "", fmt.Errorf("serie o correlativo inválidos: serie=%q correlativo=%d", serie, correlativo)
	}
	return fmt.Sprintf("%s-%s-%s-%08d.xml", ruc, codigo, strings.ToUpper(serie), correlativo), nil
}

// NumeroDocumento compone el identificador "SERIE-00000000" (correlativo
// siempre a 8 dígitos) que viaja en cbc:ID.
func NumeroDocumento(comp *entity.Comprobante) (string, error) {
	serie, correlativo, err := serieYCorrelativo(comp)
	if err != nil {
		return "", err
	}
	if serie == "" || correlativo < 1 {
		return "", fmt.Errorf("serie o correlativo inválidos: serie=%q correlativo=%d", serie, correlativo)
	}
	return fmt.Sprintf("%s-%08d", strings.ToUpper(serie), correlativo), nil
}

// serieYCorrelativo prefiere los campos explícitos del comprobante. Solo
// cuando ambos vienen vacíos intenta partir la representación "serie-numero"
// que envían pantallas antiguas; ese formato es frágil y se acepta únicamente
// como compatibilidad, no como contrato.
func serieYCorrelativo(comp *entity.Comprobante) (string, int64, error) {
	if comp.Serie != "" || comp.Correlativo > 0 {
		return strings.TrimSpace(comp.Serie), comp.Correlativo, nil
	}
	display := strings.TrimSpace(comp.NumeroCompleto)
	if display == "" {
		return "", 0, nil
	}
	idx := strings.LastIndex(display, "-")
	if idx <= 0 || idx == len(display)-1 {
		return "", 0, fmt.Errorf("no se pudo derivar serie y correlativo de %q (se esperaba \"SERIE-NUMERO\")", display)
	}
	serie := strings.TrimSpace(display[:idx])
	n, err := strconv.ParseInt(strings.TrimSpace(display[idx+1:]), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("correlativo no numérico en %q: %w", display, err)
	}
	return serie, n, nil
}

// SerieDelComprobante expone la serie efectiva (explícita o derivada) para la
// serialización por serie del despachador. Cadena vacía si no es derivable.
func SerieDelComprobante(comp *entity.Comprobante) string {
	serie, _, err := serieYCorrelativo(comp)
	if err != nil {
		return ""
	}
	return strings.ToUpper(serie)
}
