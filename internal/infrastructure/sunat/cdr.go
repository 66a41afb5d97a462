package sunat

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
)

// CDR constancia de recepción (ApplicationResponse) emitida por SUNAT como
// veredicto sobre un comprobante enviado.
type CDR struct {
	Codigo           string // cbc:ResponseCode (numérico; "0" = aceptado)
	Descripcion      string // cbc:Description
	DocumentoID      string // serie-número del comprobante evaluado
	Aceptado         bool
	ConObservaciones bool // aceptado con observaciones (códigos 4000+)
}

// ParsearCDR desempaqueta y lee el ApplicationResponse devuelto por SUNAT.
// El servicio histórico emite algunos CDR en ISO-8859-1; el lector convierte
// según la declaración del documento.
func ParsearCDR(zipCDR []byte) (*CDR, error) {
	xmlBytes, err := ExtraerUnicoXML(zipCDR)
	if err != nil {
		return nil, fmt.Errorf("cdr: %w", err)
	}
	return ParsearCDRXML(xmlBytes)
}

// ParsearCDRXML lee un ApplicationResponse ya desempaquetado.
func ParsearCDRXML(xmlBytes []byte) (*CDR, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "iso-8859-1", "latin1", "windows-1252":
			return charmap.ISO8859_1.NewDecoder().Reader(input), nil
		}
		return input, nil
	}
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("cdr: XML ilegible: %w", err)
	}
	raiz := doc.Root()
	if raiz == nil || raiz.Tag != "ApplicationResponse" {
		return nil, fmt.Errorf("cdr: el documento no es un ApplicationResponse")
	}

	respuesta := primerElemento(raiz, "DocumentResponse")
	if respuesta == nil {
		return nil, fmt.Errorf("cdr: falta cac:DocumentResponse")
	}
	codigo := textoDe(respuesta, "ResponseCode")
	if codigo == "" {
		return nil, fmt.Errorf("cdr: falta cbc:ResponseCode")
	}

	cdr := &CDR{
		Codigo:      codigo,
		Descripcion: textoDe(respuesta, "Description"),
		DocumentoID: textoDe(respuesta, "ID"),
	}
	if n, errConv := strconv.Atoi(codigo); errConv == nil {
		// 0 = aceptado; 4000+ = aceptado con observaciones; el resto rechaza.
		switch {
		case n == 0:
			cdr.Aceptado = true
		case n >= 4000:
			cdr.Aceptado = true
			cdr.ConObservaciones = true
		}
	}
	return cdr, nil
}

// primerElemento busca en profundidad el primer descendiente con ese nombre
// local, sin importar el prefijo de namespace del CDR.
func primerElemento(e *etree.Element, local string) *etree.Element {
	for _, hijo := range e.ChildElements() {
		if hijo.Tag == local {
			return hijo
		}
		if encontrado := primerElemento(hijo, local); encontrado != nil {
			return encontrado
		}
	}
	return nil
}

func textoDe(e *etree.Element, local string) string {
	if el := primerElemento(e, local); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
