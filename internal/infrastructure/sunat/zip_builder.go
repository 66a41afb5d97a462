package sunat

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"
)

// marcaZip fecha fija para la entrada del ZIP. El servicio de recepción no
// interpreta los metadatos del contenedor y una marca constante hace el
// paquete reproducible byte a byte.
var marcaZip = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// EmpaquetarXML envuelve el XML firmado en un ZIP en memoria cuyo único
// miembro lleva el nombre canónico del documento. SUNAT exige exactamente un
// XML por paquete en el flujo de envío individual.
//
// Devuelve los bytes del ZIP y el nombre del archivo ZIP (mismo nombre base
// que el XML).
func EmpaquetarXML(xmlBytes []byte, nombreXML string) (zipBytes []byte, nombreZip string, err error) {
	if len(xmlBytes) == 0 {
		return nil, "", fmt.Errorf("zip: XML vacío")
	}
	if !strings.HasSuffix(nombreXML, ".xml") {
		return nil, "", fmt.Errorf("zip: nombre de miembro inválido %q (se esperaba extensión .xml)", nombreXML)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     nombreXML,
		Method:   zip.Deflate,
		Modified: marcaZip,
	})
	if err != nil {
		return nil, "", fmt.Errorf("zip: crear entrada %s: %w", nombreXML, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, "", fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), strings.TrimSuffix(nombreXML, ".xml") + ".zip", nil
}

// ExtraerUnicoXML abre un ZIP en memoria y devuelve el contenido de su único
// miembro XML. Se usa para desempaquetar el CDR (constancia de recepción) que
// SUNAT devuelve como ZIP en base64 dentro de la respuesta SOAP. Un paquete
// con más de un XML es ambiguo y se rechaza.
func ExtraerUnicoXML(zipBytes []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("zip: abrir paquete: %w", err)
	}
	var encontrado *zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		if encontrado != nil {
			return nil, fmt.Errorf("zip: el paquete contiene más de un XML (%s, %s)", encontrado.Name, f.Name)
		}
		encontrado = f
	}
	if encontrado == nil {
		return nil, fmt.Errorf("zip: el paquete no contiene ningún XML")
	}

	rc, err := encontrado.Open()
	if err != nil {
		return nil, fmt.Errorf("zip: abrir miembro %s: %w", encontrado.Name, err)
	}
	defer rc.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("zip: leer miembro %s: %w", encontrado.Name, err)
	}
	return out.Bytes(), nil
}
