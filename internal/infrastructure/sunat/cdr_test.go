package sunat_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat"
)

func cdrXML(codigo, descripcion string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ar:ApplicationResponse xmlns:ar="urn:oasis:names:specification:ubl:schema:xsd:ApplicationResponse-2"
  xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
  xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>20250815-001</cbc:ID>
  <cac:DocumentResponse>
    <cac:Response>
      <cbc:ResponseCode>%s</cbc:ResponseCode>
      <cbc:Description>%s</cbc:Description>
    </cac:Response>
    <cac:DocumentReference>
      <cbc:ID>B001-00000001</cbc:ID>
    </cac:DocumentReference>
  </cac:DocumentResponse>
</ar:ApplicationResponse>`, codigo, descripcion))
}

func TestParsearCDRAceptado(t *testing.T) {
	cdr, err := sunat.ParsearCDRXML(cdrXML("0", "La Boleta numero B001-00000001, ha sido aceptada"))

	require.NoError(t, err)
	assert.True(t, cdr.Aceptado)
	assert.False(t, cdr.ConObservaciones)
	assert.Equal(t, "0", cdr.Codigo)
	assert.Equal(t, "B001-00000001", cdr.DocumentoID)
	assert.Contains(t, cdr.Descripcion, "aceptada")
}

func TestParsearCDRAceptadoConObservaciones(t *testing.T) {
	cdr, err := sunat.ParsearCDRXML(cdrXML("4000", "Aceptada con observaciones"))

	require.NoError(t, err)
	assert.True(t, cdr.Aceptado, "4000 en adelante sigue siendo aceptación")
	assert.True(t, cdr.ConObservaciones)
}

func TestParsearCDRRechazado(t *testing.T) {
	cdr, err := sunat.ParsearCDRXML(cdrXML("2800", "El dato ingresado en el tipo de documento del adquirente no es válido"))

	require.NoError(t, err)
	assert.False(t, cdr.Aceptado)
	assert.Equal(t, "2800", cdr.Codigo)
}

func TestParsearCDRDesdeZIP(t *testing.T) {
	zipBytes, _, err := sunat.EmpaquetarXML(cdrXML("0", "aceptada"), "R-20123456789-03-B001-00000001.xml")
	require.NoError(t, err)

	cdr, err := sunat.ParsearCDR(zipBytes)

	require.NoError(t, err)
	assert.True(t, cdr.Aceptado)
}

func TestParsearCDRLatin1(t *testing.T) {
	// El servicio histórico declara ISO-8859-1 y manda tildes en esa
	// codificación; el parser debe devolver UTF-8 correcto.
	utf8XML := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?>
<ApplicationResponse>
  <DocumentResponse>
    <Response>
      <ResponseCode>2801</ResponseCode>
      <Description>El número de documento no es válido</Description>
    </Response>
  </DocumentResponse>
</ApplicationResponse>`)
	latin1XML, err := charmap.ISO8859_1.NewEncoder().Bytes(utf8XML)
	require.NoError(t, err)

	cdr, err := sunat.ParsearCDRXML(latin1XML)

	require.NoError(t, err)
	assert.Equal(t, "2801", cdr.Codigo)
	assert.Equal(t, "El número de documento no es válido", cdr.Descripcion)
}

func TestParsearCDRInvalido(t *testing.T) {
	_, err := sunat.ParsearCDRXML([]byte("esto no es XML"))
	assert.Error(t, err)

	_, err = sunat.ParsearCDRXML([]byte("<Invoice><ID>F001-1</ID></Invoice>"))
	assert.Error(t, err, "solo se acepta un ApplicationResponse")

	_, err = sunat.ParsearCDRXML([]byte("<ApplicationResponse><DocumentResponse><Response></Response></DocumentResponse></ApplicationResponse>"))
	assert.Error(t, err, "sin ResponseCode no hay veredicto")
}
