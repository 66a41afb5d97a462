package sunat_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat"
)

func TestEmpaquetarXMLRoundTrip(t *testing.T) {
	contenido := []byte(`<?xml version="1.0"?><Invoice><ID>F001-00000012</ID></Invoice>`)

	zipBytes, nombreZip, err := sunat.EmpaquetarXML(contenido, "20123456789-01-F001-00000012.xml")

	require.NoError(t, err)
	assert.Equal(t, "20123456789-01-F001-00000012.zip", nombreZip, "el ZIP hereda el nombre canónico del XML")

	recuperado, err := sunat.ExtraerUnicoXML(zipBytes)
	require.NoError(t, err)
	assert.Equal(t, contenido, recuperado)
}

func TestEmpaquetarXMLEntradaUnica(t *testing.T) {
	zipBytes, _, err := sunat.EmpaquetarXML([]byte("<a/>"), "20123456789-03-B001-00000001.xml")
	require.NoError(t, err)

	lector, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	require.NoError(t, err)
	require.Len(t, lector.File, 1, "el paquete lleva exactamente un archivo")
	assert.Equal(t, "20123456789-03-B001-00000001.xml", lector.File[0].Name)
}

func TestEmpaquetarXMLEsDeterminista(t *testing.T) {
	contenido := []byte("<Invoice/>")

	a, _, err := sunat.EmpaquetarXML(contenido, "20123456789-03-B001-00000001.xml")
	require.NoError(t, err)
	b, _, err := sunat.EmpaquetarXML(contenido, "20123456789-03-B001-00000001.xml")
	require.NoError(t, err)

	assert.Equal(t, a, b, "mismo XML, mismos bytes de ZIP")
}

func TestExtraerUnicoXMLRechazaPaquetesAnomalos(t *testing.T) {
	// Vacío o corrupto.
	_, err := sunat.ExtraerUnicoXML([]byte("no es un zip"))
	assert.Error(t, err)

	// Más de un XML adentro.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, nombre := range []string{"a.xml", "b.xml"} {
		f, errCreate := w.Create(nombre)
		require.NoError(t, errCreate)
		_, errWrite := f.Write([]byte("<a/>"))
		require.NoError(t, errWrite)
	}
	require.NoError(t, w.Close())
	_, err = sunat.ExtraerUnicoXML(buf.Bytes())
	assert.Error(t, err, "un paquete con dos XML es ambiguo")
}

func TestHuellaXMLEstable(t *testing.T) {
	xmlA := []byte(`<Invoice xmlns="urn:x"><ID>F001-1</ID></Invoice>`)
	xmlB := []byte(`<Invoice xmlns="urn:x"><ID>F001-2</ID></Invoice>`)

	huellaA1, err := sunat.HuellaXML(xmlA)
	require.NoError(t, err)
	huellaA2, err := sunat.HuellaXML(xmlA)
	require.NoError(t, err)
	huellaB, err := sunat.HuellaXML(xmlB)
	require.NoError(t, err)

	assert.Equal(t, huellaA1, huellaA2, "la huella de un documento es estable")
	assert.NotEqual(t, huellaA1, huellaB, "documentos distintos producen huellas distintas")
	assert.Len(t, huellaA1, 64, "SHA-256 en hexadecimal")
}
