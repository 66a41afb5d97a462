package cpe_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
)

// patronNombre invariante del nombre canónico:
// RUC de 11 dígitos, código de Catálogo 01, serie alfanumérica y correlativo
// de exactamente 8 dígitos.
var patronNombre = regexp.MustCompile(`^\d{11}-(01|03|07|08)-[A-Z0-9]+-\d{8}\.xml$`)

func TestNombreArchivoXML_BoletaDeReferencia(t *testing.T) {
	nombre, err := cpe.NombreArchivoXML("20123456789", boletaValida())
	require.NoError(t, err)
	assert.Equal(t, "20123456789-03-B001-00000001.xml", nombre)
}

func TestNombreArchivoXML_CumpleElPatron(t *testing.T) {
	casos := []struct {
		tipo        string
		serie       string
		correlativo int64
	}{
		{entity.ComprobanteFactura, "F001", 1},
		{entity.ComprobanteBoleta, "B001", 99},
		{entity.ComprobanteNotaCredito, "FC01", 12345678},
		{entity.ComprobanteNotaDebito, "FD01", 7},
	}
	for _, c := range casos {
		comp := boletaValida()
		comp.Tipo = c.tipo
		comp.Serie = c.serie
		comp.Correlativo = c.correlativo

		nombre, err := cpe.NombreArchivoXML("20123456789", comp)
		require.NoError(t, err, "tipo %s", c.tipo)
		assert.Regexp(t, patronNombre, nombre)
	}
}

func TestNombreArchivoXML_PrefiereCamposExplicitos(t *testing.T) {
	// Si los campos explícitos existen, el string combinado se ignora aunque
	// contradiga.
	comp := boletaValida()
	comp.Serie = "B002"
	comp.Correlativo = 5
	comp.NumeroCompleto = "B999-00000099"

	nombre, err := cpe.NombreArchivoXML("20123456789", comp)
	require.NoError(t, err)
	assert.Equal(t, "20123456789-03-B002-00000005.xml", nombre)
}

func TestNombreArchivoXML_FallbackNumeroCompleto(t *testing.T) {
	comp := boletaValida()
	comp.Serie = ""
	comp.Correlativo = 0
	comp.NumeroCompleto = "B001-123"

	nombre, err := cpe.NombreArchivoXML("20123456789", comp)
	require.NoError(t, err)
	assert.Equal(t, "20123456789-03-B001-00000123.xml", nombre)
}

func TestNombreArchivoXML_NumeroCompletoIlegible(t *testing.T) {
	comp := boletaValida()
	comp.Serie = ""
	comp.Correlativo = 0
	comp.NumeroCompleto = "B001/123"

	_, err := cpe.NombreArchivoXML("20123456789", comp)
	assert.Error(t, err, "un número combinado sin guion no es derivable")
}

func TestNombreArchivoXML_SerieEnMinusculasSeNormaliza(t *testing.T) {
	comp := boletaValida()
	comp.Serie = "b001"

	nombre, err := cpe.NombreArchivoXML("20123456789", comp)
	require.NoError(t, err)
	assert.Regexp(t, patronNombre, nombre)
}

func TestSerieDelComprobante(t *testing.T) {
	comp := boletaValida()
	assert.Equal(t, "B001", cpe.SerieDelComprobante(comp))

	comp.Serie = ""
	comp.Correlativo = 0
	comp.NumeroCompleto = "F001-44"
	assert.Equal(t, "F001", cpe.SerieDelComprobante(comp))
}
