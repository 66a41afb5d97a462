// Carga de certificado desde .pfx/.p12 (PKCS#12) o par PEM.

package firmador

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// CargarCertificado resuelve el formato por la extensión del archivo: .pfx y
// .p12 se decodifican como PKCS#12, cualquier otro se trata como PEM con
// certificado y llave en el mismo archivo.
func CargarCertificado(path, password string) (tls.Certificate, error) {
	ext := strings.ToLower(path)
	if strings.HasSuffix(ext, ".pfx") || strings.HasSuffix(ext, ".p12") {
		return cargarP12(path, password)
	}
	cert, err := tls.LoadX509KeyPair(path, path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("firmador: cargar PEM: %w", err)
	}
	return cert, nil
}

// cargarP12 carga certificado y llave privada desde un archivo PKCS#12.
// El password puede ser vacío si el archivo no está protegido.
func cargarP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("firmador: leer p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("firmador: decodificar p12: %w", err)
	}
	// pkcs12.Decode devuelve solo el certificado hoja; es suficiente para la
	// firma del comprobante.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}
