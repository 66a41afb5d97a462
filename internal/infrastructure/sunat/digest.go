package sunat

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// HuellaXML calcula el SHA-256 hex del documento canonicalizado (C14N).
// La huella identifica el contenido con independencia de espacios, orden de
// atributos o la declaración XML, y se guarda en el registro de envío para
// detectar retransmisiones de un documento ya aceptado con otro formato.
func HuellaXML(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	canonico, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("c14n: canonicalizar documento: %w", err)
	}
	sum := sha256.Sum256(canonico)
	return hex.EncodeToString(sum[:]), nil
}
