// Firma digital XML-DSig para comprobantes electrónicos SUNAT.
// Inyecta <ds:Signature> en el <ext:ExtensionContent> reservado del XML.

package firmador

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/ventasoft/facturacion-cpe/pkg/cpe"
)

// Namespaces y algoritmos XMLDSig.
const (
	namespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	algC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	algRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	algSHA256          = "http://www.w3.org/2000/09/xmldsig#sha256"
	transformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// FirmadorXMLDSig firma el documento con RSA-SHA256 sobre la forma canónica
// C14N e inyecta el nodo en el ExtensionContent que el builder deja vacío.
type FirmadorXMLDSig struct {
	cert tls.Certificate
	ruc  string
}

// New construye el firmador con el certificado del emisor.
func New(cert tls.Certificate, ruc string) (*FirmadorXMLDSig, error) {
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("firmador: certificado vacío")
	}
	if _, ok := cert.PrivateKey.(*rsa.PrivateKey); !ok {
		return nil, fmt.Errorf("firmador: se requiere llave privada RSA")
	}
	return &FirmadorXMLDSig{cert: cert, ruc: ruc}, nil
}

// Firmar implementa pkg/cpe.Firmador.
func (f *FirmadorXMLDSig) Firmar(xmlBytes []byte) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("firmador: XML vacío")
	}
	priv := f.cert.PrivateKey.(*rsa.PrivateKey)
	x509Cert, err := x509.ParseCertificate(f.cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("firmador: parsear certificado: %w", err)
	}

	// 1) Digest del documento completo (C14N), Reference URI="" (enveloped).
	canonicalDoc, err := canonicalizar(xmlBytes)
	if err != nil {
		canonicalDoc = xmlBytes
	}
	docDigest := sha256.Sum256(canonicalDoc)

	// 2) SignedInfo canónico firmado con RSA-SHA256.
	signedInfoXML := f.armarSignedInfo(base64.StdEncoding.EncodeToString(docDigest[:]))
	canonicalSignedInfo, err := canonicalizar([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	hashSignedInfo := sha256.Sum256(canonicalSignedInfo)
	firma, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, hashSignedInfo[:])
	if err != nil {
		return nil, fmt.Errorf("firmador: firmar SignedInfo: %w", err)
	}

	// 3) Nodo completo con KeyInfo (certificado X509 en Base64).
	firmaXML := f.armarSignature(
		signedInfoXML,
		base64.StdEncoding.EncodeToString(firma),
		base64.StdEncoding.EncodeToString(x509Cert.Raw),
	)

	// 4) Inyección en el ExtensionContent reservado.
	return inyectarFirma(xmlBytes, firmaXML)
}

func canonicalizar(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func (f *FirmadorXMLDSig) armarSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + namespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + algC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + algRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + transformEnveloped + `"/>`)
	sb.WriteString(`<ds:Transform Algorithm="` + algC14N + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + algSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func (f *FirmadorXMLDSig) armarSignature(signedInfoXML, firmaB64, certB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + namespaceDS + `" Id="SIGN-` + f.ruc + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + firmaB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

// inyectarFirma coloca el nodo ds:Signature dentro del primer
// ext:ExtensionContent del documento.
func inyectarFirma(xmlBytes []byte, firmaXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("firmador: parsear XML: %w", err)
	}
	raiz := doc.Root()
	if raiz == nil {
		return nil, fmt.Errorf("firmador: documento sin raíz")
	}

	contenido := primerExtensionContent(raiz)
	if contenido == nil {
		return nil, fmt.Errorf("firmador: no se encontró ext:ExtensionContent para la firma")
	}

	firmaDoc := etree.NewDocument()
	if err := firmaDoc.ReadFromString(firmaXML); err != nil {
		return nil, fmt.Errorf("firmador: parsear Signature: %w", err)
	}
	contenido.AddChild(firmaDoc.Root())

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("firmador: serializar XML firmado: %w", err)
	}
	return out.Bytes(), nil
}

func primerExtensionContent(e *etree.Element) *etree.Element {
	local := e.Tag
	if i := strings.Index(local, ":"); i >= 0 {
		local = local[i+1:]
	}
	if local == "ExtensionContent" {
		return e
	}
	for _, hijo := range e.ChildElements() {
		if found := primerExtensionContent(hijo); found != nil {
			return found
		}
	}
	return nil
}

var _ cpe.Firmador = (*FirmadorXMLDSig)(nil)
