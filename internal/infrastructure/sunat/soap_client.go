package sunat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ── Constantes de entorno ─────────────────────────────────────────────────────

const (
	// EntornoBeta ambiente de pruebas/homologación de SUNAT.
	EntornoBeta = "beta"
	// EntornoProduccion ambiente productivo. No intercambiable con beta: un
	// documento aceptado en beta no tiene valor legal.
	EntornoProduccion = "produccion"

	urlBeta       = "https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService"
	urlProduccion = "https://e-factura.sunat.gob.pe/ol-ti-itcpfegem/billService"

	nsSoapEnv = "http://schemas.xmlsoap.org/soap/envelope/"
	nsService = "http://service.sunat.gob.pe"
	nsWsse    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
)

// ErrServicioNoDisponible indica una falla transitoria de red o del lado de
// SUNAT (timeout, 5xx). El cliente de transmisión la reintenta con backoff.
var ErrServicioNoDisponible = errors.New("sunat: el servicio de recepción no está disponible")

// ── Puerto (interfaz) ─────────────────────────────────────────────────────────

// RespuestaEnvio resultado de sendBill: el CDR viaja como ZIP en base64.
type RespuestaEnvio struct {
	CDRZip []byte
}

// RespuestaEstado resultado de getStatus para envíos con ticket.
// StatusCode: "0" = procesado (CDR disponible), "98" = en proceso,
// "99" = procesado con errores.
type RespuestaEstado struct {
	StatusCode string
	CDRZip     []byte
}

// FaultSOAP error de protocolo devuelto por el servicio (credenciales,
// archivo, validación estructural). El código numérico se resuelve contra el
// catálogo de errores SUNAT.
type FaultSOAP struct {
	Codigo  string
	Mensaje string
}

func (f *FaultSOAP) Error() string {
	return fmt.Sprintf("sunat: fault SOAP [%s]: %s", f.Codigo, f.Mensaje)
}

// BillService define el puerto de salida hacia el servicio de recepción.
// La implementación concreta usa SOAP; para tests se inyecta un mock.
type BillService interface {
	// SendBill entrega el ZIP del comprobante. nombreZip sigue la convención
	// {RUC}-{tipo}-{serie}-{correlativo}.zip.
	SendBill(ctx context.Context, nombreZip string, zipBytes []byte) (*RespuestaEnvio, error)
	// GetStatus consulta el estado de un envío asíncrono por ticket.
	GetStatus(ctx context.Context, ticket string) (*RespuestaEstado, error)
}

// ── Implementación SOAP ───────────────────────────────────────────────────────

// CredencialesSOL credenciales del sistema SOL. El usuario que viaja en el
// encabezado WS-Security es la concatenación RUC + usuario secundario.
type CredencialesSOL struct {
	RUC     string
	Usuario string
	Clave   string
}

// SOAPBillClient implementa BillService contra el billService de SUNAT.
// Usa net/http de la stdlib; el envelope es lo bastante simple como para no
// justificar una librería SOAP.
type SOAPBillClient struct {
	httpClient   *http.Client
	endpoint     string
	credenciales CredencialesSOL
}

// NewSOAPBillClient construye el cliente para el entorno dado. El timeout es
// generoso (90 s): el servicio de recepción puede tardar varios segundos y un
// corte prematuro deja el envío en un estado ambiguo.
func NewSOAPBillClient(entorno string, cred CredencialesSOL) (*SOAPBillClient, error) {
	var endpoint string
	switch entorno {
	case EntornoBeta:
		endpoint = urlBeta
	case EntornoProduccion:
		endpoint = urlProduccion
	default:
		return nil, fmt.Errorf("sunat: entorno desconocido %q (usar %q o %q)", entorno, EntornoBeta, EntornoProduccion)
	}
	return NewSOAPBillClientEndpoint(endpoint, cred), nil
}

// NewSOAPBillClientEndpoint construye el cliente contra un endpoint arbitrario.
// Útil para apuntar a un proxy interno o a un servidor de pruebas.
func NewSOAPBillClientEndpoint(endpoint string, cred CredencialesSOL) *SOAPBillClient {
	return &SOAPBillClient{
		httpClient:   &http.Client{Timeout: 90 * time.Second},
		endpoint:     endpoint,
		credenciales: cred,
	}
}

// ── Estructuras SOAP de petición ──────────────────────────────────────────────

type soapEnvelope struct {
	XMLName   xml.Name   `xml:"soapenv:Envelope"`
	XmlnsEnv  string     `xml:"xmlns:soapenv,attr"`
	XmlnsSer  string     `xml:"xmlns:ser,attr"`
	XmlnsWsse string     `xml:"xmlns:wsse,attr"`
	Header    soapHeader `xml:"soapenv:Header"`
	Body      soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct {
	Security wsseSecurity `xml:"wsse:Security"`
}

type wsseSecurity struct {
	Token wsseUsernameToken `xml:"wsse:UsernameToken"`
}

type wsseUsernameToken struct {
	Username string `xml:"wsse:Username"`
	Password string `xml:"wsse:Password"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type sendBillBody struct {
	XMLName     xml.Name `xml:"ser:sendBill"`
	FileName    string   `xml:"fileName"`
	ContentFile string   `xml:"contentFile"` // ZIP en Base64
}

type getStatusBody struct {
	XMLName xml.Name `xml:"ser:getStatus"`
	Ticket  string   `xml:"ticket"`
}

// ── Estructuras SOAP de respuesta ─────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	SendBillResponse  *sendBillResponse  `xml:"sendBillResponse"`
	GetStatusResponse *getStatusResponse `xml:"getStatusResponse"`
	Fault             *soapFault         `xml:"Fault"`
}

type sendBillResponse struct {
	ApplicationResponse string `xml:"applicationResponse"` // ZIP del CDR en Base64
}

type getStatusResponse struct {
	Status struct {
		StatusCode string `xml:"statusCode"`
		Content    string `xml:"content"` // ZIP del CDR en Base64 (statusCode 0)
	} `xml:"status"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// SendBill entrega el comprobante y devuelve el CDR desempaquetable.
func (c *SOAPBillClient) SendBill(ctx context.Context, nombreZip string, zipBytes []byte) (*RespuestaEnvio, error) {
	body := &sendBillBody{
		FileName:    nombreZip,
		ContentFile: base64.StdEncoding.EncodeToString(zipBytes),
	}
	raw, err := c.llamar(ctx, body)
	if err != nil {
		return nil, err
	}
	resp, err := parsearRespuesta(raw)
	if err != nil {
		return nil, err
	}
	if resp.SendBillResponse == nil {
		return nil, fmt.Errorf("sunat: respuesta SOAP sin sendBillResponse: %s", resumen(raw))
	}
	cdrZip, err := base64.StdEncoding.DecodeString(strings.TrimSpace(resp.SendBillResponse.ApplicationResponse))
	if err != nil {
		return nil, fmt.Errorf("sunat: applicationResponse no es base64 válido: %w", err)
	}
	return &RespuestaEnvio{CDRZip: cdrZip}, nil
}

// GetStatus consulta un ticket de envío asíncrono.
func (c *SOAPBillClient) GetStatus(ctx context.Context, ticket string) (*RespuestaEstado, error) {
	raw, err := c.llamar(ctx, &getStatusBody{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	resp, err := parsearRespuesta(raw)
	if err != nil {
		return nil, err
	}
	if resp.GetStatusResponse == nil {
		return nil, fmt.Errorf("sunat: respuesta SOAP sin getStatusResponse: %s", resumen(raw))
	}
	estado := &RespuestaEstado{StatusCode: resp.GetStatusResponse.Status.StatusCode}
	if contenido := strings.TrimSpace(resp.GetStatusResponse.Status.Content); contenido != "" {
		cdrZip, errB64 := base64.StdEncoding.DecodeString(contenido)
		if errB64 != nil {
			return nil, fmt.Errorf("sunat: contenido del ticket no es base64 válido: %w", errB64)
		}
		estado.CDRZip = cdrZip
	}
	return estado, nil
}

// llamar serializa el envelope, ejecuta el POST y devuelve el cuerpo crudo.
func (c *SOAPBillClient) llamar(ctx context.Context, contenido interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		XmlnsEnv:  nsSoapEnv,
		XmlnsSer:  nsService,
		XmlnsWsse: nsWsse,
		Header: soapHeader{Security: wsseSecurity{Token: wsseUsernameToken{
			Username: c.credenciales.RUC + c.credenciales.Usuario,
			Password: c.credenciales.Clave,
		}}},
		Body: soapBody{Content: contenido},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sunat: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("sunat: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrServicioNoDisponible, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrServicioNoDisponible, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // máx 4 MB
	if err != nil {
		return nil, fmt.Errorf("sunat: leer respuesta: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrServicioNoDisponible, resp.StatusCode)
	}
	return raw, nil
}

// parsearRespuesta desempaqueta el envelope de respuesta. Un Fault se
// devuelve como *FaultSOAP con el código numérico extraído del faultcode.
func parsearRespuesta(raw []byte) (*soapResponseBody, error) {
	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(raw, &envResp); err != nil {
		return nil, fmt.Errorf("sunat: respuesta SOAP ilegible: %s", resumen(raw))
	}
	if envResp.Body.Fault != nil {
		return nil, &FaultSOAP{
			Codigo:  codigoDeFault(envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString),
			Mensaje: envResp.Body.Fault.FaultString,
		}
	}
	return &envResp.Body, nil
}

// patronCodigo los faults de SUNAT traen el código numérico en el faultcode
// (ej: "soap-env:Client.0102") o al inicio del faultstring.
var patronCodigo = regexp.MustCompile(`\d{4}`)

func codigoDeFault(faultCode, faultString string) string {
	if m := patronCodigo.FindString(faultCode); m != "" {
		return m
	}
	return patronCodigo.FindString(faultString)
}

func resumen(raw []byte) string {
	const max = 512
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
