package entity

import "time"

// Estados del envío de un comprobante al servicio de recepción SUNAT.
// ACEPTADO, RECHAZADO y ERROR son terminales.
const (
	EnvioPendiente = "PENDIENTE" // creado o en espera de reintento
	EnvioEnviando  = "ENVIANDO"  // llamada SOAP en vuelo, no cancelable
	EnvioAceptado  = "ACEPTADO"  // CDR conforme
	EnvioRechazado = "RECHAZADO" // rechazo definitivo; exige reenvío corregido
	EnvioError     = "ERROR"     // reintentos agotados; intervención manual
)

// EnvioCPE es el registro de transmisión de un comprobante. Lo crea el
// pipeline al iniciar la transmisión y solo el cliente de transmisión lo muta;
// cada transición de estado se persiste como snapshot de auditoría.
type EnvioCPE struct {
	ID             string
	ComprobanteID  string
	NombreXML      string // {RUC}-{tipo}-{serie}-{correlativo:08d}.xml
	Estado         string
	CodigoCDR      string // cbc:ResponseCode del CDR (vacío hasta tener veredicto)
	DescripcionCDR string
	TicketSUNAT    string // ticket para consultas asíncronas (getStatus)
	HuellaXML      string // SHA-256 del XML canónico (C14N)
	Intentos       int
	UltimoError    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Terminal indica si el envío alcanzó un estado final.
func (e *EnvioCPE) Terminal() bool {
	switch e.Estado {
	case EnvioAceptado, EnvioRechazado, EnvioError:
		return true
	}
	return false
}
