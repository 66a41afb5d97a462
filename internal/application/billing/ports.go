package billing

import "time"

// ConfigTransmision parámetros inmutables del proceso, construidos una sola
// vez al arranque e inyectados. No se relee el entorno por llamada.
type ConfigTransmision struct {
	RUC        string // RUC del emisor (11 dígitos)
	SOLUsuario string // usuario secundario SOL
	SOLClave   string
	Entorno    string // sunat.EntornoBeta | sunat.EntornoProduccion
	CertPath   string // certificado de firma (lo consume el firmador externo)

	MaxIntentos int           // intentos totales ante fallas transitorias
	EsperaBase  time.Duration // espera inicial del backoff exponencial
	EsperaMax   time.Duration // tope del backoff
}

// faltantes lista las precondiciones de transmisión ausentes.
func (c ConfigTransmision) faltantes() []string {
	var f []string
	if c.RUC == "" {
		f = append(f, "RUC del emisor")
	}
	if c.SOLUsuario == "" || c.SOLClave == "" {
		f = append(f, "credenciales SOL")
	}
	if c.CertPath == "" {
		f = append(f, "certificado de firma")
	}
	return f
}

// normalizada aplica defaults de reintento cuando la configuración no los
// define.
func (c ConfigTransmision) normalizada() ConfigTransmision {
	if c.MaxIntentos < 1 {
		c.MaxIntentos = 3
	}
	if c.EsperaBase <= 0 {
		c.EsperaBase = 2 * time.Second
	}
	if c.EsperaMax <= 0 {
		c.EsperaMax = 30 * time.Second
	}
	return c
}
