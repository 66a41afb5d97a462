// Package billing orquesta la transmisión de comprobantes electrónicos:
// validación, construcción del XML, firma, empaquetado, envío SOAP con
// reintentos acotados y actualización del registro de envío.
package billing

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomía de fallas de la transmisión. Cada tipo decide la política de
// reintento; ninguna falla termina sin actualizar el registro de envío.
var (
	// ErrConfiguracion falta RUC, credenciales SOL o certificado. Fatal y
	// detectado antes de cualquier intento de red.
	ErrConfiguracion = errors.New("configuración de transmisión incompleta")
	// ErrTransporte falla transitoria de red o del servicio SUNAT; se
	// reintenta con backoff exponencial acotado.
	ErrTransporte = errors.New("falla transitoria de transporte")
	// ErrDesconocido respuesta que no se pudo clasificar; se expone al
	// operador y no se reintenta automáticamente.
	ErrDesconocido = errors.New("respuesta del servicio no clasificable")
)

// ErrorValidacion el comprobante incumple reglas obligatorias. Fatal: exige
// corregir el origen, nunca llega a la red.
type ErrorValidacion struct {
	Errores []string
}

func (e *ErrorValidacion) Error() string {
	return "comprobante inválido: " + strings.Join(e.Errores, "; ")
}

// RechazoSUNAT rechazo definitivo con código numérico del catálogo. Terminal:
// una corrección se reenvía como intento nuevo, jamás como reintento.
type RechazoSUNAT struct {
	Codigo      string
	Descripcion string
}

func (e *RechazoSUNAT) Error() string {
	return fmt.Sprintf("rechazo SUNAT [%s]: %s", e.Codigo, e.Descripcion)
}
