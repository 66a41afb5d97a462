package cpe

import (
	"fmt"

	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
)

// Eventos que mueven la máquina de estados del envío.
const (
	EventoEnviar           = "enviar"            // PENDIENTE -> ENVIANDO
	EventoAceptado         = "aceptado"          // ENVIANDO  -> ACEPTADO (terminal)
	EventoRechazo          = "rechazo"           // ENVIANDO  -> RECHAZADO (terminal)
	EventoFalloTransitorio = "fallo_transitorio" // ENVIANDO  -> PENDIENTE (reintento acotado)
	EventoIntentosAgotados = "intentos_agotados" // ENVIANDO  -> ERROR (terminal)
)

// transiciones tabla estado × evento -> estado siguiente. Toda combinación
// ausente es una transición ilegal.
var transiciones = map[string]map[string]string{
	entity.EnvioPendiente: {
		EventoEnviar: entity.EnvioEnviando,
	},
	entity.EnvioEnviando: {
		EventoAceptado:         entity.EnvioAceptado,
		EventoRechazo:          entity.EnvioRechazado,
		EventoFalloTransitorio: entity.EnvioPendiente,
		EventoIntentosAgotados: entity.EnvioError,
	},
}

// Transicionar aplica un evento sobre el envío y muta su Estado. Las
// transiciones ilegales (por ejemplo reenviar un ACEPTADO) devuelven error sin
// tocar el registro; el estado terminal de un documento legal no se revierte.
func Transicionar(envio *entity.EnvioCPE, evento string) error {
	siguientes, ok := transiciones[envio.Estado]
	if !ok {
		return fmt.Errorf("estado %q es terminal: no admite el evento %q", envio.Estado, evento)
	}
	nuevo, ok := siguientes[evento]
	if !ok {
		return fmt.Errorf("transición ilegal: estado %q no admite el evento %q", envio.Estado, evento)
	}
	envio.Estado = nuevo
	return nil
}
