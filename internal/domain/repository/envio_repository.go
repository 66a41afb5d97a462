package repository

import (
	"context"

	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
)

// EnvioRepository persistencia de los registros de envío. Es la salida hacia
// el colaborador de auditoría: cada transición de estado se escribe como
// snapshot, ningún fallo se descarta en silencio.
type EnvioRepository interface {
	Create(ctx context.Context, envio *entity.EnvioCPE) error
	Update(ctx context.Context, envio *entity.EnvioCPE) error
	GetByID(ctx context.Context, id string) (*entity.EnvioCPE, error)
	// GetUltimoPorComprobante devuelve el envío más reciente del comprobante,
	// o nil si nunca se transmitió.
	GetUltimoPorComprobante(ctx context.Context, comprobanteID string) (*entity.EnvioCPE, error)
}
