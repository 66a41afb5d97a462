package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ventasoft/facturacion-cpe/internal/domain"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	"github.com/ventasoft/facturacion-cpe/internal/domain/repository"
)

var _ repository.EnvioRepository = (*EnvioRepo)(nil)

// EnvioRepo implementación PostgreSQL de EnvioRepository (usable con pool o tx).
// Cada transición de estado del envío persiste un snapshot completo; la tabla
// es el registro de auditoría del ciclo de vida del comprobante ante SUNAT.
type EnvioRepo struct {
	q Querier
}

// NewEnvioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEnvioRepository(q Querier) *EnvioRepo {
	return &EnvioRepo{q: q}
}

const columnasEnvio = `id, comprobante_id, nombre_xml, estado, codigo_cdr, descripcion_cdr,
	ticket_sunat, huella_xml, intentos, ultimo_error, created_at, updated_at`

// Create persiste el registro inicial del envío (estado PENDIENTE).
func (r *EnvioRepo) Create(ctx context.Context, envio *entity.EnvioCPE) error {
	query := `
		INSERT INTO envios_cpe (` + columnasEnvio + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		envio.ID, envio.ComprobanteID, envio.NombreXML, envio.Estado,
		envio.CodigoCDR, envio.DescripcionCDR, envio.TicketSUNAT, envio.HuellaXML,
		envio.Intentos, envio.UltimoError, envio.CreatedAt, envio.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert envío: %w", err)
	}
	return nil
}

// Update sobrescribe el snapshot del envío.
func (r *EnvioRepo) Update(ctx context.Context, envio *entity.EnvioCPE) error {
	query := `
		UPDATE envios_cpe SET
			estado = $2, codigo_cdr = $3, descripcion_cdr = $4, ticket_sunat = $5,
			huella_xml = $6, intentos = $7, ultimo_error = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		envio.ID, envio.Estado, envio.CodigoCDR, envio.DescripcionCDR,
		envio.TicketSUNAT, envio.HuellaXML, envio.Intentos, envio.UltimoError, envio.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update envío: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un envío por ID.
func (r *EnvioRepo) GetByID(ctx context.Context, id string) (*entity.EnvioCPE, error) {
	query := `SELECT ` + columnasEnvio + ` FROM envios_cpe WHERE id = $1`
	return r.escanearUno(r.q.QueryRow(ctx, query, id))
}

// GetUltimoPorComprobante devuelve el envío más reciente de un comprobante,
// o nil si nunca se envió.
func (r *EnvioRepo) GetUltimoPorComprobante(ctx context.Context, comprobanteID string) (*entity.EnvioCPE, error) {
	query := `
		SELECT ` + columnasEnvio + `
		FROM envios_cpe
		WHERE comprobante_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`
	envio, err := r.escanearUno(r.q.QueryRow(ctx, query, comprobanteID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return envio, err
}

func (r *EnvioRepo) escanearUno(row pgx.Row) (*entity.EnvioCPE, error) {
	var e entity.EnvioCPE
	err := row.Scan(
		&e.ID, &e.ComprobanteID, &e.NombreXML, &e.Estado,
		&e.CodigoCDR, &e.DescripcionCDR, &e.TicketSUNAT, &e.HuellaXML,
		&e.Intentos, &e.UltimoError, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan envío: %w", err)
	}
	return &e, nil
}
