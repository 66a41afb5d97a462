package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ventasoft/facturacion-cpe/internal/application/dto"
	"github.com/ventasoft/facturacion-cpe/internal/domain"
	domaincpe "github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	"github.com/ventasoft/facturacion-cpe/internal/domain/repository"
	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat"
	"github.com/ventasoft/facturacion-cpe/pkg/cpe"
	"github.com/ventasoft/facturacion-cpe/pkg/logger"
)

// ClienteTransmision orquesta el ciclo completo de un comprobante:
//
//	Validar → XML UBL 2.1 → Firma (externa) → ZIP → sendBill → CDR → Update
//
// La firma y el transporte SOAP son capacidades inyectadas; este cliente solo
// define el contrato del payload y la política de reintento.
type ClienteTransmision struct {
	cfg        ConfigTransmision
	emisor     *entity.Empresa
	builder    *sunat.XMLBuilderService
	firmador   cpe.Firmador
	transporte sunat.BillService
	envios     repository.EnvioRepository
	log        *logger.Logger
}

// NewClienteTransmision construye el cliente con todas sus dependencias.
func NewClienteTransmision(
	cfg ConfigTransmision,
	emisor *entity.Empresa,
	builder *sunat.XMLBuilderService,
	firmador cpe.Firmador,
	transporte sunat.BillService,
	envios repository.EnvioRepository,
	log *logger.Logger,
) *ClienteTransmision {
	return &ClienteTransmision{
		cfg:        cfg.normalizada(),
		emisor:     emisor,
		builder:    builder,
		firmador:   firmador,
		transporte: transporte,
		envios:     envios,
		log:        log,
	}
}

// Preparar valida el comprobante y crea el registro de envío en PENDIENTE.
// Todas las fallas de esta etapa (configuración, validación, nombre) son
// síncronas y ocurren antes de cualquier intento de red.
func (c *ClienteTransmision) Preparar(ctx context.Context, comp *entity.Comprobante) (*entity.EnvioCPE, error) {
	if faltan := c.cfg.faltantes(); len(faltan) > 0 {
		return nil, fmt.Errorf("%w: falta %s", ErrConfiguracion, strings.Join(faltan, ", "))
	}

	res := domaincpe.Validar(comp, c.emisor)
	if !res.Valido {
		return nil, &ErrorValidacion{Errores: res.Errores}
	}

	nombreXML, err := domaincpe.NombreArchivoXML(c.emisor.RUC, comp)
	if err != nil {
		return nil, err
	}

	// Idempotencia: un comprobante ya aceptado no vuelve a la red.
	previo, err := c.envios.GetUltimoPorComprobante(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("consultar envíos previos: %w", err)
	}
	if previo != nil && previo.Estado == entity.EnvioAceptado {
		return nil, domain.ErrEnvioYaAceptado
	}

	ahora := time.Now()
	envio := &entity.EnvioCPE{
		ID:            uuid.New().String(),
		ComprobanteID: comp.ID,
		NombreXML:     nombreXML,
		Estado:        entity.EnvioPendiente,
		CreatedAt:     ahora,
		UpdatedAt:     ahora,
	}
	if err := c.envios.Create(ctx, envio); err != nil {
		return nil, fmt.Errorf("crear registro de envío: %w", err)
	}
	return envio, nil
}

// Transmitir ejecuta los intentos de entrega hasta alcanzar un estado
// terminal o agotar la política de reintentos. Siempre deja el registro de
// envío actualizado; el error devuelto clasifica la falla según la taxonomía
// del paquete.
func (c *ClienteTransmision) Transmitir(ctx context.Context, envio *entity.EnvioCPE, comp *entity.Comprobante) error {
	// Revalidar idempotencia por si otro proceso aceptó el documento entre
	// Preparar y la ejecución en el worker.
	previo, err := c.envios.GetUltimoPorComprobante(ctx, comp.ID)
	if err != nil {
		return fmt.Errorf("consultar envíos previos: %w", err)
	}
	if previo != nil && previo.Estado == entity.EnvioAceptado && previo.ID != envio.ID {
		envio.UltimoError = domain.ErrEnvioYaAceptado.Error()
		c.persistir(ctx, envio)
		return domain.ErrEnvioYaAceptado
	}

	xmlBytes, err := c.builder.Build(comp, c.emisor)
	if err != nil {
		return c.terminarConError(ctx, envio, fmt.Errorf("construir XML: %w", err))
	}
	firmado, err := c.firmador.Firmar(xmlBytes)
	if err != nil {
		return c.terminarConError(ctx, envio, fmt.Errorf("firmar XML: %w", err))
	}
	if huella, errH := sunat.HuellaXML(firmado); errH == nil {
		envio.HuellaXML = huella
	} else {
		c.log.Warn().Err(errH).Str("envio", envio.ID).Msg("no se pudo calcular la huella C14N")
	}
	zipBytes, nombreZip, err := sunat.EmpaquetarXML(firmado, envio.NombreXML)
	if err != nil {
		return c.terminarConError(ctx, envio, fmt.Errorf("empaquetar ZIP: %w", err))
	}

	for intento := 1; ; intento++ {
		if err := domaincpe.Transicionar(envio, domaincpe.EventoEnviar); err != nil {
			return err
		}
		envio.Intentos = intento
		c.persistir(ctx, envio)

		c.log.Info().
			Str("envio", envio.ID).
			Str("archivo", nombreZip).
			Int("intento", intento).
			Msg("enviando comprobante a SUNAT")

		resp, errEnvio := c.transporte.SendBill(ctx, nombreZip, zipBytes)
		if errEnvio == nil {
			return c.resolverCDR(ctx, envio, resp.CDRZip)
		}

		transitorio, errClasificado := c.clasificar(errEnvio)
		if !transitorio {
			return c.aplicarFallaTerminal(ctx, envio, errClasificado)
		}

		// Falla transitoria: reintentar con backoff acotado.
		envio.UltimoError = errClasificado.Error()
		if intento >= c.cfg.MaxIntentos {
			if err := domaincpe.Transicionar(envio, domaincpe.EventoIntentosAgotados); err != nil {
				return err
			}
			c.persistir(ctx, envio)
			c.log.Error().Str("envio", envio.ID).Int("intentos", intento).Msg("reintentos agotados, envío en ERROR")
			return fmt.Errorf("%w: %d intentos agotados: %s", ErrTransporte, intento, envio.UltimoError)
		}
		if err := domaincpe.Transicionar(envio, domaincpe.EventoFalloTransitorio); err != nil {
			return err
		}
		c.persistir(ctx, envio)

		espera := c.esperaBackoff(intento)
		c.log.Warn().
			Str("envio", envio.ID).
			Dur("espera", espera).
			Str("causa", envio.UltimoError).
			Msg("falla transitoria, reintentando")
		select {
		case <-ctx.Done():
			// Reintento en cola cancelado (ej: venta anulada). El envío queda
			// PENDIENTE, sin estado huérfano.
			envio.UltimoError = "reintento cancelado: " + ctx.Err().Error()
			c.persistir(ctx, envio)
			return ctx.Err()
		case <-time.After(espera):
		}
	}
}

// ConsultarTicket consulta el estado de un envío asíncrono y aplica el
// veredicto si ya está disponible.
func (c *ClienteTransmision) ConsultarTicket(ctx context.Context, envio *entity.EnvioCPE) error {
	if envio.TicketSUNAT == "" {
		return fmt.Errorf("el envío %s no tiene ticket SUNAT asociado", envio.ID)
	}
	estado, err := c.transporte.GetStatus(ctx, envio.TicketSUNAT)
	if err != nil {
		transitorio, errClasificado := c.clasificar(err)
		if transitorio {
			return fmt.Errorf("%w: %s", ErrTransporte, errClasificado.Error())
		}
		return c.aplicarFallaTerminal(ctx, envio, errClasificado)
	}
	switch estado.StatusCode {
	case "98":
		// Aún en proceso; sin transición.
		return nil
	case "0", "99":
		if len(estado.CDRZip) == 0 {
			return fmt.Errorf("%w: statusCode %s sin CDR adjunto", ErrDesconocido, estado.StatusCode)
		}
		return c.resolverCDR(ctx, envio, estado.CDRZip)
	default:
		return fmt.Errorf("%w: statusCode %q", ErrDesconocido, estado.StatusCode)
	}
}

// ── resolución de veredictos ──────────────────────────────────────────────────

// resolverCDR interpreta la constancia de recepción y cierra el envío.
func (c *ClienteTransmision) resolverCDR(ctx context.Context, envio *entity.EnvioCPE, cdrZip []byte) error {
	cdr, err := sunat.ParsearCDR(cdrZip)
	if err != nil {
		return c.terminarConError(ctx, envio, fmt.Errorf("%w: %s", ErrDesconocido, err.Error()))
	}

	envio.CodigoCDR = cdr.Codigo
	envio.DescripcionCDR = cdr.Descripcion

	if cdr.Aceptado {
		if err := domaincpe.Transicionar(envio, domaincpe.EventoAceptado); err != nil {
			return err
		}
		envio.UltimoError = ""
		c.persistir(ctx, envio)
		evt := c.log.Info().Str("envio", envio.ID).Str("cdr", cdr.Codigo)
		if cdr.ConObservaciones {
			evt = evt.Str("observaciones", cdr.Descripcion)
		}
		evt.Msg("comprobante aceptado por SUNAT")
		return nil
	}

	if err := domaincpe.Transicionar(envio, domaincpe.EventoRechazo); err != nil {
		return err
	}
	rechazo := &RechazoSUNAT{Codigo: cdr.Codigo, Descripcion: cdr.Descripcion}
	if rechazo.Descripcion == "" {
		rechazo.Descripcion = cpe.DescripcionError(cdr.Codigo)
	}
	envio.UltimoError = rechazo.Error()
	c.persistir(ctx, envio)
	c.log.Error().Str("envio", envio.ID).Str("cdr", cdr.Codigo).Msg("comprobante rechazado por SUNAT")
	return rechazo
}

// clasificar decide si un error del transporte es transitorio. Devuelve el
// error ya tipado según la taxonomía.
func (c *ClienteTransmision) clasificar(err error) (transitorio bool, clasificado error) {
	var fault *sunat.FaultSOAP
	if errors.As(err, &fault) {
		if fault.Codigo != "" && cpe.EsReintentable(fault.Codigo) {
			return true, fmt.Errorf("%w: [%s] %s", ErrTransporte, fault.Codigo, cpe.DescripcionError(fault.Codigo))
		}
		if fault.Codigo == "" {
			return false, fmt.Errorf("%w: %s", ErrDesconocido, fault.Mensaje)
		}
		return false, &RechazoSUNAT{Codigo: fault.Codigo, Descripcion: cpe.DescripcionError(fault.Codigo)}
	}
	if errors.Is(err, sunat.ErrServicioNoDisponible) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true, fmt.Errorf("%w: %s", ErrTransporte, err.Error())
	}
	return false, fmt.Errorf("%w: %s", ErrDesconocido, err.Error())
}

// aplicarFallaTerminal cierra el envío según el tipo de falla no transitoria.
func (c *ClienteTransmision) aplicarFallaTerminal(ctx context.Context, envio *entity.EnvioCPE, errClasificado error) error {
	var rechazo *RechazoSUNAT
	if errors.As(errClasificado, &rechazo) {
		if err := domaincpe.Transicionar(envio, domaincpe.EventoRechazo); err != nil {
			return err
		}
		envio.CodigoCDR = rechazo.Codigo
		envio.DescripcionCDR = rechazo.Descripcion
		envio.UltimoError = rechazo.Error()
		c.persistir(ctx, envio)
		c.log.Error().Str("envio", envio.ID).Str("codigo", rechazo.Codigo).Msg("rechazo definitivo de SUNAT")
		return rechazo
	}
	return c.terminarConError(ctx, envio, errClasificado)
}

// terminarConError deja el envío en ERROR (intervención manual).
func (c *ClienteTransmision) terminarConError(ctx context.Context, envio *entity.EnvioCPE, causa error) error {
	envio.UltimoError = causa.Error()
	if envio.Estado == entity.EnvioEnviando {
		if err := domaincpe.Transicionar(envio, domaincpe.EventoIntentosAgotados); err != nil {
			return err
		}
	} else {
		envio.Estado = entity.EnvioError
	}
	c.persistir(ctx, envio)
	c.log.Error().Str("envio", envio.ID).Err(causa).Msg("envío terminado en ERROR")
	return causa
}

func (c *ClienteTransmision) esperaBackoff(intento int) time.Duration {
	espera := c.cfg.EsperaBase
	for i := 1; i < intento; i++ {
		espera *= 2
		if espera >= c.cfg.EsperaMax {
			return c.cfg.EsperaMax
		}
	}
	if espera > c.cfg.EsperaMax {
		return c.cfg.EsperaMax
	}
	return espera
}

// persistir escribe el snapshot del envío. Un fallo de persistencia se loguea
// pero no interrumpe la transmisión: el estado en memoria sigue siendo la
// fuente de verdad del intento en curso.
func (c *ClienteTransmision) persistir(ctx context.Context, envio *entity.EnvioCPE) {
	envio.UpdatedAt = time.Now()
	if err := c.envios.Update(ctx, envio); err != nil {
		c.log.Error().Err(err).Str("envio", envio.ID).Str("estado", envio.Estado).Msg("no se pudo persistir el snapshot del envío")
	}
}

// Snapshot arma la representación de salida del envío para la API.
func Snapshot(envio *entity.EnvioCPE) dto.EnvioResponse {
	return dto.EnvioResponse{
		ID:             envio.ID,
		ComprobanteID:  envio.ComprobanteID,
		NombreXML:      envio.NombreXML,
		Estado:         envio.Estado,
		CodigoCDR:      envio.CodigoCDR,
		DescripcionCDR: envio.DescripcionCDR,
		Intentos:       envio.Intentos,
		UltimoError:    envio.UltimoError,
		ActualizadoEn:  envio.UpdatedAt,
	}
}
