package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domaincpe "github.com/ventasoft/facturacion-cpe/internal/domain/cpe"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	"github.com/ventasoft/facturacion-cpe/pkg/logger"
)

// ErrDespachadorCerrado el despachador ya no acepta trabajos.
var ErrDespachadorCerrado = errors.New("el despachador de envíos está cerrado")

// ErrColaLlena la cola de la serie alcanzó su capacidad.
var ErrColaLlena = errors.New("la cola de envíos de la serie está llena")

const capacidadCola = 64

type trabajoEnvio struct {
	ctx   context.Context
	envio *entity.EnvioCPE
	comp  *entity.Comprobante
}

// Despachador ejecuta transmisiones en segundo plano. Los envíos de una misma
// serie se procesan en orden FIFO (el correlativo es consecutivo por serie);
// series distintas avanzan en paralelo hasta el tope global de concurrencia.
type Despachador struct {
	cliente *ClienteTransmision
	log     *logger.Logger

	sem chan struct{} // tope global de transmisiones simultáneas

	mu      sync.Mutex
	colas   map[string]chan trabajoEnvio
	cerrado bool

	ctx      context.Context
	cancelar context.CancelFunc
	wg       sync.WaitGroup
}

// NewDespachador crea el despachador. maxConcurrentes limita cuántas
// transmisiones tocan la red a la vez.
func NewDespachador(cliente *ClienteTransmision, maxConcurrentes int, log *logger.Logger) *Despachador {
	if maxConcurrentes < 1 {
		maxConcurrentes = 4
	}
	ctx, cancelar := context.WithCancel(context.Background())
	return &Despachador{
		cliente:  cliente,
		log:      log,
		sem:      make(chan struct{}, maxConcurrentes),
		colas:    map[string]chan trabajoEnvio{},
		ctx:      ctx,
		cancelar: cancelar,
	}
}

// Encolar agrega un envío a la cola de su serie y retorna de inmediato. El
// ctx del trabajo gobierna los reintentos: cancelarlo (por ejemplo al anular
// la venta) aborta las esperas de backoff sin dejar estados huérfanos.
func (d *Despachador) Encolar(ctx context.Context, envio *entity.EnvioCPE, comp *entity.Comprobante) error {
	d.mu.Lock()
	if d.cerrado {
		d.mu.Unlock()
		return ErrDespachadorCerrado
	}
	// La clave de la cola es la serie normalizada: "b001", "B001" y el
	// fallback "B001-1" de pantallas antiguas deben serializar juntos.
	serie := domaincpe.SerieDelComprobante(comp)
	if serie == "" {
		serie = comp.NumeroCompleto
	}
	cola, ok := d.colas[serie]
	if !ok {
		cola = make(chan trabajoEnvio, capacidadCola)
		d.colas[serie] = cola
		d.wg.Add(1)
		go d.atenderSerie(serie, cola)
	}
	d.mu.Unlock()

	select {
	case cola <- trabajoEnvio{ctx: ctx, envio: envio, comp: comp}:
		return nil
	default:
		return fmt.Errorf("%w: serie %s", ErrColaLlena, serie)
	}
}

// atenderSerie consume la cola de una serie de a un trabajo por vez, lo que
// preserva el orden de los correlativos ante SUNAT.
func (d *Despachador) atenderSerie(serie string, cola chan trabajoEnvio) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case t := <-cola:
			select {
			case d.sem <- struct{}{}:
			case <-d.ctx.Done():
				return
			}
			d.ejecutar(t)
			<-d.sem
		}
	}
}

func (d *Despachador) ejecutar(t trabajoEnvio) {
	if d.ctx.Err() != nil {
		// El despachador se cerró con este trabajo aún en cola.
		return
	}
	if err := t.ctx.Err(); err != nil {
		// Trabajo cancelado mientras esperaba en cola.
		d.log.Warn().Str("envio", t.envio.ID).Msg("envío cancelado antes de transmitir")
		return
	}
	if err := d.cliente.Transmitir(t.ctx, t.envio, t.comp); err != nil {
		d.log.Error().
			Err(err).
			Str("envio", t.envio.ID).
			Str("estado", t.envio.Estado).
			Msg("la transmisión terminó con error")
	}
}

// Cerrar deja de tomar trabajos nuevos y espera a que terminen las
// transmisiones en curso. Los trabajos aún en cola no se ejecutan; sus envíos
// quedan PENDIENTE y pueden reencolarse en el próximo arranque.
func (d *Despachador) Cerrar() {
	d.mu.Lock()
	if d.cerrado {
		d.mu.Unlock()
		return
	}
	d.cerrado = true
	d.mu.Unlock()

	d.cancelar()
	d.wg.Wait()
}
