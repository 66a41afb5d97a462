package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ventasoft/facturacion-cpe/internal/application/billing"
	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/postgres"
	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat"
	"github.com/ventasoft/facturacion-cpe/internal/infrastructure/sunat/firmador"
	httpRouter "github.com/ventasoft/facturacion-cpe/internal/interfaces/http"
	"github.com/ventasoft/facturacion-cpe/pkg/config"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
	"github.com/ventasoft/facturacion-cpe/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("entorno_sunat", cfg.SUNAT.Entorno).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	envioRepo := postgres.NewEnvioRepository(pool)

	emisor := &entity.Empresa{
		RUC:          cfg.Empresa.RUC,
		RazonSocial:  cfg.Empresa.RazonSocial,
		Direccion:    cfg.Empresa.Direccion,
		Departamento: cfg.Empresa.Departamento,
		Provincia:    cfg.Empresa.Provincia,
		Distrito:     cfg.Empresa.Distrito,
		Ubigeo:       cfg.Empresa.Ubigeo,
	}

	// Firmador: certificado real si hay ruta configurada. Sin certificado solo
	// se permite avanzar en development (el XML viaja sin firma y beta lo
	// rechaza, pero el flujo completo es ejercitable en local).
	var firma pkgcpe.Firmador = pkgcpe.FirmadorNoOp{}
	if cfg.SUNAT.CertPath != "" {
		cert, errCert := firmador.CargarCertificado(cfg.SUNAT.CertPath, cfg.SUNAT.CertPassword)
		if errCert != nil {
			log.Fatal().Err(errCert).Str("cert", cfg.SUNAT.CertPath).Msg("cargar certificado de firma")
		}
		firma, err = firmador.New(cert, cfg.Empresa.RUC)
		if err != nil {
			log.Fatal().Err(err).Msg("construir firmador")
		}
	} else if cfg.App.Env != "development" {
		log.Fatal().Msg("SUNAT_CERT_PATH es obligatorio fuera de development")
	}

	soapClient, err := sunat.NewSOAPBillClient(cfg.SUNAT.Entorno, sunat.CredencialesSOL{
		RUC:     cfg.Empresa.RUC,
		Usuario: cfg.SUNAT.SOLUsuario,
		Clave:   cfg.SUNAT.SOLClave,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cliente SOAP SUNAT")
	}

	cliente := billing.NewClienteTransmision(
		billing.ConfigTransmision{
			RUC:         cfg.Empresa.RUC,
			SOLUsuario:  cfg.SUNAT.SOLUsuario,
			SOLClave:    cfg.SUNAT.SOLClave,
			Entorno:     cfg.SUNAT.Entorno,
			CertPath:    cfg.SUNAT.CertPath,
			MaxIntentos: cfg.SUNAT.MaxIntentos,
			EsperaBase:  time.Duration(cfg.SUNAT.EsperaBaseSeg) * time.Second,
			EsperaMax:   time.Duration(cfg.SUNAT.EsperaMaxSeg) * time.Second,
		},
		emisor,
		sunat.NewXMLBuilderService(),
		firma,
		soapClient,
		envioRepo,
		log,
	)
	despachador := billing.NewDespachador(cliente, cfg.SUNAT.MaxConcurrentes, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación CPE API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Cliente:     cliente,
		Despachador: despachador,
		Envios:      envioRepo,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Esperar las transmisiones en curso; lo encolado queda PENDIENTE en DB.
	despachador.Cerrar()

	log.Info().Msg("aplicación detenida")
}
