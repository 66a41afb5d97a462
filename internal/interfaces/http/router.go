package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ventasoft/facturacion-cpe/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Cliente     *billing.ClienteTransmision
	Despachador *billing.Despachador
	Envios      EnvioReader
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	cpe := api.Group("/cpe")
	envioHandler := NewEnvioHandler(deps.Cliente, deps.Despachador, deps.Envios)
	cpe.Post("/enviar", envioHandler.Enviar)
	cpe.Get("/envios/:id", envioHandler.GetByID)
}
