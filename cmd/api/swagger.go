package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"artmarket/docs"
)

// mountSwagger serves the API docs for the public host. SwaggerInfo is package
// state read by every request, so it is only written here, before serving.
func mountSwagger(app *fiber.App, host, scheme string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = []string{scheme}
	app.Get("/swagger/*", swagger.HandlerDefault)
}
