package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/freelance/api/http/handlers"
	"github.com/artem13815/freelance/api/http/presenter"
	"github.com/artem13815/freelance/pkg/logger"
	"github.com/artem13815/freelance/pkg/security/jwt"
)

// Handlers groups everything Register wires.
type Handlers struct {
	Health     *handlers.HealthHandler
	Matches    *handlers.MatchHandler
	Embeddings *handlers.EmbeddingHandler
	Invoices   *handlers.InvoiceHandler
}

type AuthConfig struct {
	Secret string
	Issuer string
}

// NewApp creates a Fiber app whose error handler logs unexpected errors.
func NewApp(log *zap.Logger) *fiber.App {
	log = logger.OrNop(log)
	return fiber.New(fiber.Config{
		AppName: "freelance",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return presenter.Error(c, fe.Code, fe.Message)
			}
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return presenter.Error(c, fiber.StatusInternalServerError, "внутренняя ошибка сервера")
		},
	})
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, auth AuthConfig, h Handlers) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	authMW := jwt.NewAuthMiddleware(auth.Secret, auth.Issuer)

	v1.Get("/projects/:id/matches", authMW, h.Matches.List)
	v1.Post("/embeddings/:kind/:id/refresh", authMW, jwt.RequireAdmin(), h.Embeddings.Refresh)

	inv := v1.Group("/invoices", authMW)
	inv.Post("/calculate", h.Invoices.Calculate)
	inv.Post("/validate", h.Invoices.Validate)
	inv.Post("", h.Invoices.Create)
	inv.Get("", h.Invoices.List)
	inv.Get("/:id", h.Invoices.Get)
}
