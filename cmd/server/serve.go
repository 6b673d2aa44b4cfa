package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	swagger "github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apihttp "github.com/artem13815/freelance/api/http"
	"github.com/artem13815/freelance/api/http/handlers"
	_ "github.com/artem13815/freelance/docs"
	"github.com/artem13815/freelance/pkg/health"
	"github.com/artem13815/freelance/pkg/health/checkers"
	"github.com/artem13815/freelance/pkg/invoice"
	"github.com/artem13815/freelance/pkg/matching"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Health service: compose checkers
	checks := []health.Checker{checkers.NewPostgresChecker(a.pool)}
	if a.rdb != nil {
		checks = append(checks, checkers.NewRedisChecker(a.rdb))
	}
	readiness := health.NewService(checks...)

	explainer := matching.NewExplainer(a.chat, matching.ExplainerConfig{
		Temperature: a.cfg.Explanation.Temperature,
		MaxTokens:   a.cfg.Explanation.MaxTokens,
	}, a.log)
	matchUC := matching.NewService(a.projects, a.freelancers, a.embedSvc, explainer,
		matching.Config{Concurrency: a.cfg.Match.Concurrency, FuzzySkills: a.cfg.Match.FuzzySkills}, a.log)

	calc := invoice.NewCalculator(a.jurisdict)
	validator := invoice.NewValidator(a.jurisdict)
	invoiceUC := invoice.NewService(a.invoices, calc, validator, a.log)

	app := apihttp.NewApp(a.log)
	app.Get("/swagger/*", swagger.HandlerDefault)
	apihttp.Register(app, apihttp.AuthConfig{Secret: a.cfg.JWT.Secret, Issuer: a.cfg.JWT.Issuer}, apihttp.Handlers{
		Health:     handlers.NewHealthHandler(readiness),
		Matches:    handlers.NewMatchHandler(matchUC, a.cfg.Match.DefaultLimit, a.cfg.Match.DefaultMinScore),
		Embeddings: handlers.NewEmbeddingHandler(a.embedSvc, a.projects, a.freelancers),
		Invoices:   handlers.NewInvoiceHandler(invoiceUC, calc, validator),
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening", zap.String("port", a.cfg.Port))
		errCh <- app.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
