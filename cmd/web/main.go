package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignments/internal/assignmentlist"
	"github.com/noah-isme/gema-assignments/internal/config"
	"github.com/noah-isme/gema-assignments/internal/middleware"
	"github.com/noah-isme/gema-assignments/internal/observability"
	"github.com/noah-isme/gema-assignments/internal/timefmt"
	"github.com/noah-isme/gema-assignments/internal/utils"
	"github.com/noah-isme/gema-assignments/internal/web"
	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "web").Logger()

	formatter, err := timefmt.New(cfg.Web.Timezone)
	if err != nil {
		log.Fatalf("invalid web timezone: %v", err)
	}

	client, err := apiclient.New(cfg.Web.APIBaseURL,
		apiclient.WithTimeout(cfg.Web.RequestTimeout),
		apiclient.WithLogger(logger),
		apiclient.WithCorrelation(middleware.CorrelationIDFromContext),
	)
	if err != nil {
		log.Fatalf("failed to create api client: %v", err)
	}

	registry := web.NewRegistry(client, func(fetcher assignmentlist.Fetcher, unsubmitter assignmentlist.Unsubmitter, notifier assignmentlist.Notifier) *assignmentlist.View {
		return assignmentlist.New(fetcher, unsubmitter, notifier,
			assignmentlist.WithReloadDelay(cfg.Web.ReloadDelay),
			assignmentlist.WithFormatter(formatter),
			assignmentlist.WithLogger(logger),
		)
	}, cfg.Web.SessionTTL, logger)

	pages, err := web.NewHandler(registry, web.NewSessionStore(cfg.Web.SessionTTL), cfg.Web.ReloadDelay, logger)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName + " Web",
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "web host healthy", fiber.Map{"views": registry.Len()})
	})
	app.Get("/metrics", observability.MetricsHandler())
	pages.Register(app)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go registry.Run(sweepCtx)

	go func() {
		if err := app.Listen(cfg.Web.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
	stopSweep()
	registry.Close()
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
