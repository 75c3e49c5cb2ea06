package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/a2n2k3p4/omise-payments/config"
	"github.com/a2n2k3p4/omise-payments/metrics"
)

// AppOptions configures NewApp. Webhooks and Gatherer are optional.
type AppOptions struct {
	Server   config.ServerConfig
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Webhooks *WebhookHandler
}

// NewApp builds the fiber app serving payments.
func NewApp(payments *PaymentHandler, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if opts.Server.AccessLog {
		app.Use(logger.New())
	}
	origins := opts.Server.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))
	if opts.Metrics != nil {
		app.Use(Metrics(opts.Metrics))
	}

	app.Get("/health", payments.Health)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/payments/methods", payments.ListMethods)
	app.Get("/payments/methods/:method", payments.GetMethod)

	p := app.Group("/payments/:method")
	p.Post("/", payments.CreatePayment)
	p.Post("/refunds", payments.RefundPayment)
	p.Get("/polling", payments.GetPollingConfig)
	p.Get("/schedule", payments.GetSchedule)
	p.Get("/charges/:id", payments.GetChargeStatus)
	p.Post("/charges/:id/capture", payments.CapturePayment)
	p.Post("/charges/:id/void", payments.VoidPayment)
	p.Post("/charges/:id/expire", payments.ExpirePayment)

	if opts.Webhooks != nil {
		app.Post("/webhooks/omise", opts.Webhooks.HandleWebhook)
	}

	return app
}
