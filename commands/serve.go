package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/handlers"
	"github.com/a2n2k3p4/omise-payments/metrics"
	"github.com/a2n2k3p4/omise-payments/payment"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, client, err := c.connect()
			if err != nil {
				return err
			}
			defer func() { _ = env.Logger.Sync() }()

			if addr == "" {
				addr = env.Config.Server.Address
			}
			app := newServer(env, client, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				env.Logger.Info("server starting",
					zap.String("address", addr),
					zap.Bool("sandbox", env.Config.Omise.Sandbox),
				)
				errCh <- app.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}

			env.Logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.address)")
	return cmd
}

// newServer wires the gateway decorators, the payment manager and the HTTP handlers.
func newServer(env *Env, client Client, reg prometheus.Registerer, gatherer prometheus.Gatherer) *fiber.App {
	m := metrics.New("omise", reg)
	gw := gateway.WithBreaker(gateway.Instrument(client, m), env.Config.Breaker, env.Logger)

	manager := payment.NewManagerFromConfig(&env.Config.Payment, payment.Deps{
		Gateway: gw,
		Logger:  env.Logger,
		Metrics: m,
	})

	return handlers.NewApp(handlers.NewPaymentHandler(manager, env.Logger), handlers.AppOptions{
		Server:   env.Config.Server,
		Metrics:  m,
		Gatherer: gatherer,
		Webhooks: handlers.NewWebhookHandler(client, gw, env.Logger),
	})
}
