// Package commands implements the omise-payments command line.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/config"
	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/logger"
)

// Client is everything the commands need from the gateway.
type Client interface {
	gateway.Gateway
	gateway.Accounts
	gateway.Events
}

// Env holds the collaborators shared by the commands.
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	Connect func() (Client, error)
}

// Loader builds an Env from an optional config file path.
type Loader func(configPath string) (*Env, error)

// LoadEnv reads the configuration and connects to Omise on demand.
func LoadEnv(configPath string) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	connect := func() (Client, error) {
		gw, err := gateway.NewOmise(&cfg.Omise, log)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
	return &Env{Config: cfg, Logger: log, Connect: connect}, nil
}

type cli struct {
	load       Loader
	configPath string
}

func (c *cli) env() (*Env, error) {
	env, err := c.load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return env, nil
}

// connect loads the environment and opens the gateway client.
func (c *cli) connect() (*Env, Client, error) {
	env, err := c.env()
	if err != nil {
		return nil, nil, err
	}
	if !env.Config.Omise.CanInitialize() {
		return nil, nil, errors.New("omise keys are not configured; set OMISE_PUBLIC_KEY and OMISE_SECRET_KEY")
	}
	client, err := env.Connect()
	if err != nil {
		return nil, nil, fmt.Errorf("connect to omise: %w", err)
	}
	return env, client, nil
}

// NewRootCommand builds the command tree. load is called by each command that needs configuration.
func NewRootCommand(load Loader) *cobra.Command {
	c := &cli{load: load}

	root := &cobra.Command{
		Use:           "omise-payments",
		Short:         "Omise payment processing service",
		Long:          `omise-payments charges cards, installments, PromptPay and internet banking through Omise, over HTTP or from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a config file (default: ./config.yaml)")

	root.AddCommand(
		newServeCommand(c),
		newAccountCommand(c),
		newBalanceCommand(c),
		newCapabilitiesCommand(c),
		newRefundCommand(c),
		newPaymentMethodsCommand(c),
		newVerifyCommand(c),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root := NewRootCommand(LoadEnv)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
