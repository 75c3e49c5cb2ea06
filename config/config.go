// Package config loads application configuration from config.yaml, .env and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Omise   OmiseConfig   `mapstructure:"omise"`
	Payment PaymentConfig `mapstructure:"payment"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// OmiseConfig holds gateway credentials and API settings.
type OmiseConfig struct {
	APIURL      string        `mapstructure:"api_url"`
	APIVersion  string        `mapstructure:"api_version"`
	Sandbox     bool          `mapstructure:"sandbox"`
	Keys        KeysConfig    `mapstructure:"keys"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// KeysConfig holds live and test key pairs.
type KeysConfig struct {
	Live KeyPair `mapstructure:"live"`
	Test KeyPair `mapstructure:"test"`
}

// KeyPair is a public/secret key pair.
type KeyPair struct {
	Public string `mapstructure:"public"`
	Secret string `mapstructure:"secret"`
}

// PublicKey returns the public key for the active environment.
func (c *OmiseConfig) PublicKey() string {
	if c.Sandbox {
		return c.Keys.Test.Public
	}
	return c.Keys.Live.Public
}

// SecretKey returns the secret key for the active environment.
func (c *OmiseConfig) SecretKey() string {
	if c.Sandbox {
		return c.Keys.Test.Secret
	}
	return c.Keys.Live.Secret
}

// CanInitialize reports whether both keys for the active environment are set.
func (c *OmiseConfig) CanInitialize() bool {
	return c.PublicKey() != "" && c.SecretKey() != ""
}

// PaymentConfig holds the payment layer settings.
type PaymentConfig struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Methods  MethodsConfig  `mapstructure:"methods"`
}

// DefaultsConfig applies to every payment method unless overridden.
type DefaultsConfig struct {
	Currency  string `mapstructure:"currency"`
	Capture   bool   `mapstructure:"capture"`
	ReturnURI string `mapstructure:"return_uri"`
}

// MethodsConfig holds per-method settings.
type MethodsConfig struct {
	CreditCard      CreditCardConfig      `mapstructure:"credit_card"`
	Installment     InstallmentConfig     `mapstructure:"installment"`
	PromptPay       PromptPayConfig       `mapstructure:"promptpay"`
	InternetBanking InternetBankingConfig `mapstructure:"internet_banking"`
}

// CreditCardConfig holds card settings.
type CreditCardConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Capture bool `mapstructure:"capture"`
}

// InstallmentConfig holds installment settings.
type InstallmentConfig struct {
	Enabled      bool  `mapstructure:"enabled"`
	ZeroInterest bool  `mapstructure:"zero_interest"`
	Terms        []int `mapstructure:"terms"`
}

// PromptPayConfig holds PromptPay settings. Amounts are in THB.
type PromptPayConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	MinAmount         float64 `mapstructure:"min_amount"`
	MaxAmount         float64 `mapstructure:"max_amount"`
	ExpirationMinutes int     `mapstructure:"expiration_minutes"`
}

// InternetBankingConfig holds internet banking settings.
type InternetBankingConfig struct {
	Enabled           bool                  `mapstructure:"enabled"`
	ExpirationMinutes int                   `mapstructure:"expiration_minutes"`
	Banks             map[string]BankConfig `mapstructure:"banks"`
}

// BankConfig holds a single bank's settings. Amounts are in THB.
type BankConfig struct {
	Name    string  `mapstructure:"name"`
	Enabled bool    `mapstructure:"enabled"`
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	AllowOrigins string `mapstructure:"allow_origins"`
	AccessLog    bool   `mapstructure:"access_log"`
}

// BreakerConfig holds circuit breaker settings for gateway calls.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// Load reads configuration. path may point to a config file; when empty,
// config.yaml is looked up in the working directory and ./configs.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// omise.sandbox is read from OMISE_SANDBOX, log.level from LOG_LEVEL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Keys use the names the Omise dashboard and SDKs document.
	if key := os.Getenv("OMISE_PUBLIC_KEY"); key != "" {
		cfg.Omise.Keys.Test.Public = key
		cfg.Omise.Keys.Live.Public = key
	}
	if key := os.Getenv("OMISE_SECRET_KEY"); key != "" {
		cfg.Omise.Keys.Test.Secret = key
		cfg.Omise.Keys.Live.Secret = key
	}
	if key := os.Getenv("OMISE_TEST_PUBLIC_KEY"); key != "" {
		cfg.Omise.Keys.Test.Public = key
	}
	if key := os.Getenv("OMISE_TEST_SECRET_KEY"); key != "" {
		cfg.Omise.Keys.Test.Secret = key
	}
	if key := os.Getenv("OMISE_LIVE_PUBLIC_KEY"); key != "" {
		cfg.Omise.Keys.Live.Public = key
	}
	if key := os.Getenv("OMISE_LIVE_SECRET_KEY"); key != "" {
		cfg.Omise.Keys.Live.Secret = key
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshalling defaults into a fixed struct cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("omise.api_url", "https://api.omise.co")
	v.SetDefault("omise.api_version", "2019-05-29")
	v.SetDefault("omise.sandbox", true)
	v.SetDefault("omise.http_timeout", 30*time.Second)

	v.SetDefault("payment.defaults.currency", "THB")
	v.SetDefault("payment.defaults.capture", true)
	v.SetDefault("payment.defaults.return_uri", "")

	v.SetDefault("payment.methods.credit_card.enabled", true)
	v.SetDefault("payment.methods.credit_card.capture", true)

	v.SetDefault("payment.methods.installment.enabled", true)
	v.SetDefault("payment.methods.installment.zero_interest", false)
	v.SetDefault("payment.methods.installment.terms", []int{3, 4, 6, 9, 10, 12, 18, 24, 36})

	v.SetDefault("payment.methods.promptpay.enabled", true)
	v.SetDefault("payment.methods.promptpay.min_amount", 20)
	v.SetDefault("payment.methods.promptpay.max_amount", 1000000)
	v.SetDefault("payment.methods.promptpay.expiration_minutes", 15)

	v.SetDefault("payment.methods.internet_banking.enabled", true)
	v.SetDefault("payment.methods.internet_banking.expiration_minutes", 30)
	v.SetDefault("payment.methods.internet_banking.banks", map[string]any{
		"scb":   map[string]any{"name": "Siam Commercial Bank", "enabled": true, "min": 10, "max": 2000000},
		"bbl":   map[string]any{"name": "Bangkok Bank", "enabled": true, "min": 10, "max": 2000000},
		"ktb":   map[string]any{"name": "Krung Thai Bank", "enabled": true, "min": 10, "max": 1000000},
		"kbank": map[string]any{"name": "Kasikorn Bank", "enabled": true, "min": 10, "max": 2000000},
		"bay":   map[string]any{"name": "Bank of Ayudhya (Krungsri)", "enabled": true, "min": 10, "max": 2000000},
		"gsb":   map[string]any{"name": "Government Savings Bank", "enabled": true, "min": 10, "max": 500000},
		"ttb":   map[string]any{"name": "TMBThanachart Bank", "enabled": true, "min": 10, "max": 2000000},
		"uob":   map[string]any{"name": "United Overseas Bank", "enabled": true, "min": 10, "max": 2000000},
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("server.access_log", true)

	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.timeout", 30*time.Second)
}
