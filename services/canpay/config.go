package canpay

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CANPAY"

	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	placeholderPrefix = "your_"
)

type endpoints struct {
	apiURL    string
	widgetURL string
}

var defaultEndpoints = map[string]endpoints{
	EnvironmentSandbox: {
		apiURL:    "https://sandbox-api.canpaydebit.com/integrator/authorize",
		widgetURL: "https://sandbox-remotepay.canpaydebit.com/cp-min.js",
	},
	EnvironmentProduction: {
		apiURL:    "https://api.canpaydebit.com/integrator/authorize",
		widgetURL: "https://remotepay.canpaydebit.com/cp-min.js",
	},
}

// Config holds the merchant credentials. It only ever lives on the server.
type Config struct {
	Environment     string        `envconfig:"ENVIRONMENT" default:"sandbox"`
	AppKey          string        `envconfig:"APP_KEY"`
	APISecret       string        `envconfig:"API_SECRET"`
	IntegratorID    string        `envconfig:"INTEGRATOR_ID"`
	InternalVersion string        `envconfig:"INTERNAL_VERSION"`
	APIURL          string        `envconfig:"API_URL"`
	WidgetURL       string        `envconfig:"WIDGET_URL"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// LoadConfig reads CANPAY_* variables, optionally from the given .env files first. Invalid credentials are
// not reported here: the endpoint reports them per request.
func LoadConfig(envFiles ...string) (Config, error) {
	// A missing .env file is normal outside of local development.
	_ = godotenv.Load(envFiles...)

	cfg := Config{}
	err := envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg.withDefaults(), nil
}

func (cfg Config) withDefaults() Config {
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	defaults, found := defaultEndpoints[cfg.Environment]
	if !found {
		return cfg
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.apiURL
	}
	if cfg.WidgetURL == "" {
		cfg.WidgetURL = defaults.widgetURL
	}
	return cfg
}

// Validate fails on absent or placeholder credentials.
func (cfg Config) Validate() error {
	if _, found := defaultEndpoints[cfg.Environment]; !found {
		return &ConfigurationError{Reason: fmt.Sprintf("unknown environment %q", cfg.Environment)}
	}

	required := []struct {
		name  string
		value string
	}{
		{name: "app key", value: cfg.AppKey},
		{name: "api secret", value: cfg.APISecret},
		{name: "integrator id", value: cfg.IntegratorID},
		{name: "internal version", value: cfg.InternalVersion},
		{name: "api url", value: cfg.APIURL},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("%s is missing", r.name)}
		}
		if strings.HasPrefix(r.value, placeholderPrefix) {
			return &ConfigurationError{Reason: fmt.Sprintf("%s is a placeholder", r.name)}
		}
	}
	return nil
}
