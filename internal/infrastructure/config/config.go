package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the process configuration, loaded from the environment.
type Config struct {
	HTTP        HTTPServer  `envPrefix:"HTTP_"`
	AWS         AWS         `envPrefix:"AWS_"`
	MercadoPago MercadoPago `envPrefix:"MERCADOPAGO_"`
	Settlement  Settlement  `envPrefix:"SETTLEMENT_"`
}

type HTTPServer struct {
	Port string `env:"PORT" envDefault:"8080"`
}

type AWS struct {
	Region          string `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"ACCESS_KEY_ID" envDefault:"local"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" envDefault:"local"`
	// DynamoDBEndpoint points at a local DynamoDB when set (e.g. http://dynamodb:8000).
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
}

type MercadoPago struct {
	AccessToken    string        `env:"ACCESS_TOKEN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	// OrderTTL is the validity window requested for new payment orders.
	OrderTTL time.Duration `env:"ORDER_TTL" envDefault:"3h"`
}

// Settlement holds the workflow knobs: quote validity window, reconciliation
// poll interval and the shared gateway retry policy.
type Settlement struct {
	QuoteValidity  time.Duration `env:"QUOTE_VALIDITY" envDefault:"168h"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
