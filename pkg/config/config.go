package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP   HTTP
	Logger Logger
	Qiwi   Qiwi
	Watch  Watch
	Sweep  Sweep
	Kafka  Kafka
	Redis  Redis
}

type HTTP struct {
	Port          int    `env:"HTTP_PORT" envDefault:"8080"`
	APIKeyEnabled bool   `env:"HTTP_API_KEY_ENABLED" envDefault:"false"`
	APIKey        string `env:"HTTP_API_KEY" envDefault:"dev"`
}

type Logger struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type Qiwi struct {
	// Secret/public key pair is issued at https://p2p.qiwi.com. The secret
	// key is both the bearer token and the webhook HMAC key.
	BaseURL       string        `env:"QIWI_BASE_URL" envDefault:"https://api.qiwi.com/partner/bill/v1/bills"`
	SecretKey     string        `env:"QIWI_SECRET_KEY"`
	Currency      string        `env:"QIWI_CURRENCY" envDefault:"RUB"`
	CreateTimeout time.Duration `env:"QIWI_CREATE_TIMEOUT" envDefault:"15s"`
	PollTimeout   time.Duration `env:"QIWI_POLL_TIMEOUT" envDefault:"5s"`
	// Empty whitelist accepts callbacks from any address, the HMAC
	// signature is the real authentication.
	CallbackIPWL []string `env:"QIWI_CALLBACK_IP_WL" envDefault:""`
}

type Watch struct {
	MaxWait      time.Duration `env:"WATCH_MAX_WAIT" envDefault:"600s"`
	PollInterval time.Duration `env:"WATCH_POLL_INTERVAL" envDefault:"10s"`
}

type Sweep struct {
	Enabled  bool          `env:"SWEEP_ENABLED" envDefault:"true"`
	Interval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

type Kafka struct {
	Brokers         []string `env:"KAFKA_BROKERS" envDefault:""`
	BillEventsTopic string   `env:"KAFKA_BILL_EVENTS_TOPIC" envDefault:"bill-events"`
}

type Redis struct {
	Addr string        `env:"REDIS_ADDR" envDefault:""`
	TTL  time.Duration `env:"REDIS_BILL_TTL" envDefault:"24h"`
}

func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
