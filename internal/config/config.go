package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://127.0.0.1:8080"`

	Database Database
	Redis    Redis `envPrefix:"REDIS_"`
	Kafka    Kafka `envPrefix:"KAFKA_"`
	UCP      UCP   `envPrefix:"UCP_"`
	Checkout Checkout
	Shipping Shipping `envPrefix:"SHIPPING_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite or mysql
	URL    string `env:"DATABASE_URL" envDefault:"file:ucp-merchant.db?cache=shared"`
}

type Redis struct {
	Addr       string        `env:"ADDR" envDefault:"localhost:6379"`
	Password   string        `env:"PASSWORD"`
	DB         int           `env:"DB" envDefault:"0"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

type Kafka struct {
	Brokers    []string `env:"BROKERS" envSeparator:","`
	OrderTopic string   `env:"ORDER_TOPIC" envDefault:"ucp-orders"`
}

type UCP struct {
	Version          string `env:"VERSION" envDefault:"2026-01-11"`
	PrivacyPolicyURL string `env:"PRIVACY_POLICY_URL" envDefault:"https://example.com/privacy"`
	TermsURL         string `env:"TERMS_URL" envDefault:"https://example.com/terms"`
}

type Checkout struct {
	// SessionStore selects the session backend: database, memory or redis.
	SessionStore string `env:"SESSION_STORE" envDefault:"database"`
	Currency     string `env:"CHECKOUT_CURRENCY" envDefault:"USD"`
	MaxRetries   int    `env:"CHECKOUT_MAX_RETRIES" envDefault:"3"`
}

type Shipping struct {
	StandardAmount int64 `env:"STANDARD_AMOUNT" envDefault:"500"`
	ExpressAmount  int64 `env:"EXPRESS_AMOUNT" envDefault:"1500"`
	// DefaultOption is the option selected when the buyer made no choice.
	DefaultOption string `env:"DEFAULT_OPTION" envDefault:"ship_std"`
}
