package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string        `env:"PORT,          default=3001"`
	Env          string        `env:"ENV,           default=development"`
	LogLevel     string        `env:"LOG_LEVEL,     default=info"`
	FrontendURL  string        `env:"FRONTEND_URL,  default=http://localhost:5173"`
	JWTSecret    string        `env:"JWT_SECRET,    required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,     default=720h"`
	BcryptCost   int           `env:"BCRYPT_COST,   default=10"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Events  EventsConfig
	Storage StorageConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=farm_guardian"`
}

// RedisConfig is optional; an empty Addr disables token revocation.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type EventsConfig struct {
	AMQPURL string `env:"AMQP_URL"`
	Queue   string `env:"EVENTS_QUEUE,  default=farm_guardian.events"`
	Workers int    `env:"EVENT_WORKERS, default=4"`
}

type StorageConfig struct {
	Driver         string `env:"STORAGE_DRIVER,   default=local"`
	UploadDir      string `env:"UPLOAD_DIR,       default=./uploads"`
	BaseURL        string `env:"UPLOAD_BASE_URL,  default=/uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES, default=5242880"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET, default=farm-guardian"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper; tests pass a map lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver != "local" && cfg.Storage.Driver != "minio" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	return &cfg, nil
}
