package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store and storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverLocal    = "local"
	DriverS3       = "s3"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`
	// Comma separated; "*" allows every origin
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	PageSize           int           `env:"PAGE_SIZE" envDefault:"20"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	Database    struct {
		URL         string `env:"URL"`
		MaxConns    int32  `env:"MAX_CONNS" envDefault:"25"`
		MinConns    int32  `env:"MIN_CONNS" envDefault:"5"`
		AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DATABASE_"`

	Storage struct {
		Driver        string `env:"DRIVER" envDefault:"local"`
		LocalRoot     string `env:"LOCAL_ROOT" envDefault:"./media"`
		PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/media"`
	} `envPrefix:"STORAGE_"`

	S3 struct {
		Provider          string `env:"PROVIDER" envDefault:"aws"`
		Bucket            string `env:"BUCKET"`
		Region            string `env:"REGION" envDefault:"us-east-1"`
		AccessKeyID       string `env:"ACCESS_KEY_ID"`
		SecretAccessKey   string `env:"SECRET_ACCESS_KEY"`
		Endpoint          string `env:"ENDPOINT"`
		PresignTTLSeconds int    `env:"PRESIGN_TTL_SECONDS" envDefault:"300"`
	} `envPrefix:"S3_"`

	Upload struct {
		MaxSizeMB  int64 `env:"MAX_SIZE_MB" envDefault:"5"`
		TTLMinutes int   `env:"TTL_MINUTES" envDefault:"60"`
	} `envPrefix:"UPLOAD_"`

	Redis struct {
		URL      string `env:"URL"`
		Password string `env:"PASSWORD"`
	} `envPrefix:"REDIS_"`

	RateLimit struct {
		WindowSeconds   int `env:"WINDOW_SECONDS" envDefault:"60"`
		UploadThreshold int `env:"UPLOAD_THRESHOLD" envDefault:"10"`
		GlobalThreshold int `env:"GLOBAL_THRESHOLD" envDefault:"100"`
	} `envPrefix:"RATE_LIMIT_"`

	RabbitMQ struct {
		DSN            string        `env:"DSN"`
		Queue          string        `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`
	} `envPrefix:"RABBITMQ_"`

	SMTP struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"587"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		UseSSL   bool   `env:"USE_SSL" envDefault:"false"`
	} `envPrefix:"SMTP_"`
	MailFrom string `env:"MAIL_FROM" envDefault:"noreply@example.com"`
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse reads configuration using opts, e.g. a fixed Environment in tests
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)

	switch c.StoreDriver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Storage.Driver {
	case DriverLocal:
	case DriverS3:
		if c.S3.Bucket == "" {
			return errors.New("config: S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.PageSize <= 0 {
		return errors.New("config: PAGE_SIZE must be positive")
	}
	if c.Upload.MaxSizeMB <= 0 || c.Upload.TTLMinutes <= 0 {
		return errors.New("config: upload limits must be positive")
	}
	return nil
}

func (c *Config) UploadMaxBytes() int64 {
	return c.Upload.MaxSizeMB << 20
}

func (c *Config) UploadTTL() time.Duration {
	return time.Duration(c.Upload.TTLMinutes) * time.Minute
}

func (c *Config) PresignTTL() time.Duration {
	return time.Duration(c.S3.PresignTTLSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
