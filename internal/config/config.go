package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Mongo      Mongo      `yaml:"mongo"`
	Auth       Auth       `yaml:"auth"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	NATS       NATS       `yaml:"nats"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout      time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	AllowOrigins []string      `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-default:"http://localhost:3000"`
}

type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"learnify"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// Auth describes how session tokens minted by the identity provider are verified.
type Auth struct {
	Issuer           string   `yaml:"issuer" env:"AUTH_ISSUER"`
	Algorithm        string   `yaml:"algorithm" env:"AUTH_ALGORITHM" env-default:"HS256"`
	SecretKey        string   `yaml:"secret_key" env:"AUTH_SECRET_KEY"`
	PublicKeyPath    string   `yaml:"public_key_path" env:"AUTH_PUBLIC_KEY_PATH"`
	SessionCookie    string   `yaml:"session_cookie" env:"AUTH_SESSION_COOKIE" env-default:"__session"`
	WebhookSecret    string   `yaml:"webhook_secret" env:"AUTH_WEBHOOK_SECRET"`
	AdminExternalIDs []string `yaml:"admin_external_ids" env:"AUTH_ADMIN_EXTERNAL_IDS"`
}

type ES struct {
	Hosts    []string `yaml:"hosts" env:"ES_HOSTS"`
	Index    string   `yaml:"index" env:"ES_INDEX" env-default:"courses"`
	Password string   `yaml:"password" env:"ES_PASSWORD"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"learnify-media"`
	Upload    Upload `yaml:"upload"`

	// PublicBaseURL replaces presigned reads when set.
	PublicBaseURL string `yaml:"public_base_url" env:"MINIO_PUBLIC_BASE_URL"`
}

// Upload is the presign policy. Upload URLs live for BaseTTL plus the time
// needed to push Size bytes at BytesPerSecond, capped by MaxTTL.
type Upload struct {
	BaseTTL        time.Duration `yaml:"base_ttl" env:"UPLOAD_BASE_TTL" env-default:"5m"`
	BytesPerSecond int64         `yaml:"bytes_per_second" env:"UPLOAD_BYTES_PER_SECOND" env-default:"262144"`
	MaxTTL         time.Duration `yaml:"max_ttl" env:"UPLOAD_MAX_TTL" env-default:"12h"`
	DownloadTTL    time.Duration `yaml:"download_ttl" env:"UPLOAD_DOWNLOAD_TTL" env-default:"1h"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	FeedTTL  time.Duration `yaml:"feed_ttl" env:"REDIS_FEED_TTL" env-default:"30s"`
}

type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX" env-default:"learnify"`
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load reads the YAML file at configPath, or only the environment when
// configPath is empty.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("can not read config from env: %w", err)
		}
		return &cfg, cfg.validate()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not exist: %s", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Auth.Algorithm {
	case "HS256":
		if c.Auth.SecretKey == "" {
			return fmt.Errorf("auth.secret_key is required for HS256")
		}
	case "RS256":
		if c.Auth.PublicKeyPath == "" {
			return fmt.Errorf("auth.public_key_path is required for RS256")
		}
	default:
		return fmt.Errorf("unsupported auth.algorithm %q", c.Auth.Algorithm)
	}
	if c.Minio.Upload.BytesPerSecond <= 0 {
		return fmt.Errorf("minio.upload.bytes_per_second must be positive")
	}
	return nil
}
