package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr  string `envconfig:"ADDR" default:":8080"`
	DBURL string `envconfig:"DB_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Admin bootstrap account, created synchronously at startup if the
	// email is not present yet. Bootstrap is skipped entirely when no
	// password is configured.
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin User"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@primetrade.ai"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// Request quota per source IP per window.
	RateLimit  int           `envconfig:"RATE_LIMIT" default:"100"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"15m"`

	MaxBodyBytes   int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads an optional .env file and then the environment. A missing
// .env is fine; missing required variables are not.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
