package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	WAAPIKey        string        `env:"WA_API_KEY,required,notEmpty"`
	WAPhoneNumberID string        `env:"WA_PHONE_NUMBER_ID,required,notEmpty"`
	WAGraphBaseURL  string        `env:"WA_GRAPH_BASE_URL" envDefault:"https://graph.facebook.com/v17.0"`
	WAVerifyToken   string        `env:"WA_VERIFY_TOKEN"`
	WAHTTPTimeout   time.Duration `env:"WA_HTTP_TIMEOUT"` // zero leaves the client without a timeout

	Port    string `env:"PORT" envDefault:"8080"`
	DataDir string `env:"DATA_DIR" envDefault:"."`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON"`
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing env: %w", err)
	}

	if cfg.WAVerifyToken == "" {
		token, err := randomHex(16)
		if err != nil {
			return nil, fmt.Errorf("generating verify token: %w", err)
		}
		cfg.WAVerifyToken = token
	}

	return &cfg, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
