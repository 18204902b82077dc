// Package config reads the service configuration from the environment.
package config

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/pbkdf2"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	defaultSecret = "deadbeef"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`
	Debug  bool   `default:"false"`

	Store     string `default:"file"`
	StoreFile string `split_words:"true" default:"cache/stations.jsonl"`

	DaysAdvance     int           `split_words:"true" default:"7"`
	RefreshInterval time.Duration `split_words:"true" default:"24h"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	GeocodeURL       string        `envconfig:"GEOCODE_URL" default:"https://nominatim.openstreetmap.org/search"`
	GeocodeUserAgent string        `split_words:"true" default:"scubot"`
	GeocodeMinDelay  time.Duration `split_words:"true" default:"1s"`
	GeocodeFallback  bool          `split_words:"true" default:"true"`

	ViewCapacity int           `split_words:"true" default:"256"`
	ViewTTL      time.Duration `envconfig:"VIEW_TTL" default:"1h"`

	SessionKey    string `split_words:"true"`
	EncryptionKey string `split_words:"true"`
}

// Load reads an optional .env file in the working directory and then the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.Store != StoreFile && c.Store != StorePostgres {
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreFile, StorePostgres, c.Store)
	}
	if c.DaysAdvance < 1 {
		return fmt.Errorf("DAYS_ADVANCE must be at least 1, got %d", c.DaysAdvance)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	// Nominatim allows one request per second.
	if c.GeocodeMinDelay < time.Second {
		return fmt.Errorf("GEOCODE_MIN_DELAY must be at least 1s, got %s", c.GeocodeMinDelay)
	}
	return nil
}

// SessionHashKey authenticates session cookies. It falls back to a fixed key when
// SESSION_KEY is unset.
func (c Config) SessionHashKey() []byte {
	if c.SessionKey != "" {
		return []byte(c.SessionKey)
	}
	return []byte(defaultSecret)
}

// SessionBlockKey encrypts session cookies, derived from ENCRYPTION_KEY.
func (c Config) SessionBlockKey() []byte {
	password := defaultSecret
	if c.EncryptionKey != "" {
		password = c.EncryptionKey
	}
	return pbkdf2.Key([]byte(password), []byte{}, 4096, 32, sha1.New)
}
