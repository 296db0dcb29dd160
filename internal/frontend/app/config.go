package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/httpx"
	"github.com/aussiebroadwan/spoutbreeze/pkg/slogx"
)

// ConfigFileEnv names the environment variable pointing at a TOML config file.
const ConfigFileEnv = "SPOUTBREEZE_CONFIG"

// Config is the runtime configuration. Values come from, in increasing
// precedence: defaults, the TOML file, the environment (including .env).
type Config struct {
	APIURL        string `toml:"api_url" validate:"required,url"`      // Backend base URL
	KeycloakURL   string `toml:"keycloak_url" validate:"required,url"` // Identity provider base URL
	KeycloakRealm string `toml:"keycloak_realm" validate:"required"`
	ClientID      string `toml:"client_id" validate:"required"`
	RedirectURI   string `toml:"redirect_uri" validate:"required,url"` // Must match the IdP client registration
	Scopes        string `toml:"scopes"`                               // Space separated; openid is always added
	PublicBaseURL string `toml:"public_base_url" validate:"required,url"`
	AuthMode      string `toml:"auth_mode" validate:"oneof=cookie token"`

	DatabaseFile  string `toml:"database_file" validate:"required"` // SQLite file, ":memory:" for ephemeral state
	MasterKey     string `toml:"master_key"`                        // Optional: secret sealing stored credentials
	MasterKeyPath string `toml:"master_key_path"`                   // Used when MasterKey is empty; generated on first run
	Profile       string `toml:"profile"`                           // Token-variant credential profile

	HTTPTimeout          time.Duration `toml:"http_timeout" validate:"gt=0"`
	VerifierTTL          time.Duration `toml:"verifier_ttl" validate:"gt=0"`
	HousekeepingInterval time.Duration `toml:"housekeeping_interval" validate:"gt=0"`

	Port                int           `toml:"port" validate:"min=1,max=65535"`
	Env                 string        `toml:"env" validate:"oneof=dev staging prod"`
	LogLevel            string        `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat           string        `toml:"log_format" validate:"oneof=json text"`
	LogFile             string        `toml:"log_file"`
	ShutdownGracePeriod time.Duration `toml:"shutdown_grace_period" validate:"gt=0"`

	JoinRateLimit httpx.RateLimitConfig `toml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		APIURL:               "http://localhost:8000",
		KeycloakURL:          "http://localhost:8080",
		KeycloakRealm:        "spoutbreeze",
		ClientID:             "spoutbreezeAPI",
		RedirectURI:          "http://localhost:3000/auth/callback",
		Scopes:               "openid profile email",
		PublicBaseURL:        "http://localhost:3000",
		AuthMode:             string(authflow.ModeCookie),
		DatabaseFile:         "spoutbreeze.db",
		MasterKeyPath:        "spoutbreeze.key",
		Profile:              "default",
		HTTPTimeout:          authflow.DefaultTimeout,
		VerifierTTL:          10 * time.Minute,
		HousekeepingInterval: 5 * time.Minute,
		Port:                 3000,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "text",
		ShutdownGracePeriod:  10 * time.Second,
		JoinRateLimit:        httpx.JoinLimit,
	}
}

// LoadConfig loads .env (when present), then the TOML file at path (or
// $SPOUTBREEZE_CONFIG), then the environment, and validates the result.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnvOrDefault("SPOUTBREEZE_API_URL", c.APIURL)
	c.KeycloakURL = getEnvOrDefault("KEYCLOAK_URL", c.KeycloakURL)
	c.KeycloakRealm = getEnvOrDefault("KEYCLOAK_REALM", c.KeycloakRealm)
	c.ClientID = getEnvOrDefault("KEYCLOAK_CLIENT_ID", c.ClientID)
	c.RedirectURI = getEnvOrDefault("OAUTH_REDIRECT_URI", c.RedirectURI)
	c.Scopes = getEnvOrDefault("OAUTH_SCOPES", c.Scopes)
	c.PublicBaseURL = getEnvOrDefault("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.AuthMode = strings.ToLower(getEnvOrDefault("AUTH_MODE", c.AuthMode))

	c.DatabaseFile = getEnvOrDefault("DATABASE_FILE", c.DatabaseFile)
	c.MasterKey = getEnvOrDefault("MASTER_KEY", c.MasterKey)
	c.MasterKeyPath = getEnvOrDefault("MASTER_KEY_PATH", c.MasterKeyPath)
	c.Profile = getEnvOrDefault("SPOUTBREEZE_PROFILE", c.Profile)

	c.HTTPTimeout = getEnvDurationOrDefault("HTTP_TIMEOUT", c.HTTPTimeout)
	c.VerifierTTL = getEnvDurationOrDefault("VERIFIER_TTL", c.VerifierTTL)
	c.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)

	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = strings.ToLower(getEnvOrDefault("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(getEnvOrDefault("LOG_FORMAT", c.LogFormat))
	c.LogFile = getEnvOrDefault("LOG_FILE", c.LogFile)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)

	c.JoinRateLimit = httpx.ParseRateLimitFromEnv("JOIN", c.JoinRateLimit)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AuthConfig is the authflow view of the configuration.
func (c Config) AuthConfig() authflow.Config {
	return authflow.Config{
		APIURL:      c.APIURL,
		IdentityURL: c.KeycloakURL,
		Realm:       c.KeycloakRealm,
		ClientID:    c.ClientID,
		RedirectURI: c.RedirectURI,
		Scopes:      strings.Fields(c.Scopes),
		Mode:        authflow.Mode(c.AuthMode),
	}
}

// LogConfig is the slogx view of the configuration.
func (c Config) LogConfig(service, version string) slogx.Config {
	return slogx.Config{
		Service: service,
		Version: version,
		Env:     c.Env,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		File:    c.LogFile,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// "10s", "5m", ...
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
