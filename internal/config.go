package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Setting keys that may override connection values stored in the config.
const (
	SettingPlatformURL           = "grafana.url"
	SettingPlatformAdminUser     = "grafana.admin_user"
	SettingPlatformAdminPassword = "grafana.admin_password"
	SettingDirectoryDSN          = "opoppo.dsn"
)

type Config struct {
	Env           string              `mapstructure:"env" envconfig:"APP_ENV" default:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP"`
	Database      DatabaseConfig      `mapstructure:"database" envconfig:"DB"`
	Directory     DirectoryConfig     `mapstructure:"directory" envconfig:"OPOPPO"`
	Platform      PlatformConfig      `mapstructure:"platform" envconfig:"GRAFANA"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY"`
	Sync          SyncConfig          `mapstructure:"sync" envconfig:"SYNC"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBSERVABILITY"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" default:"8080"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"120s"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" envconfig:"DRIVER" default:"postgres"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
}

type DirectoryConfig struct {
	Mode    string        `mapstructure:"mode" envconfig:"MODE" default:"live"`
	DSN     string        `mapstructure:"dsn" envconfig:"DSN"`
	Timeout time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

type PlatformConfig struct {
	Mode          string        `mapstructure:"mode" envconfig:"MODE" default:"live"`
	URL           string        `mapstructure:"url" envconfig:"URL"`
	AdminUser     string        `mapstructure:"admin_user" envconfig:"ADMIN_USER" default:"admin"`
	AdminPassword string        `mapstructure:"admin_password" envconfig:"ADMIN_PASSWORD"`
	Timeout       time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

type SecurityConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" envconfig:"TOKEN_TTL" default:"24h"`
	BCryptCost  int           `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"12"`
	SettingsKey string        `mapstructure:"settings_key" envconfig:"SETTINGS_KEY"`
}

type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval" envconfig:"INTERVAL" default:"1h"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOGGING"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" default:"info"`
	Format string `mapstructure:"format" envconfig:"FORMAT" default:"text"`
}

// LoadConfigFromEnv fills Config from environment variables such as
// HTTP_PORT, DB_SOURCE, GRAFANA_URL and OPOPPO_DSN.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// ApplySettings overrides connection values with persisted settings.
// Empty values are ignored.
func (c *Config) ApplySettings(values map[string]string) {
	if v := values[SettingPlatformURL]; v != "" {
		c.Platform.URL = v
	}
	if v := values[SettingPlatformAdminUser]; v != "" {
		c.Platform.AdminUser = v
	}
	if v := values[SettingPlatformAdminPassword]; v != "" {
		c.Platform.AdminPassword = v
	}
	if v := values[SettingDirectoryDSN]; v != "" {
		c.Directory.DSN = v
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Directory.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("directory config: %v", err))
	}

	if err := c.Platform.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("platform config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if c.Sync.Interval < 0 {
		errs = append(errs, "sync config: interval cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits AllowedOrigins into a trimmed list.
func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return []string{"*"}
	}
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *DirectoryConfig) Validate() error {
	switch c.Mode {
	case ModeMock:
		return nil
	case ModeLive:
		if c.DSN == "" {
			return errors.New("dsn is required in live mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}

func (c *PlatformConfig) Validate() error {
	switch c.Mode {
	case ModeMock:
		return nil
	case ModeLive:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.URL == "" {
		return errors.New("url is required in live mode")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q", c.URL)
	}
	if c.AdminUser == "" {
		return errors.New("admin_user is required in live mode")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return errors.New("bcrypt_cost must be between 4 and 31")
	}
	return nil
}
