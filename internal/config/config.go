// Package config loads calmcp settings from a YAML file and CALMCP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teemow/calmcp/internal/google"
)

// EnvPrefix prefixes every environment override, e.g. CALMCP_SERVER_YOLO.
const EnvPrefix = "CALMCP"

// Config holds all calmcp configuration.
type Config struct {
	Server   ServerConfig
	Metrics  MetricsConfig
	Google   GoogleConfig
	Calendar CalendarConfig
}

type ServerConfig struct {
	Transport      string
	HTTPAddr       string
	Yolo           bool
	Debug          bool
	RateLimitRPM   int
	TrustProxy     bool
	ClientCacheTTL time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type GoogleConfig struct {
	CredentialsFile string
	TokenDir        string
}

type CalendarConfig struct {
	DefaultTimeZone string
}

// Load reads configuration. An explicit file must exist; otherwise
// calmcp.yaml is searched in ., $HOME/.config/calmcp and /etc/calmcp and
// may be absent.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("calmcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "calmcp"))
		}
		v.AddConfigPath("/etc/calmcp")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Transport:      v.GetString("server.transport"),
			HTTPAddr:       v.GetString("server.http_addr"),
			Yolo:           v.GetBool("server.yolo"),
			Debug:          v.GetBool("server.debug"),
			RateLimitRPM:   v.GetInt("server.rate_limit_rpm"),
			TrustProxy:     v.GetBool("server.trust_proxy"),
			ClientCacheTTL: v.GetDuration("server.client_cache_ttl"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Addr:    v.GetString("metrics.addr"),
		},
		Google: GoogleConfig{
			CredentialsFile: v.GetString("google.credentials_file"),
			TokenDir:        v.GetString("google.token_dir"),
		},
		Calendar: CalendarConfig{
			DefaultTimeZone: v.GetString("calendar.default_time_zone"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.yolo", false)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.rate_limit_rpm", 600)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.client_cache_ttl", "30m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("google.credentials_file", defaultCredentialsFile())
	v.SetDefault("google.token_dir", google.DefaultTokenDir())

	v.SetDefault("calendar.default_time_zone", "UTC")
}

func defaultCredentialsFile() string {
	return filepath.Join(google.DefaultTokenDir(), "credentials.json")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", c.Server.Transport)
	}
	if c.Server.RateLimitRPM < 0 {
		return fmt.Errorf("server.rate_limit_rpm must not be negative, got %d", c.Server.RateLimitRPM)
	}
	if c.Server.ClientCacheTTL <= 0 {
		return fmt.Errorf("server.client_cache_ttl must be positive, got %s", c.Server.ClientCacheTTL)
	}
	if _, err := time.LoadLocation(c.Calendar.DefaultTimeZone); err != nil {
		return fmt.Errorf("invalid calendar.default_time_zone %q: %w", c.Calendar.DefaultTimeZone, err)
	}
	return nil
}
