package shared_config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/NordCoder/hostwatch/internal/obs"
)

const DefaultEnvFile = "/etc/hostwatch/hostwatch.env"

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Env    string `mapstructure:"env"`
}

func (l Log) AsLoggerConfig(app, version string) obs.LogConfig {
	return obs.LogConfig{
		Level:  l.Level,
		Pretty: l.Pretty,
		App:    app,
		Env:    l.Env,
		Ver:    version,
	}
}

type OTEL struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (o OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		Endpoint:    o.Endpoint,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
	}
}

type Webhook struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	StrictStatus bool          `mapstructure:"strict_status"`
}

func SetCommonDefaults(v *viper.Viper, service, userAgent string) {
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "30s")
	v.SetDefault("webhook.user_agent", userAgent)
	v.SetDefault("webhook.strict_status", true)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", service)
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.env", "prod")
}

// NewViper prepares a yaml-backed viper instance. A missing file is not an
// error, every key has a default; a file that exists but does not parse is.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v, nil
}

// LoadEnvFile feeds KEY=VALUE pairs into the process environment so that
// viper's AutomaticEnv sees them. Variables already set win.
func LoadEnvFile() error {
	path := os.Getenv("HOSTWATCH_ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// PathFromEnv returns the config path from key, or def when unset.
func PathFromEnv(key, def string) string {
	if p := os.Getenv(key); p != "" {
		return p
	}
	return def
}
