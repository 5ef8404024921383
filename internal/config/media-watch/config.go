package media_watch_config

import (
	"time"

	shared "github.com/NordCoder/hostwatch/internal/config/shared"
)

type Media struct {
	Dirs       []string      `mapstructure:"dirs"`
	Debounce   time.Duration `mapstructure:"debounce"`
	Extensions []string      `mapstructure:"extensions"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	Media   Media          `mapstructure:"media"`
	Webhook shared.Webhook `mapstructure:"webhook"`
	Server  Server         `mapstructure:"server"`
	Log     shared.Log     `mapstructure:"log"`
	OTEL    shared.OTEL    `mapstructure:"otel"`
}
