package watchdog_config

import (
	"time"

	shared "github.com/NordCoder/hostwatch/internal/config/shared"
	pginfra "github.com/NordCoder/hostwatch/internal/repository/postgres"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Target struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	// Source names the host running the watchdog in messages.
	Source string `mapstructure:"source"`
}

type Ping struct {
	Count      int           `mapstructure:"count"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Privileged bool          `mapstructure:"privileged"`
}

type TCP struct {
	Ports   []int         `mapstructure:"ports"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

type State struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

type Alert struct {
	FailuresBeforeAlert int           `mapstructure:"failures_before_alert"`
	Cooldown            time.Duration `mapstructure:"cooldown"`
}

type Kafka struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Metrics struct {
	Textfile string `mapstructure:"textfile"`
}

type Config struct {
	Target  Target         `mapstructure:"target"`
	Ping    Ping           `mapstructure:"ping"`
	TCP     TCP            `mapstructure:"tcp"`
	Retry   Retry          `mapstructure:"retry"`
	State   State          `mapstructure:"state"`
	Alert   Alert          `mapstructure:"alert"`
	Webhook shared.Webhook `mapstructure:"webhook"`
	Kafka   Kafka          `mapstructure:"kafka"`
	DB      pginfra.Config `mapstructure:"db"`
	Metrics Metrics        `mapstructure:"metrics"`
	Log     shared.Log     `mapstructure:"log"`
	OTEL    shared.OTEL    `mapstructure:"otel"`
}

// Warnings lists settings that are empty but needed for a useful run.
// They are reported, not enforced.
func (c *Config) Warnings() []string {
	var w []string
	if c.Target.Address == "" {
		w = append(w, "target.address is empty, every probe will fail")
	}
	if c.Webhook.URL == "" {
		w = append(w, "webhook.url is empty, notifications cannot be delivered")
	}
	return w
}
