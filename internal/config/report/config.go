package report_config

import (
	"time"

	shared "github.com/NordCoder/hostwatch/internal/config/shared"
)

type Report struct {
	ServerName  string        `mapstructure:"server_name"`
	SSHPort     string        `mapstructure:"ssh_port"`
	PublicIPURL string        `mapstructure:"public_ip_url"`
	Services    []string      `mapstructure:"services"`
	MaxDrives   int           `mapstructure:"max_drives"`
	CmdTimeout  time.Duration `mapstructure:"cmd_timeout"`
	// Schedule is a cron expression; empty runs a single report and exits.
	Schedule string `mapstructure:"schedule"`
}

type Metrics struct {
	Textfile string `mapstructure:"textfile"`
}

type Config struct {
	Report  Report         `mapstructure:"report"`
	Webhook shared.Webhook `mapstructure:"webhook"`
	Metrics Metrics        `mapstructure:"metrics"`
	Log     shared.Log     `mapstructure:"log"`
	OTEL    shared.OTEL    `mapstructure:"otel"`
}
