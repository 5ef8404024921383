package report_config

import (
	shared "github.com/NordCoder/hostwatch/internal/config/shared"
)

const DefaultPath = "/etc/hostwatch/monthly-report.yaml"

func Load(path string) (*Config, error) {
	v, err := shared.NewViper(path)
	if err != nil {
		return nil, err
	}

	v.SetDefault("report.server_name", "")
	v.SetDefault("report.ssh_port", "22")
	v.SetDefault("report.public_ip_url", "https://ifconfig.me/ip")
	v.SetDefault("report.services", []string{"plex-updates", "watchdog.timer"})
	v.SetDefault("report.max_drives", 4)
	v.SetDefault("report.cmd_timeout", "30s")
	v.SetDefault("report.schedule", "")

	v.SetDefault("metrics.textfile", "")

	shared.SetCommonDefaults(v, "monthly-report", "ServerReport/1.0")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
