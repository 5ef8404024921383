package media_watch_config

import (
	shared "github.com/NordCoder/hostwatch/internal/config/shared"
)

const DefaultPath = "/etc/hostwatch/media-watch.yaml"

func Load(path string) (*Config, error) {
	v, err := shared.NewViper(path)
	if err != nil {
		return nil, err
	}

	v.SetDefault("media.dirs", []string{})
	v.SetDefault("media.debounce", "30s")
	v.SetDefault("media.extensions", []string{"mkv", "mp4", "avi", "mov", "m4v", "wmv"})

	v.SetDefault("server.metrics_addr", ":8085")

	shared.SetCommonDefaults(v, "media-watch", "PlexUpdates/1.0")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
