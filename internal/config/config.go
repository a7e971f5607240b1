package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"tablero/internal/schedule"
)

type Config struct {
	API struct {
		BaseURL         string  `yaml:"base_url"`
		Token           string  `yaml:"token"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
		RateLimit       float64 `yaml:"rate_limit"`
		RateBurst       int     `yaml:"rate_burst"`
		RefreshMinutes  int     `yaml:"refresh_minutes"`
	} `yaml:"api"`

	Server struct {
		Addr   string `yaml:"addr"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`

	Telegram struct {
		BotToken     string  `yaml:"bot_token"`
		ManagerChats []int64 `yaml:"manager_chats"`
	} `yaml:"telegram"`

	Reservations struct {
		MinDuration     int    `yaml:"min_duration"`
		MaxSlotsPerDay  int    `yaml:"max_slots_per_day"`
		DefaultSlotFrom string `yaml:"default_slot_from"`
		DefaultSlotTo   string `yaml:"default_slot_to"`
	} `yaml:"reservations"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			cfg.Audit.Path = "data/tablero_audit.db"
		}
		if err = os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	if c.API.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	if c.API.RefreshMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.API.RefreshMinutes) * time.Minute
}

func (c *Config) MinDuration() int {
	if c.Reservations.MinDuration <= 0 {
		return 1
	}
	return c.Reservations.MinDuration
}

// DefaultSlot returns the slot appended on "add slot" edits.
func (c *Config) DefaultSlot() schedule.TimeSlot {
	slot := schedule.DefaultSlot
	if c.Reservations.DefaultSlotFrom != "" {
		slot.From = c.Reservations.DefaultSlotFrom
	}
	if c.Reservations.DefaultSlotTo != "" {
		slot.To = c.Reservations.DefaultSlotTo
	}
	return slot
}
