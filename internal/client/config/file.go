package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cabinetmap/internal/flagx"
	"github.com/dmitrijs2005/cabinetmap/internal/timex"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the on-disk shape, decoded from JSON or TOML. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" toml:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" toml:"online_check_interval"`
	DatabasePath        string         `json:"database_path" toml:"database_path"`
	InMemory            bool           `json:"in_memory" toml:"in_memory"`
	DeviceID            string         `json:"device_id" toml:"device_id"`
	HistoryCap          int            `json:"history_cap" toml:"history_cap"`
	RetentionWindow     timex.Duration `json:"retention_window" toml:"retention_window"`
	ForegroundInterval  timex.Duration `json:"foreground_interval" toml:"foreground_interval"`
	SweepInterval       timex.Duration `json:"sweep_interval" toml:"sweep_interval"`
	BreakerFailures     uint32         `json:"breaker_failures" toml:"breaker_failures"`
	BreakerOpenTimeout  timex.Duration `json:"breaker_open_timeout" toml:"breaker_open_timeout"`
	VenueCacheMaxAge    timex.Duration `json:"venue_cache_max_age" toml:"venue_cache_max_age"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .toml are decoded as TOML, anything else as JSON.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.InMemory {
		cfg.InMemory = true
	}
	if fc.DeviceID != "" {
		cfg.DeviceID = fc.DeviceID
	}
	if fc.HistoryCap > 0 {
		cfg.HistoryCap = fc.HistoryCap
	}
	if fc.RetentionWindow.Duration > 0 {
		cfg.RetentionWindow = fc.RetentionWindow.Duration
	}
	if fc.ForegroundInterval.Duration > 0 {
		cfg.ForegroundInterval = fc.ForegroundInterval.Duration
	}
	if fc.SweepInterval.Duration > 0 {
		cfg.SweepInterval = fc.SweepInterval.Duration
	}
	if fc.BreakerFailures > 0 {
		cfg.BreakerFailures = fc.BreakerFailures
	}
	if fc.BreakerOpenTimeout.Duration > 0 {
		cfg.BreakerOpenTimeout = fc.BreakerOpenTimeout.Duration
	}
	if fc.VenueCacheMaxAge.Duration > 0 {
		cfg.VenueCacheMaxAge = fc.VenueCacheMaxAge.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
