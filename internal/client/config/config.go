package config

import "time"

// Config holds runtime settings for the cabinetmap client.
type Config struct {
	ServerEndpointAddr  string        `env:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `env:"DB_PATH"`
	InMemory            bool          `env:"IN_MEMORY"`
	DeviceID            string        `env:"DEVICE_ID"`
	HistoryCap          int           `env:"HISTORY_CAP"`
	RetentionWindow     time.Duration `env:"RETENTION_WINDOW"`
	ForegroundInterval  time.Duration `env:"FOREGROUND_INTERVAL"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL"`
	BreakerFailures     uint32        `env:"BREAKER_FAILURES"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT"`
	VenueCacheMaxAge    time.Duration `env:"VENUE_CACHE_MAX_AGE"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "cabinetmap.db"
	c.HistoryCap = 50
	c.RetentionWindow = 24 * time.Hour
	c.ForegroundInterval = 15 * time.Minute
	c.SweepInterval = time.Hour
	c.BreakerFailures = 5
	c.BreakerOpenTimeout = 30 * time.Second
	c.VenueCacheMaxAge = 30 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, then the config file, then
// the environment, then command-line flags. Later sources take precedence.
// Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
