// Package config loads runtime configuration for the cabinetmap client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .toml are read as TOML, others as JSON. Durations are strings like
//     "15m" or integer nanoseconds (see timex.Duration).
//  3. Environment variables prefixed with CABINETMAP_, e.g.
//     CABINETMAP_SERVER_ADDR or CABINETMAP_HISTORY_CAP.
//  4. Command-line flags (see parseFlags).
//
// Example TOML file:
//
//	server_endpoint_addr = "venues.example.com:50051"
//	history_cap          = 50
//	retention_window     = "24h"
//	foreground_interval  = "15m"
package config
