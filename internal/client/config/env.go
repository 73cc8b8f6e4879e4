package config

import "github.com/caarlos0/env/v10"

const EnvPrefix = "CABINETMAP_"

// parseEnv overlays cfg with CABINETMAP_* variables. Unset variables keep
// the current value.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
