package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/dmitrijs2005/cabinetmap/internal/flagx"
	"github.com/dmitrijs2005/cabinetmap/internal/timex"
	"github.com/pelletier/go-toml/v2"
)

const EnvPrefix = "CABINETMAP_"

// FileConfig is the DTO read from the -c/-config file. Durations accept
// strings such as "15m" or integer nanoseconds. Empty values are skipped.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	PhotoUploadExpiry           timex.Duration `json:"photo_upload_expiry" toml:"photo_upload_expiry"`
	LogLevel                    string         `json:"log_level" toml:"log_level"`
}

// parseFile loads the file named by -c or -config, if any. A .toml
// extension selects TOML, everything else is read as JSON. Read or decode
// errors panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PhotoUploadExpiry.Duration > 0 {
		config.PhotoUploadExpiry = c.PhotoUploadExpiry.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseEnv overlays CABINETMAP_* environment variables.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
