// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads runtime tunables (DID resolve timeout, HTTP
// timeout/retries, token lifetime, nonce window size, meta-protocol
// state timeout) from YAML plus environment-variable overrides. Nothing
// here imports did/auth/metaproto/e2ee directly — callers convert these
// plain structs into the component-specific Config types those packages
// already define, keeping the tunables explicit constructor arguments
// rather than hidden globals.
package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration tree.
type Config struct {
	Environment  string              `yaml:"environment" json:"environment"`
	DID          *DIDConfig          `yaml:"did" json:"did"`
	Auth         *AuthConfig         `yaml:"auth" json:"auth"`
	MetaProtocol *MetaProtocolConfig `yaml:"meta_protocol" json:"meta_protocol"`
	E2EE         *E2EEConfig         `yaml:"e2ee" json:"e2ee"`
	Logging      *LoggingConfig      `yaml:"logging" json:"logging"`
	Metrics      *MetricsConfig      `yaml:"metrics" json:"metrics"`
	Health       *HealthConfig       `yaml:"health" json:"health"`
}

// DIDConfig governs did.Resolver's HTTP timeout/retry/cache tunables.
type DIDConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base" json:"backoff_base"`
	PositiveTTL time.Duration `yaml:"positive_ttl" json:"positive_ttl"`
	NegativeTTL time.Duration `yaml:"negative_ttl" json:"negative_ttl"`
}

// AuthConfig governs auth.VerifyHeader's clock-skew tolerance, the nonce
// replay window's size and TTL, and bearer token lifetime.
type AuthConfig struct {
	ClockSkew    time.Duration `yaml:"clock_skew" json:"clock_skew"`
	NonceTTL     time.Duration `yaml:"nonce_ttl" json:"nonce_ttl"`
	NonceMaxSize int           `yaml:"nonce_max_size" json:"nonce_max_size"`
	TokenTTL     time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

// MetaProtocolConfig governs metaproto.Machine's round ceiling and
// per-state timeout.
type MetaProtocolConfig struct {
	MaxNegotiationRounds int           `yaml:"max_negotiation_rounds" json:"max_negotiation_rounds"`
	StateTimeout         time.Duration `yaml:"state_timeout" json:"state_timeout"`
}

// E2EEConfig governs e2ee.RekeyPolicy's age and message-count triggers.
type E2EEConfig struct {
	RekeyAfter         time.Duration `yaml:"rekey_after" json:"rekey_after"`
	RekeyAfterMessages uint64        `yaml:"rekey_after_messages" json:"rekey_after_messages"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig represents the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig represents the internal/health exposition endpoint.
type HealthConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Port    int      `yaml:"port" json:"port"`
	Path    string   `yaml:"path" json:"path"`
	Checks  []string `yaml:"checks" json:"checks"`
}

// LoadFromFile loads configuration from a file, trying YAML then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills the default value for any tunable left unset.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.DID == nil {
		cfg.DID = &DIDConfig{}
	}
	if cfg.DID.Timeout == 0 {
		cfg.DID.Timeout = 10 * time.Second
	}
	if cfg.DID.MaxAttempts == 0 {
		cfg.DID.MaxAttempts = 3
	}
	if cfg.DID.BackoffBase == 0 {
		cfg.DID.BackoffBase = time.Second
	}
	if cfg.DID.PositiveTTL == 0 {
		cfg.DID.PositiveTTL = 10 * time.Minute
	}
	if cfg.DID.NegativeTTL == 0 {
		cfg.DID.NegativeTTL = 30 * time.Second
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.ClockSkew == 0 {
		cfg.Auth.ClockSkew = 5 * time.Minute
	}
	if cfg.Auth.NonceTTL == 0 {
		cfg.Auth.NonceTTL = 5 * time.Minute
	}
	if cfg.Auth.NonceMaxSize == 0 {
		cfg.Auth.NonceMaxSize = 10000
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = time.Hour
	}

	if cfg.MetaProtocol == nil {
		cfg.MetaProtocol = &MetaProtocolConfig{}
	}
	if cfg.MetaProtocol.MaxNegotiationRounds == 0 {
		cfg.MetaProtocol.MaxNegotiationRounds = 10
	}
	if cfg.MetaProtocol.StateTimeout == 0 {
		cfg.MetaProtocol.StateTimeout = 30 * time.Second
	}

	if cfg.E2EE == nil {
		cfg.E2EE = &E2EEConfig{}
	}
	if cfg.E2EE.RekeyAfter == 0 {
		cfg.E2EE.RekeyAfter = time.Hour
	}
	if cfg.E2EE.RekeyAfterMessages == 0 {
		cfg.E2EE.RekeyAfterMessages = 1000
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
