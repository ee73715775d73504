// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// defaults applied by validate for fields left unset by every source.
const (
	defaultSessionTTL        = "1h"
	defaultRecoveryCodeCount = 8
	defaultHTTPAddress       = "0.0.0.0:8080"
	defaultCacheAddr         = "localhost:6379"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup, filling in defaults
// where a field may safely fall back.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}

	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = defaultCacheAddr
	}

	if cfg.App.SessionTTL <= 0 {
		cfg.App.SessionTTL = mustParseDuration(defaultSessionTTL)
	}

	if cfg.App.RecoveryCodeCount <= 0 {
		cfg.App.RecoveryCodeCount = defaultRecoveryCodeCount
	}

	return nil
}
