package store

import (
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
)

// Storages aggregates every persistence dependency of the service layer: the
// three PostgreSQL repositories plus the Redis session cache.
type Storages struct {
	UserRepository         UserRepository
	RecoveryCodeRepository RecoveryCodeRepository
	VaultEntryRepository   VaultEntryRepository
	SessionCache           SessionCache
}

// NewStorages wires the repositories over a shared database connection and
// attaches the session cache.
func NewStorages(db *DB, sessions SessionCache, logger *logger.Logger) *Storages {
	logger.Debug().Msg("creating storages")
	return &Storages{
		UserRepository:         NewUserRepository(db, logger),
		RecoveryCodeRepository: NewRecoveryCodeRepository(db, logger),
		VaultEntryRepository:   NewVaultEntryRepository(db, logger),
		SessionCache:           sessions,
	}
}
