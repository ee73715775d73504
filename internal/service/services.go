package service

import (
	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/crypto"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/internal/validators"
)

type Services struct {
	AuthService     AuthService
	SessionService  SessionService
	RecoveryService RecoveryService
	VaultService    VaultService
}

func NewServices(storages *store.Storages, keychain crypto.KeyChainService, cfg *config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:     NewAuthService(storages.UserRepository, keychain, cfg.App, logger),
		SessionService:  NewSessionService(storages.SessionCache, keychain, cfg.App, logger),
		RecoveryService: NewRecoveryService(storages.UserRepository, storages.RecoveryCodeRepository, keychain, cfg.App, logger),
		VaultService:    NewVaultService(storages.VaultEntryRepository, keychain, validators.NewVaultEntryValidator(), logger),
	}
}
