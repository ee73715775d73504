package http

import (
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/service"
)

type Handler struct {
	services *service.Services

	// sessionTTL drives the Expires attribute of the session cookie so the
	// cookie and the cached session age out together.
	sessionTTL time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:   services,
		sessionTTL: cfg.SessionTTL,
		logger:     logger,
	}
}
