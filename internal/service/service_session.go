// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/crypto"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/models"
)

// sessionService is the concrete implementation of SessionService. Tokens
// are opaque random strings; all session state lives in the cache under the
// token, so revocation and expiry are immediate and server-side.
type sessionService struct {
	// sessions is the ephemeral token → payload store.
	sessions store.SessionCache

	// keychain generates the opaque bearer tokens.
	keychain crypto.KeyChainService

	// ttl is the session lifetime, counted from issuance or from the last
	// refresh.
	ttl time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewSessionService constructs a SessionService over the given cache.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewSessionService(sessions store.SessionCache, keychain crypto.KeyChainService, cfg config.App, logger *logger.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		keychain: keychain,
		ttl:      cfg.SessionTTL,
		logger:   logger,
	}
}

// Issue creates a session bound to user and its plaintext DEK, stores it in
// the cache with the configured TTL, and returns the opaque token.
func (s *sessionService) Issue(ctx context.Context, user models.User, dek []byte) (string, error) {
	log := logger.FromContext(ctx)

	token, err := s.keychain.GenerateSessionToken()
	if err != nil {
		log.Err(err).Str("func", "sessionService.Issue").Msg("failed to generate session token")
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	payload, err := json.Marshal(models.Session{
		UserID: user.ID,
		Email:  user.Email,
		DEK:    dek,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session payload: %w", err)
	}

	if err := s.sessions.Set(ctx, token, payload, s.ttl); err != nil {
		log.Err(err).Str("func", "sessionService.Issue").Msg("failed to store session")
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Authenticate resolves a token to its session payload.
//
// Any failure to produce a valid session — missing token, expired token,
// corrupted payload — is normalised to ErrSessionInvalid so that callers do
// not need to inspect cache-level errors.
func (s *sessionService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.Session{}, ErrSessionInvalid
	}

	payload, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return models.Session{}, ErrSessionInvalid
		}

		log.Err(err).Str("func", "sessionService.Authenticate").Msg("failed to read session")
		return models.Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		log.Err(err).Str("func", "sessionService.Authenticate").Msg("corrupted session payload")
		return models.Session{}, ErrSessionInvalid
	}

	return session, nil
}

// Refresh extends the session's TTL to a full new window. A session that
// expired between the request's authentication and its completion is not an
// error — the next request will simply fail to authenticate.
func (s *sessionService) Refresh(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if err := s.sessions.Expire(ctx, token, s.ttl); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}

		log.Err(err).Str("func", "sessionService.Refresh").Msg("failed to refresh session ttl")
		return fmt.Errorf("failed to refresh session ttl: %w", err)
	}

	return nil
}

// Revoke deletes the session. Logout is idempotent: revoking an unknown or
// already-expired token succeeds.
func (s *sessionService) Revoke(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if token == "" {
		return nil
	}

	if err := s.sessions.Del(ctx, token); err != nil {
		log.Err(err).Str("func", "sessionService.Revoke").Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
