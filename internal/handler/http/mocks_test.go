// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/service"
	"github.com/MKhiriev/go-vault-keeper/internal/utils"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// ─────────────────────────────────────────────
// Mock service.AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	signupFn         func(ctx context.Context, email, masterPassword string) (models.User, []byte, []string, error)
	loginFn          func(ctx context.Context, email, masterPassword string) (models.User, []byte, error)
	changePasswordFn func(ctx context.Context, session models.Session, oldPassword, newPassword string) error
}

func (m *mockAuthService) Signup(ctx context.Context, email, masterPassword string) (models.User, []byte, []string, error) {
	return m.signupFn(ctx, email, masterPassword)
}

func (m *mockAuthService) Login(ctx context.Context, email, masterPassword string) (models.User, []byte, error) {
	return m.loginFn(ctx, email, masterPassword)
}

func (m *mockAuthService) ChangeMasterPassword(ctx context.Context, session models.Session, oldPassword, newPassword string) error {
	return m.changePasswordFn(ctx, session, oldPassword, newPassword)
}

// ─────────────────────────────────────────────
// Mock service.SessionService
// ─────────────────────────────────────────────

type mockSessionService struct {
	issueFn        func(ctx context.Context, user models.User, dek []byte) (string, error)
	authenticateFn func(ctx context.Context, token string) (models.Session, error)
	refreshFn      func(ctx context.Context, token string) error
	revokeFn       func(ctx context.Context, token string) error
}

func (m *mockSessionService) Issue(ctx context.Context, user models.User, dek []byte) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, user, dek)
	}
	return "issued-token", nil
}

func (m *mockSessionService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return models.Session{}, service.ErrSessionInvalid
}

func (m *mockSessionService) Refresh(ctx context.Context, token string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, token)
	}
	return nil
}

func (m *mockSessionService) Revoke(ctx context.Context, token string) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, token)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock service.RecoveryService
// ─────────────────────────────────────────────

type mockRecoveryService struct {
	generateCodesFn func(ctx context.Context, session models.Session) ([]string, error)
	checkCodeFn     func(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	recoverFn       func(ctx context.Context, email, code, newMasterPassword string) (models.User, []byte, error)
}

func (m *mockRecoveryService) GenerateCodes(ctx context.Context, session models.Session) ([]string, error) {
	return m.generateCodesFn(ctx, session)
}

func (m *mockRecoveryService) CheckCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	return m.checkCodeFn(ctx, userID, code)
}

func (m *mockRecoveryService) Recover(ctx context.Context, email, code, newMasterPassword string) (models.User, []byte, error) {
	return m.recoverFn(ctx, email, code, newMasterPassword)
}

// ─────────────────────────────────────────────
// Mock service.VaultService
// ─────────────────────────────────────────────

type mockVaultService struct {
	addFn    func(ctx context.Context, session models.Session, request models.AddVaultEntryRequest) (models.DecryptedVaultEntry, error)
	getFn    func(ctx context.Context, session models.Session, entryID uuid.UUID) (models.DecryptedVaultEntry, error)
	listFn   func(ctx context.Context, session models.Session, pageToken string) (models.VaultEntryPage, error)
	updateFn func(ctx context.Context, session models.Session, entryID uuid.UUID, update models.VaultEntryUpdate) error
	deleteFn func(ctx context.Context, session models.Session, entryID uuid.UUID) error
}

func (m *mockVaultService) AddEntry(ctx context.Context, session models.Session, request models.AddVaultEntryRequest) (models.DecryptedVaultEntry, error) {
	return m.addFn(ctx, session, request)
}

func (m *mockVaultService) GetEntry(ctx context.Context, session models.Session, entryID uuid.UUID) (models.DecryptedVaultEntry, error) {
	return m.getFn(ctx, session, entryID)
}

func (m *mockVaultService) ListEntries(ctx context.Context, session models.Session, pageToken string) (models.VaultEntryPage, error) {
	return m.listFn(ctx, session, pageToken)
}

func (m *mockVaultService) UpdateEntry(ctx context.Context, session models.Session, entryID uuid.UUID, update models.VaultEntryUpdate) error {
	return m.updateFn(ctx, session, entryID, update)
}

func (m *mockVaultService) DeleteEntry(ctx context.Context, session models.Session, entryID uuid.UUID) error {
	return m.deleteFn(ctx, session, entryID)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler over the given service set, filling
// absent services with empty mocks.
func newTestHandler(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()

	if svcs.AuthService == nil {
		svcs.AuthService = &mockAuthService{}
	}
	if svcs.SessionService == nil {
		svcs.SessionService = &mockSessionService{}
	}
	if svcs.RecoveryService == nil {
		svcs.RecoveryService = &mockRecoveryService{}
	}
	if svcs.VaultService == nil {
		svcs.VaultService = &mockVaultService{}
	}

	return NewHandler(svcs, config.App{SessionTTL: time.Hour}, logger.Nop())
}

// withSession injects an authenticated session into the request context the
// way the session middleware would.
func withSession(r *http.Request, session models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), utils.SessionCtxKey, session)
	return r.WithContext(ctx)
}

// sessionCookie returns the session cookie set on a recorded response, or
// nil when none was set.
func sessionCookie(res *http.Response) *http.Cookie {
	for _, cookie := range res.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

// testSessionFixture is a convenience authenticated session used across
// multiple tests.
var testSessionFixture = models.Session{
	UserID: uuid.MustParse("11111111-2222-3333-4444-555555555555"),
	Email:  "alice@example.com",
	DEK:    []byte("0123456789abcdef0123456789abcdef"),
}
