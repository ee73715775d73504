// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/service"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// signup
// ─────────────────────────────────────────────

func TestSignup_Success(t *testing.T) {
	registered := models.User{ID: uuid.New(), Email: "alice@example.com"}
	codes := []string{"code-1", "code-2"}

	var issuedFor uuid.UUID
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			signupFn: func(_ context.Context, email, masterPassword string) (models.User, []byte, []string, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "master-password", masterPassword)
				return registered, []byte("dek"), codes, nil
			},
		},
		SessionService: &mockSessionService{
			issueFn: func(_ context.Context, user models.User, _ []byte) (string, error) {
				issuedFor = user.ID
				return "fresh-token", nil
			},
		},
	})

	body := `{"email":"alice@example.com","master_password":"master-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.signup(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, registered.ID, issuedFor)

	var response models.SignupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, registered.ID, response.ID)
	assert.Equal(t, codes, response.RecoveryCodes)

	cookie := sessionCookie(rec.Result())
	require.NotNil(t, cookie, "expected a session cookie")
	assert.Equal(t, "fresh-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestSignup_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader("{invalid json}"))
	rec := httptest.NewRecorder()

	h.signup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_InvalidData(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			signupFn: func(_ context.Context, _, _ string) (models.User, []byte, []string, error) {
				return models.User{}, nil, nil, service.ErrInvalidDataProvided
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader(`{"email":"","master_password":""}`))
	rec := httptest.NewRecorder()

	h.signup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_EmailTaken(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			signupFn: func(_ context.Context, _, _ string) (models.User, []byte, []string, error) {
				return models.User{}, nil, nil, store.ErrEmailAlreadyExists
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader(`{"email":"alice@example.com","master_password":"x"}`))
	rec := httptest.NewRecorder()

	h.signup(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ─────────────────────────────────────────────
// login
// ─────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	account := models.User{ID: uuid.New(), Email: "alice@example.com"}

	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			loginFn: func(_ context.Context, _, _ string) (models.User, []byte, error) {
				return account, []byte("dek"), nil
			},
		},
		SessionService: &mockSessionService{
			issueFn: func(_ context.Context, _ models.User, _ []byte) (string, error) {
				return "login-token", nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"email":"alice@example.com","master_password":"master-password"}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, "login-token", cookie.Value)
}

func TestLogin_WrongCredentials(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			loginFn: func(_ context.Context, _, _ string) (models.User, []byte, error) {
				return models.User{}, nil, service.ErrWrongMasterPassword
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"email":"alice@example.com","master_password":"wrong"}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			loginFn: func(_ context.Context, _, _ string) (models.User, []byte, error) {
				return models.User{}, nil, store.ErrNoUserWasFound
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"email":"nobody@example.com","master_password":"whatever"}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
}

// ─────────────────────────────────────────────
// logout
// ─────────────────────────────────────────────

func TestLogout_RevokesSessionAndClearsCookie(t *testing.T) {
	var revoked string
	h := newTestHandler(t, &service.Services{
		SessionService: &mockSessionService{
			revokeFn: func(_ context.Context, token string) error {
				revoked = token
				return nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "live-token"})
	rec := httptest.NewRecorder()

	h.logout(rec, withSession(req, testSessionFixture))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live-token", revoked)

	cookie := sessionCookie(rec.Result())
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()), "cookie must be expired")
}

func TestLogout_RevocationFailure(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		SessionService: &mockSessionService{
			revokeFn: func(_ context.Context, _ string) error {
				return errors.New("cache down")
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "live-token"})
	rec := httptest.NewRecorder()

	h.logout(rec, withSession(req, testSessionFixture))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ─────────────────────────────────────────────
// changeMasterPassword
// ─────────────────────────────────────────────

func TestChangeMasterPassword_Success(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			changePasswordFn: func(_ context.Context, session models.Session, oldPassword, newPassword string) error {
				assert.Equal(t, testSessionFixture.UserID, session.UserID)
				assert.Equal(t, "old-password", oldPassword)
				assert.Equal(t, "new-password", newPassword)
				return nil
			},
		},
	})

	body := `{"old_master_password":"old-password","new_master_password":"new-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/password", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.changeMasterPassword(rec, withSession(req, testSessionFixture))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeMasterPassword_WrongOldPassword(t *testing.T) {
	h := newTestHandler(t, &service.Services{
		AuthService: &mockAuthService{
			changePasswordFn: func(_ context.Context, _ models.Session, _, _ string) error {
				return service.ErrWrongMasterPassword
			},
		},
	})

	body := `{"old_master_password":"wrong","new_master_password":"new-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/password", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.changeMasterPassword(rec, withSession(req, testSessionFixture))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangeMasterPassword_NoSessionInContext(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/user/password", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.changeMasterPassword(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
