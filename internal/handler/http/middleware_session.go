// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Authentication, logging, and tracing concerns are all
// handled at this layer before requests are forwarded to the service layer.
package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/service"
	"github.com/MKhiriev/go-vault-keeper/internal/utils"
)

// session is an HTTP middleware that enforces cookie-based authentication.
//
// It extracts the opaque bearer token from the session cookie, resolves it
// via [service.SessionService.Authenticate], and — on success — stores the
// session payload in the request context under [utils.SessionCtxKey] before
// delegating to the next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized in the
// following cases:
//   - The session cookie is absent ([ErrNoSessionCookie]) or empty
//     ([ErrEmptySessionToken]).
//   - The token resolves to no live session ([service.ErrSessionInvalid]).
//
// All rejection events are logged using the context-scoped logger obtained
// via [logger.FromRequest].
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, err := sessionTokenFromRequest(r)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		sess, err := h.services.SessionService.Authenticate(ctx, token)
		if err != nil {
			log.Err(err).Msg("session authentication failed")
			http.Error(w, service.ErrSessionInvalid.Error(), statusFromError(err))
			return
		}

		// Store the session in the context so that downstream handlers can
		// retrieve the user's identity and DEK without another cache hit.
		ctx = context.WithValue(ctx, utils.SessionCtxKey, sess)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withSessionRefresh slides the session's expiration window after a
// successfully handled request. Failed requests (status >= 400) do not
// refresh: an attacker probing with a stolen cookie must not keep the
// session alive.
//
// A refresh failure is logged but never turns a completed response into an
// error.
func (h *Handler) withSessionRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		lw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(lw, r)

		if lw.status >= http.StatusBadRequest {
			return
		}

		token, err := sessionTokenFromRequest(r)
		if err != nil {
			return
		}

		if err := h.services.SessionService.Refresh(r.Context(), token); err != nil {
			log.Err(err).Msg("failed to refresh session after request")
		}
	})
}
