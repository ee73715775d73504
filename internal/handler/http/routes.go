package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/user/signup", h.signup)
		r.Post("/api/user/login", h.login)
		r.Post("/api/user/recover", h.recoverAccount)
	})

	// routes behind a live session
	router.Group(func(r chi.Router) {
		r.Use(h.session)
		r.Use(h.withSessionRefresh)

		r.Post("/api/user/logout", h.logout)
		r.Post("/api/user/password", h.changeMasterPassword)

		r.Post("/api/recovery-codes/generate", h.generateRecoveryCodes)
		r.Post("/api/recovery-codes/check", h.checkRecoveryCode)

		r.Route("/api/vault", func(r chi.Router) {
			r.Post("/", h.addVaultEntry)
			r.Get("/", h.listVaultEntries)
			r.Get("/{id}", h.getVaultEntry)
			r.Patch("/{id}", h.updateVaultEntry)
			r.Delete("/{id}", h.deleteVaultEntry)
		})
	})

	return router
}
