package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/internal/service"
	"github.com/MKhiriev/go-vault-keeper/internal/utils"
	"github.com/MKhiriev/go-vault-keeper/models"
)

func (h *Handler) generateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	codes, err := h.services.RecoveryService.GenerateCodes(ctx, session)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecoveryCodesStillActive):
			log.Err(err).Msg("unused recovery codes remain")
			http.Error(w, service.ErrRecoveryCodesStillActive.Error(), http.StatusConflict)
			return
		default:
			log.Err(err).Msg("recovery code generation failed")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	utils.WriteJSON(w, models.RecoveryCodesResponse{RecoveryCodes: codes}, http.StatusCreated)
}

func (h *Handler) checkRecoveryCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.CheckRecoveryCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	valid, err := h.services.RecoveryService.CheckCode(ctx, session.UserID, request.RecoveryCode)
	if err != nil {
		log.Err(err).Msg("recovery code check failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.RecoveryCodeValidityResponse{Valid: valid}, http.StatusOK)
}

func (h *Handler) recoverAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request models.RecoverAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	recoveredUser, dek, err := h.services.RecoveryService.Recover(ctx, request.Email, request.RecoveryCode, request.NewMasterPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			http.Error(w, "invalid data provided", http.StatusBadRequest)
			return
		default:
			log.Err(err).Msg("account recovery failed")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	token, err := h.services.SessionService.Issue(ctx, recoveredUser, dek)
	if err != nil {
		log.Err(err).Msg("session issuance failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	w.WriteHeader(http.StatusOK)
}
