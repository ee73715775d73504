package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-vault-keeper/internal/service"
	"github.com/MKhiriev/go-vault-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:      http.StatusBadRequest,
	service.ErrWrongMasterPassword:      http.StatusUnauthorized,
	service.ErrSessionInvalid:           http.StatusUnauthorized,
	service.ErrRecoveryCodesStillActive: http.StatusConflict,
	service.ErrRecoveryCodeUsed:         http.StatusConflict,
	service.ErrVaultEntryAlreadyExists:  http.StatusConflict,
	service.ErrInvalidPageToken:         http.StatusBadRequest,

	store.ErrEmailAlreadyExists:      http.StatusConflict,
	store.ErrNoUserWasFound:          http.StatusNotFound,
	store.ErrRecoveryCodeNotFound:    http.StatusNotFound,
	store.ErrRecoveryCodeAlreadyUsed: http.StatusConflict,
	store.ErrVaultEntryNotFound:      http.StatusNotFound,
	store.ErrSessionNotFound:         http.StatusUnauthorized,

	store.ErrBuildingSQLQuery:        http.StatusInternalServerError,
	store.ErrExecutingQuery:          http.StatusInternalServerError,
	store.ErrBeginningTransaction:    http.StatusInternalServerError,
	store.ErrCommitingTransaction:    http.StatusInternalServerError,
	store.ErrExecutingStatement:      http.StatusInternalServerError,
	store.ErrScanningRow:             http.StatusInternalServerError,
	store.ErrScanningRows:            http.StatusInternalServerError,
	store.ErrSessionCacheUnavailable: http.StatusServiceUnavailable,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
