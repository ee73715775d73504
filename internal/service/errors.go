package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongMasterPassword = errors.New("wrong master password")

	ErrSessionInvalid = errors.New("session is expired or invalid")

	ErrRecoveryCodesStillActive = errors.New("unused recovery codes already exist")
	ErrRecoveryCodeUsed         = errors.New("recovery code already used")

	ErrVaultEntryAlreadyExists = errors.New("vault entry for this site already exists")
	ErrInvalidPageToken        = errors.New("invalid page token")
)
