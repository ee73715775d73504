package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup, and the two credential rotations
// (password change, recovery redemption) against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUserWithRecoveryCodes persists a new user record and its initial
// recovery-code batch inside a single transaction, so signup is all-or-
// nothing: a failure on any code insert rolls back the user row too.
//
// Returns the fully populated [models.User] with server-assigned timestamps.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) on the email → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped low-level sentinel.
func (r *userRepository) CreateUserWithRecoveryCodes(ctx context.Context, user models.User, codes []models.RecoveryCode) (models.User, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "userRepository.CreateUserWithRecoveryCodes").Msg("failed to begin transaction")
		return models.User{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, createUser, user.ID, user.Email, user.MasterPasswordHash, user.EncryptedDEK)

	if err := row.Scan(&user.ID, &user.Email, &user.MasterPasswordHash, &user.EncryptedDEK, &user.CreatedAt, &user.UpdatedAt); err != nil {
		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			log.Warn().Str("email", user.Email).Msg("email already taken")
			return models.User{}, ErrEmailAlreadyExists
		default:
			log.Err(err).Str("func", "userRepository.CreateUserWithRecoveryCodes").Msg("error: inserting user")
			return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	for idx, code := range codes {
		if _, err := tx.ExecContext(ctx, createRecoveryCode, code.ID, code.UserID, code.CodeHash, code.EncryptedDEK); err != nil {
			log.Err(err).
				Str("func", "userRepository.CreateUserWithRecoveryCodes").
				Int("iteration", idx+1).
				Int("total", len(codes)).
				Msg("error: inserting recovery code")
			return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "userRepository.CreateUserWithRecoveryCodes").Msg("failed to commit transaction")
		return models.User{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return user, nil
}

// FindUserByEmail retrieves a user record whose email matches the given one.
//
// Error handling:
//   - Empty result set ([sql.ErrNoRows]) → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as a scanning error.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, findUserByEmail, email)
}

// FindUserByID retrieves a user record by primary key.
//
// Error handling mirrors [userRepository.FindUserByEmail].
func (r *userRepository) FindUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.findUser(ctx, findUserByID, id)
}

func (r *userRepository) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	row := r.db.QueryRowContext(ctx, query, arg)

	if err := row.Scan(&foundUser.ID, &foundUser.Email, &foundUser.MasterPasswordHash, &foundUser.EncryptedDEK, &foundUser.CreatedAt, &foundUser.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "userRepository.findUser").Msg("error: scanning user row")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return foundUser, nil
}

// UpdateMasterCredentials replaces the password hash and the wrapped DEK of
// one account. The two columns always change together — persisting one
// without the other would leave the DEK unrecoverable by the new password.
// A single-row UPDATE is atomic at the row level, so no transaction is taken.
func (r *userRepository) UpdateMasterCredentials(ctx context.Context, userID uuid.UUID, passwordHash, encryptedDEK string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateMasterCredentials, userID, passwordHash, encryptedDEK)
	if err != nil {
		log.Err(err).Str("func", "userRepository.UpdateMasterCredentials").Msg("error: updating master credentials")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// RecoverMasterCredentials applies a recovery redemption atomically: the
// user's credentials are replaced and the redeemed code is marked used in
// the same transaction. If either step fails — including the zero-row case
// when a concurrent request already consumed the code — the transaction is
// rolled back and no intermediate state is visible to other readers.
func (r *userRepository) RecoverMasterCredentials(ctx context.Context, userID, codeID uuid.UUID, passwordHash, encryptedDEK string) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "userRepository.RecoverMasterCredentials").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateMasterCredentials, userID, passwordHash, encryptedDEK)
	if err != nil {
		log.Err(err).Str("func", "userRepository.RecoverMasterCredentials").Msg("error: updating master credentials")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	result, err = tx.ExecContext(ctx, markRecoveryCodeUsed, codeID)
	if err != nil {
		log.Err(err).Str("func", "userRepository.RecoverMasterCredentials").Msg("error: marking recovery code used")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		log.Warn().
			Str("func", "userRepository.RecoverMasterCredentials").
			Str("code_id", codeID.String()).
			Msg("recovery code consumed concurrently")
		return ErrRecoveryCodeAlreadyUsed
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "userRepository.RecoverMasterCredentials").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}
