package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// recoveryCodeRepository is the PostgreSQL-backed implementation of
// [RecoveryCodeRepository] over the "recovery_codes" table.
type recoveryCodeRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRecoveryCodeRepository constructs a [RecoveryCodeRepository] backed by
// the provided database connection and logger.
func NewRecoveryCodeRepository(db *DB, logger *logger.Logger) RecoveryCodeRepository {
	logger.Debug().Msg("creating recovery code repository")
	return &recoveryCodeRepository{
		db:     db,
		logger: logger,
	}
}

// SaveCodes inserts a batch of recovery-code records inside a single
// transaction: a batch is either fully stored or not stored at all.
func (r *recoveryCodeRepository) SaveCodes(ctx context.Context, codes []models.RecoveryCode) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "recoveryCodeRepository.SaveCodes").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for idx, code := range codes {
		if _, err := tx.ExecContext(ctx, createRecoveryCode, code.ID, code.UserID, code.CodeHash, code.EncryptedDEK); err != nil {
			log.Err(err).
				Str("func", "recoveryCodeRepository.SaveCodes").
				Int("iteration", idx+1).
				Int("total", len(codes)).
				Msg("error: inserting recovery code")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "recoveryCodeRepository.SaveCodes").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}

// FindByUserAndHash retrieves the recovery-code record matching the given
// owner and hex SHA-256 hash.
//
// Error handling:
//   - Empty result set ([sql.ErrNoRows]) → [ErrRecoveryCodeNotFound].
//   - Any other driver-level error → wrapped as a scanning error.
func (r *recoveryCodeRepository) FindByUserAndHash(ctx context.Context, userID uuid.UUID, codeHash string) (models.RecoveryCode, error) {
	log := logger.FromContext(ctx)

	var code models.RecoveryCode
	row := r.db.QueryRowContext(ctx, findRecoveryCodeByUserAndHash, userID, codeHash)

	if err := row.Scan(&code.ID, &code.UserID, &code.CodeHash, &code.EncryptedDEK, &code.Used, &code.CreatedAt, &code.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RecoveryCode{}, ErrRecoveryCodeNotFound
		}

		log.Err(err).Str("func", "recoveryCodeRepository.FindByUserAndHash").Msg("error: scanning recovery code row")
		return models.RecoveryCode{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return code, nil
}

// CountUnused returns the number of not-yet-redeemed codes of a user. The
// recovery service uses it to reject regeneration while an unverified batch
// is still live.
func (r *recoveryCodeRepository) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	row := r.db.QueryRowContext(ctx, countUnusedRecoveryCodes, userID)
	if err := row.Scan(&count); err != nil {
		log.Err(err).Str("func", "recoveryCodeRepository.CountUnused").Msg("error: scanning count")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}
