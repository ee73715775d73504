package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/MKhiriev/go-vault-keeper/models"
	"github.com/google/uuid"
)

// psql is the shared squirrel builder configured for PostgreSQL
// dollar-numbered placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// vaultEntryColumns is the canonical column list scanned into
// [models.VaultEntry].
var vaultEntryColumns = []string{
	"id",
	"user_id",
	"website_url",
	"app_name",
	"encrypted_username",
	"encrypted_email",
	"encrypted_password",
	"created_at",
	"updated_at",
}

// vaultEntryRepository is the PostgreSQL-backed implementation of
// [VaultEntryRepository]. Queries are built with squirrel because both the
// partial update and the cursor-filtered listing have a dynamic shape.
type vaultEntryRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewVaultEntryRepository constructs a [VaultEntryRepository] backed by the
// provided database connection and logger.
func NewVaultEntryRepository(db *DB, logger *logger.Logger) VaultEntryRepository {
	logger.Debug().Msg("creating vault entry repository")
	return &vaultEntryRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a new vault entry. Absent optional fields are stored as NULL,
// not as encrypted empty strings. Returns the entry with server-assigned
// timestamps via the RETURNING clause.
func (r *vaultEntryRepository) Save(ctx context.Context, entry models.VaultEntry) (models.VaultEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Insert(entry.TableName()).
		Columns("id", "user_id", "website_url", "app_name", "encrypted_username", "encrypted_email", "encrypted_password").
		Values(entry.ID, entry.UserID, entry.WebsiteURL, entry.AppName, entry.EncryptedUsername, entry.EncryptedEmail, entry.EncryptedPassword).
		Suffix("RETURNING " + joinColumns(vaultEntryColumns)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.Save").Msg("failed to build insert query")
		return models.VaultEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	saved, err := scanVaultEntry(row.Scan)
	if err != nil {
		log.Err(err).
			Str("func", "vaultEntryRepository.Save").
			Str("user_id", entry.UserID.String()).
			Msg("failed to insert vault entry")
		return models.VaultEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return saved, nil
}

// FindByID retrieves a single entry scoped to its owner.
func (r *vaultEntryRepository) FindByID(ctx context.Context, userID, entryID uuid.UUID) (models.VaultEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(vaultEntryColumns...).
		From(models.VaultEntry{}.TableName()).
		Where(sq.Eq{"user_id": userID, "id": entryID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.FindByID").Msg("failed to build select query")
		return models.VaultEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	entry, err := scanVaultEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VaultEntry{}, ErrVaultEntryNotFound
		}

		log.Err(err).Str("func", "vaultEntryRepository.FindByID").Msg("failed to scan vault entry row")
		return models.VaultEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

// ExistsForSite reports whether the user already stores a credential for the
// given website URL or application name. A match on either identifier counts;
// nil identifiers are skipped, and with both nil the answer is always false.
func (r *vaultEntryRepository) ExistsForSite(ctx context.Context, userID uuid.UUID, websiteURL, appName *string) (bool, error) {
	log := logger.FromContext(ctx)

	identifiers := sq.Or{}
	if websiteURL != nil {
		identifiers = append(identifiers, sq.Eq{"website_url": *websiteURL})
	}
	if appName != nil {
		identifiers = append(identifiers, sq.Eq{"app_name": *appName})
	}
	if len(identifiers) == 0 {
		return false, nil
	}

	where := sq.And{sq.Eq{"user_id": userID}, identifiers}

	query, args, err := psql.Select("1").
		From(models.VaultEntry{}.TableName()).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.ExistsForSite").Msg("failed to build select query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var one int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		log.Err(err).Str("func", "vaultEntryRepository.ExistsForSite").Msg("failed to execute existence query")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return true, nil
}

// List returns up to limit entries of a user ordered by created_at
// descending. A non-nil updatedAfter narrows the result to entries with
// updated_at strictly greater than the cursor timestamp.
func (r *vaultEntryRepository) List(ctx context.Context, userID uuid.UUID, updatedAfter *time.Time, limit uint64) ([]models.VaultEntry, error) {
	log := logger.FromContext(ctx)

	builder := psql.Select(vaultEntryColumns...).
		From(models.VaultEntry{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(limit)

	if updatedAfter != nil {
		builder = builder.Where(sq.Gt{"updated_at": *updatedAfter})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.List").Msg("failed to build select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "vaultEntryRepository.List").
			Str("user_id", userID.String()).
			Msg("failed to execute list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.VaultEntry, 0, limit)

	for rows.Next() {
		entry, scanErr := scanVaultEntry(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "vaultEntryRepository.List").Msg("failed to scan vault entry row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "vaultEntryRepository.List").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// Update applies the non-nil fields of patch as point mutations and bumps
// updated_at. The SET clause is built dynamically so untouched columns are
// never rewritten.
func (r *vaultEntryRepository) Update(ctx context.Context, userID, entryID uuid.UUID, patch VaultEntryPatch) error {
	log := logger.FromContext(ctx)

	builder := psql.Update(models.VaultEntry{}.TableName()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "id": entryID})

	if patch.WebsiteURL != nil {
		builder = builder.Set("website_url", *patch.WebsiteURL)
	}
	if patch.AppName != nil {
		builder = builder.Set("app_name", *patch.AppName)
	}
	if patch.EncryptedUsername != nil {
		builder = builder.Set("encrypted_username", *patch.EncryptedUsername)
	}
	if patch.EncryptedEmail != nil {
		builder = builder.Set("encrypted_email", *patch.EncryptedEmail)
	}
	if patch.EncryptedPassword != nil {
		builder = builder.Set("encrypted_password", *patch.EncryptedPassword)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.Update").Msg("failed to build update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "vaultEntryRepository.Update").
			Str("entry_id", entryID.String()).
			Msg("failed to execute update")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrVaultEntryNotFound
	}

	return nil
}

// Delete removes one entry scoped to its owner.
func (r *vaultEntryRepository) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Delete(models.VaultEntry{}.TableName()).
		Where(sq.Eq{"user_id": userID, "id": entryID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "vaultEntryRepository.Delete").Msg("failed to build delete query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "vaultEntryRepository.Delete").
			Str("entry_id", entryID.String()).
			Msg("failed to execute delete")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrVaultEntryNotFound
	}

	return nil
}

// scanVaultEntry scans one row in vaultEntryColumns order.
func scanVaultEntry(scan func(dest ...any) error) (models.VaultEntry, error) {
	var entry models.VaultEntry
	err := scan(
		&entry.ID,
		&entry.UserID,
		&entry.WebsiteURL,
		&entry.AppName,
		&entry.EncryptedUsername,
		&entry.EncryptedEmail,
		&entry.EncryptedPassword,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	return entry, err
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
