package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an attempt to create a new user
	// fails because a user with the same email already exists in the database.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrRecoveryCodeNotFound is returned when no recovery-code record matches
	// the given user and code hash.
	ErrRecoveryCodeNotFound = errors.New("recovery code was not found")

	// ErrRecoveryCodeAlreadyUsed is returned when the guarded redemption update
	// (`... WHERE used = FALSE`) affects zero rows: the code was consumed
	// earlier, possibly by a concurrent redemption of the same code.
	ErrRecoveryCodeAlreadyUsed = errors.New("recovery code already used")

	// ErrVaultEntryNotFound is returned when a query or update targets a vault
	// entry (identified by id and user_id) that does not exist in the database.
	ErrVaultEntryNotFound = errors.New("vault entry was not found")

	// ErrSessionNotFound is returned by the session cache when no value is
	// stored under the given token, either because it never existed or because
	// its TTL elapsed.
	ErrSessionNotFound = errors.New("session was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrSessionCacheUnavailable is returned when the ephemeral cache cannot
	// be reached or the stored value cannot be written.
	ErrSessionCacheUnavailable = errors.New("session cache unavailable")
)
