package store

// Prepared query texts for the users and recovery_codes tables. Vault-entry
// queries are built dynamically with squirrel in repository_vault_entry.go.
const (
	createUser = `INSERT INTO users (id, email, master_password_hash, encrypted_dek)
    VALUES ($1, $2, $3, $4)
    RETURNING id, email, master_password_hash, encrypted_dek, created_at, updated_at;`

	findUserByEmail = `SELECT id, email, master_password_hash, encrypted_dek, created_at, updated_at
    FROM users
    WHERE email = $1;`

	findUserByID = `SELECT id, email, master_password_hash, encrypted_dek, created_at, updated_at
    FROM users
    WHERE id = $1;`

	updateMasterCredentials = `UPDATE users
    SET master_password_hash = $2, encrypted_dek = $3, updated_at = NOW()
    WHERE id = $1;`

	createRecoveryCode = `INSERT INTO recovery_codes (id, user_id, code_hash, encrypted_dek)
    VALUES ($1, $2, $3, $4);`

	findRecoveryCodeByUserAndHash = `SELECT id, user_id, code_hash, encrypted_dek, used, created_at, updated_at
    FROM recovery_codes
    WHERE user_id = $1 AND code_hash = $2;`

	countUnusedRecoveryCodes = `SELECT COUNT(*)
    FROM recovery_codes
    WHERE user_id = $1 AND used = FALSE;`

	// The used = FALSE guard makes redemption single-use under concurrency:
	// a second redeemer sees zero affected rows.
	markRecoveryCodeUsed = `UPDATE recovery_codes
    SET used = TRUE, updated_at = NOW()
    WHERE id = $1 AND used = FALSE;`
)
