package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storysquad/internal/database"
	"storysquad/internal/models"
)

// AccountRepository handles database operations for guardian accounts.
// It is bound to a DBTX, so it runs against the connection or inside a
// transaction.
type AccountRepository struct {
	q database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(q database.DBTX) *AccountRepository {
	return &AccountRepository{q: q}
}

// Insert stores an account under its locally assigned id. Identity
// uniqueness is the primary key's job; email collisions are not rejected
// here, the most recent write governs.
func (r *AccountRepository) Insert(account *models.Account) error {
	query := "INSERT INTO accounts (id, name, email, password_hash, pin) VALUES (?, ?, ?, ?, ?)"
	_, err := r.q.Exec(query, account.ID, account.Name, account.Email, account.PasswordHash, account.PIN)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	return nil
}

// GetByID retrieves an account by id. No match returns (nil, nil).
func (r *AccountRepository) GetByID(id int64) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, pin, created_at, updated_at
		FROM accounts WHERE id = ?`
	return r.scanOne(r.q.QueryRow(query, id))
}

// GetByEmail retrieves the account matching an email, oldest first if
// several exist. No match returns (nil, nil).
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, pin, created_at, updated_at
		FROM accounts WHERE email = ? ORDER BY created_at ASC, id ASC LIMIT 1`
	return r.scanOne(r.q.QueryRow(query, email))
}

func (r *AccountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.PIN,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// Update applies the non-nil fields of changes to the stored account.
// Fields left nil keep their previous value.
func (r *AccountRepository) Update(id int64, changes models.AccountChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	set := ""
	args := []interface{}{}
	add := func(column string, value interface{}) {
		if set != "" {
			set += ", "
		}
		set += column + " = ?"
		args = append(args, value)
	}

	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.PasswordHash != nil {
		add("password_hash", *changes.PasswordHash)
	}
	if changes.PIN != nil {
		add("pin", *changes.PIN)
	}

	args = append(args, id)
	query := "UPDATE accounts SET " + set + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// AdoptIdentity rewrites a provisional account id to the server-confirmed
// one, carrying the server's email along. Dependent back-references follow
// via the relation's ON UPDATE CASCADE.
func (r *AccountRepository) AdoptIdentity(localID, serverID int64, email string) error {
	query := "UPDATE accounts SET id = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, serverID, email, localID); err != nil {
		return fmt.Errorf("failed to adopt server identity: %w", err)
	}
	return nil
}

// Delete removes an account row. Cascading to dependents is the Store's
// responsibility so both deletes share one transaction.
func (r *AccountRepository) Delete(id int64) error {
	query := "DELETE FROM accounts WHERE id = ?"
	if _, err := r.q.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
