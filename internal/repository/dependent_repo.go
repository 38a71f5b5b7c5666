package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storysquad/internal/database"
	"storysquad/internal/models"
)

// DependentRepository handles database operations for child profiles
type DependentRepository struct {
	q database.DBTX
}

// NewDependentRepository creates a new dependent repository
func NewDependentRepository(q database.DBTX) *DependentRepository {
	return &DependentRepository{q: q}
}

const dependentColumns = `id, account_id, name, username, pin, grade, cohort,
	dyslexia_preference, avatar, created_at, updated_at`

// Insert stores a dependent under its locally assigned id
func (r *DependentRepository) Insert(dep *models.Dependent) error {
	query := `INSERT INTO dependents
		(id, account_id, name, username, pin, grade, cohort, dyslexia_preference, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.Exec(query,
		dep.ID, dep.AccountID, dep.Name, nullable(dep.Username), dep.PIN,
		dep.Grade, nullable(dep.Cohort), dep.DyslexiaPreference, dep.Avatar)
	if err != nil {
		return fmt.Errorf("failed to insert dependent: %w", err)
	}
	dep.CreatedAt = time.Now()
	dep.UpdatedAt = time.Now()
	return nil
}

// GetByID retrieves a dependent by id. No match returns (nil, nil).
func (r *DependentRepository) GetByID(id int64) (*models.Dependent, error) {
	query := "SELECT " + dependentColumns + " FROM dependents WHERE id = ?"
	row := r.q.QueryRow(query, id)

	dep, err := scanDependent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dependent: %w", err)
	}
	return dep, nil
}

// GetByAccountID retrieves all dependents owned by an account, oldest first.
// No matches yield an empty slice, not an error.
func (r *DependentRepository) GetByAccountID(accountID int64) ([]models.Dependent, error) {
	query := "SELECT " + dependentColumns + ` FROM dependents
		WHERE account_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependents: %w", err)
	}
	defer rows.Close()

	var deps []models.Dependent
	for rows.Next() {
		dep, err := scanDependent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dependent: %w", err)
		}
		deps = append(deps, *dep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return deps, nil
}

// Update applies the non-nil fields of changes to the stored dependent.
// Fields left nil keep their previous value.
func (r *DependentRepository) Update(id int64, changes models.DependentChanges) error {
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
	if changes.Username != nil {
		add("username", nullable(*changes.Username))
	}
	if changes.PIN != nil {
		add("pin", *changes.PIN)
	}
	if changes.Grade != nil {
		add("grade", *changes.Grade)
	}
	if changes.Cohort != nil {
		add("cohort", nullable(*changes.Cohort))
	}
	if changes.DyslexiaPreference != nil {
		add("dyslexia_preference", *changes.DyslexiaPreference)
	}
	if changes.Avatar != nil {
		add("avatar", *changes.Avatar)
	}

	args = append(args, id)
	query := "UPDATE dependents SET " + set + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update dependent: %w", err)
	}
	return nil
}

// Delete removes a dependent profile
func (r *DependentRepository) Delete(id int64) error {
	query := "DELETE FROM dependents WHERE id = ?"
	if _, err := r.q.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete dependent: %w", err)
	}
	return nil
}

// DeleteByAccountID removes every dependent owned by an account
func (r *DependentRepository) DeleteByAccountID(accountID int64) error {
	query := "DELETE FROM dependents WHERE account_id = ?"
	if _, err := r.q.Exec(query, accountID); err != nil {
		return fmt.Errorf("failed to delete dependents: %w", err)
	}
	return nil
}

func scanDependent(scan func(dest ...interface{}) error) (*models.Dependent, error) {
	dep := &models.Dependent{}
	var username, cohort sql.NullString
	err := scan(
		&dep.ID,
		&dep.AccountID,
		&dep.Name,
		&username,
		&dep.PIN,
		&dep.Grade,
		&cohort,
		&dep.DyslexiaPreference,
		&dep.Avatar,
		&dep.CreatedAt,
		&dep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	dep.Username = username.String
	dep.Cohort = cohort.String
	return dep, nil
}

// nullable maps "" to NULL so optional text columns stay NULL when unset
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
