package repository

import (
	"sync"

	"storysquad/internal/database"
	"storysquad/internal/models"
)

// Store is the local persistent collection of accounts and dependents.
// Every mutation goes through a single writer lock, so concurrent callers
// never observe a half-applied update; reads run without the lock and see
// only committed state.
type Store struct {
	db *database.DB
	mu sync.Mutex

	accounts   *AccountRepository
	dependents *DependentRepository
	settings   *SettingsRepository
}

// NewStore creates a store over an initialized database
func NewStore(db *database.DB) *Store {
	return &Store{
		db:         db,
		accounts:   NewAccountRepository(db),
		dependents: NewDependentRepository(db),
		settings:   NewSettingsRepository(db),
	}
}

// Settings exposes the settings repository for credential persistence
func (s *Store) Settings() *SettingsRepository {
	return s.settings
}

// InsertAccount persists a new account
func (s *Store) InsertAccount(account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Insert(account)
}

// AccountByID looks up an account by id; no match returns (nil, nil)
func (s *Store) AccountByID(id int64) (*models.Account, error) {
	return s.accounts.GetByID(id)
}

// AccountByEmail looks up an account by its natural key; no match returns (nil, nil)
func (s *Store) AccountByEmail(email string) (*models.Account, error) {
	return s.accounts.GetByEmail(email)
}

// UpdateAccount applies a partial update to an account
func (s *Store) UpdateAccount(id int64, changes models.AccountChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Update(id, changes)
}

// AdoptServerIdentity replaces an account's provisional id with the
// server-confirmed one and merges the server's email
func (s *Store) AdoptServerIdentity(localID, serverID int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.AdoptIdentity(localID, serverID, email)
}

// DeleteAccount removes an account and all of its dependents in one
// transaction. The account owns its dependents; none may survive it.
func (s *Store) DeleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithTx(func(tx *database.Tx) error {
		if err := NewDependentRepository(tx).DeleteByAccountID(id); err != nil {
			return err
		}
		return NewAccountRepository(tx).Delete(id)
	})
}

// InsertDependent persists a new dependent profile
func (s *Store) InsertDependent(dep *models.Dependent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dependents.Insert(dep)
}

// DependentByID looks up a dependent by id; no match returns (nil, nil)
func (s *Store) DependentByID(id int64) (*models.Dependent, error) {
	return s.dependents.GetByID(id)
}

// DependentsByAccount lists an account's dependents, oldest first
func (s *Store) DependentsByAccount(accountID int64) ([]models.Dependent, error) {
	return s.dependents.GetByAccountID(accountID)
}

// UpdateDependent applies a partial update to a dependent
func (s *Store) UpdateDependent(id int64, changes models.DependentChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dependents.Update(id, changes)
}

// DeleteDependent removes a single dependent profile
func (s *Store) DeleteDependent(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dependents.Delete(id)
}
