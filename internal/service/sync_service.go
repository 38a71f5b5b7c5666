package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"storysquad/internal/credentials"
	"storysquad/internal/models"
	"storysquad/internal/remote"
	"storysquad/internal/repository"
	"storysquad/internal/validation"
)

var (
	// ErrTermsNotAccepted blocks registration before any network call
	ErrTermsNotAccepted = errors.New("terms of service must be accepted")

	// ErrNoRepresentation: a remote dependent update needs a username and
	// neither the override nor the stored profile has one
	ErrNoRepresentation = errors.New("no username available for remote update")

	// ErrNoSession: nothing persisted to restore a session from
	ErrNoSession = errors.New("no persisted session")

	ErrAccountNotFound   = errors.New("account not found")
	ErrDependentNotFound = errors.New("dependent not found")
)

// DependentOverrides are the caller-supplied fields of a remote dependent
// update. A nil field falls back to the dependent's stored value.
type DependentOverrides struct {
	Username           *string
	DyslexiaPreference *bool
	Grade              *int
}

// AccountEdits are the caller-editable account fields for a local update
type AccountEdits struct {
	Name     *string
	Email    *string
	PIN      *int
	Password *string
}

// SyncService reconciles the local store with the remote service. Network
// operations run on their own goroutines and deliver their outcome through
// a buffered result channel exactly once; store mutations are serialized by
// the store's writer. Remote error classifications propagate to the caller
// unchanged: nothing is retried at this layer.
type SyncService struct {
	store  *repository.Store
	client *remote.Client
	creds  *credentials.Cache
	log    logrus.FieldLogger
}

// NewSyncService creates the coordinator over its three collaborators
func NewSyncService(store *repository.Store, client *remote.Client, creds *credentials.Cache, log logrus.FieldLogger) *SyncService {
	return &SyncService{store: store, client: client, creds: creds, log: log}
}

// RegisterAccount registers a new guardian with the service, stores the
// returned bearer token, and synthesizes a provisional local account.
func (s *SyncService) RegisterAccount(ctx context.Context, email, password string, termsAccepted bool, name string) <-chan Result[string] {
	return run(func() (string, error) {
		return s.registerAccount(ctx, email, password, termsAccepted, name)
	})
}

func (s *SyncService) registerAccount(ctx context.Context, email, password string, termsAccepted bool, name string) (string, error) {
	if !termsAccepted {
		return "", ErrTermsNotAccepted
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return "", err
	}

	body := models.RegisterRequest{Email: email, Password: password, TermsOfService: termsAccepted}
	var bearer models.BearerToken
	if err := s.client.Do(ctx, http.MethodPost, []string{"auth", "register"}, body, "", &bearer); err != nil {
		return "", err
	}

	if err := s.creds.SetSession(models.RoleGuardian, bearer.Token, email, password); err != nil {
		return "", err
	}

	account, err := s.synthesizeAccount(name, email, password)
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{"email": email, "account_id": account.ID}).
		Info("registered guardian account")
	return bearer.Token, nil
}

// LoginAccount authenticates a guardian. The token is stored first, the
// local account is resolved second, and only then is the outcome
// delivered: the caller's next step depends on a resolved account.
func (s *SyncService) LoginAccount(ctx context.Context, email, password string) <-chan Result[string] {
	return run(func() (string, error) {
		return s.loginAccount(ctx, email, password)
	})
}

func (s *SyncService) loginAccount(ctx context.Context, email, password string) (string, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}

	body := models.LoginRequest{Email: email, Password: password}
	var bearer models.BearerToken
	if err := s.client.Do(ctx, http.MethodPost, []string{"auth", "login"}, body, "", &bearer); err != nil {
		return "", err
	}

	if err := s.creds.SetSession(models.RoleGuardian, bearer.Token, email, password); err != nil {
		return "", err
	}

	if _, err := s.fetchOrCreateAccount(email, password); err != nil {
		return "", err
	}

	s.log.WithField("email", email).Info("guardian logged in")
	return bearer.Token, nil
}

// FetchOrCreateAccount resolves the local account for an email: an existing
// one is adopted, otherwise a provisional one is created. Safe to call
// repeatedly; one email never yields two accounts.
func (s *SyncService) FetchOrCreateAccount(email, password string) <-chan Result[*models.Account] {
	return run(func() (*models.Account, error) {
		return s.fetchOrCreateAccount(email, password)
	})
}

func (s *SyncService) fetchOrCreateAccount(email, password string) (*models.Account, error) {
	account, err := s.store.AccountByEmail(email)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	return s.synthesizeAccount("", email, password)
}

// synthesizeAccount creates and persists a provisional local account
func (s *SyncService) synthesizeAccount(name, email, password string) (*models.Account, error) {
	id, err := credentials.ProvisionalID()
	if err != nil {
		return nil, err
	}
	pin, err := credentials.ProvisionalPIN()
	if err != nil {
		return nil, err
	}
	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PIN:          pin,
	}
	if err := s.store.InsertAccount(account); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"email": email, "account_id": id}).
		Debug("created provisional account")
	return account, nil
}

// RefreshAccountFromServer fetches the server's view of the authenticated
// guardian and merges the fields it carries, id and email, into the local
// account. Fields the representation omits keep their local values.
func (s *SyncService) RefreshAccountFromServer(ctx context.Context, account *models.Account) <-chan Result[*models.Account] {
	return run(func() (*models.Account, error) {
		return s.refreshAccountFromServer(ctx, account)
	})
}

func (s *SyncService) refreshAccountFromServer(ctx context.Context, account *models.Account) (*models.Account, error) {
	token, err := s.creds.CurrentToken(models.RoleGuardian)
	if err != nil {
		return nil, err
	}

	var rep models.AccountRepresentation
	if err := s.client.Do(ctx, http.MethodGet, []string{"parents", "me"}, nil, token, &rep); err != nil {
		return nil, err
	}

	if err := s.store.AdoptServerIdentity(account.ID, rep.ID, rep.Email); err != nil {
		return nil, err
	}

	refreshed, err := s.store.AccountByID(rep.ID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, ErrAccountNotFound
	}

	s.log.WithFields(logrus.Fields{"local_id": account.ID, "server_id": rep.ID}).
		Info("merged server account representation")
	return refreshed, nil
}

// UpdateDependent pushes a dependent profile to the service. Each override
// falls back to the stored value when not supplied; a username must be
// resolvable from one of the two. The server's returned representation is
// merged back into the local profile, identity excluded.
func (s *SyncService) UpdateDependent(ctx context.Context, dep *models.Dependent, overrides DependentOverrides) <-chan Result[*models.Dependent] {
	return run(func() (*models.Dependent, error) {
		return s.updateDependent(ctx, dep, overrides)
	})
}

func (s *SyncService) updateDependent(ctx context.Context, dep *models.Dependent, overrides DependentOverrides) (*models.Dependent, error) {
	username := dep.Username
	if overrides.Username != nil {
		username = *overrides.Username
	}
	if username == "" {
		return nil, ErrNoRepresentation
	}

	dyslexia := dep.DyslexiaPreference
	if overrides.DyslexiaPreference != nil {
		dyslexia = *overrides.DyslexiaPreference
	}
	grade := dep.Grade
	if overrides.Grade != nil {
		grade = *overrides.Grade
	}

	token, err := s.creds.CurrentToken(models.RoleGuardian)
	if err != nil {
		return nil, err
	}

	body := models.DependentUpdateRequest{
		Username:    username,
		Preferences: models.UpdatePreferences{Dyslexia: dyslexia},
		Grade:       grade,
	}

	path := []string{"children", "list", strconv.FormatInt(dep.ID, 10)}
	var rep models.DependentRepresentation
	if err := s.client.Do(ctx, http.MethodPut, path, body, token, &rep); err != nil {
		return nil, err
	}

	changes := models.DependentChanges{
		Username:           &rep.Username,
		Grade:              &rep.Grade,
		Avatar:             &rep.Avatar,
		DyslexiaPreference: &rep.DyslexiaPreference,
	}
	if err := s.store.UpdateDependent(dep.ID, changes); err != nil {
		return nil, err
	}

	updated, err := s.store.DependentByID(dep.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrDependentNotFound
	}

	s.log.WithField("dependent_id", dep.ID).Info("merged server dependent representation")
	return updated, nil
}

// CreateDependent provisions a child profile locally: a provisional id, a
// random avatar from the palette, and an attachment to the owning account.
// No remote call is made; reconciliation happens later via UpdateDependent.
func (s *SyncService) CreateDependent(account *models.Account, name string, pin, grade int, cohort string, dyslexia bool) (*models.Dependent, error) {
	id, err := credentials.ProvisionalID()
	if err != nil {
		return nil, err
	}
	avatar, err := credentials.RandomAvatar()
	if err != nil {
		return nil, err
	}

	dep := &models.Dependent{
		ID:                 id,
		AccountID:          account.ID,
		Name:               name,
		PIN:                pin,
		Grade:              grade,
		Cohort:             cohort,
		DyslexiaPreference: dyslexia,
		Avatar:             avatar,
	}
	if err := s.store.InsertDependent(dep); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"account_id": account.ID, "dependent_id": id}).
		Info("created dependent profile")
	return dep, nil
}

// UpdateAccount applies local edits to an account; unset fields keep their
// stored values. Passwords are hashed before they touch the store.
func (s *SyncService) UpdateAccount(id int64, edits AccountEdits) error {
	changes := models.AccountChanges{
		Name:  edits.Name,
		Email: edits.Email,
		PIN:   edits.PIN,
	}
	if edits.Password != nil {
		hash, err := credentials.HashPassword(*edits.Password)
		if err != nil {
			return err
		}
		changes.PasswordHash = &hash
	}
	return s.store.UpdateAccount(id, changes)
}

// DeleteAccount removes an account and, with it, every dependent it owns
func (s *SyncService) DeleteAccount(id int64) error {
	return s.store.DeleteAccount(id)
}

// DeleteDependent removes a single dependent profile
func (s *SyncService) DeleteDependent(id int64) error {
	return s.store.DeleteDependent(id)
}

// Dependents lists an account's dependents, oldest first
func (s *SyncService) Dependents(account *models.Account) ([]models.Dependent, error) {
	return s.store.DependentsByAccount(account.ID)
}

// VerifyAccountPassword gates the switch back from a child profile to the
// guardian view
func (s *SyncService) VerifyAccountPassword(account *models.Account, password string) bool {
	return credentials.CheckPassword(password, account.PasswordHash)
}

// VerifyAccountPIN checks the guardian's short authentication code
func (s *SyncService) VerifyAccountPIN(account *models.Account, pin int) bool {
	return account.PIN == pin
}

// LogOut drops both in-memory bearer tokens. Persisted credentials are
// kept so the next launch can restore the session silently.
func (s *SyncService) LogOut() {
	s.creds.ClearSession(models.RoleGuardian)
	s.creds.ClearSession(models.RoleDependent)
	s.log.Info("logged out")
}

// RestoreSession attempts a silent session restoration at launch: adopt
// the persisted token while it is still usable, otherwise re-login with
// the persisted credentials.
func (s *SyncService) RestoreSession(ctx context.Context) <-chan Result[*models.Account] {
	return run(func() (*models.Account, error) {
		return s.restoreSession(ctx)
	})
}

func (s *SyncService) restoreSession(ctx context.Context) (*models.Account, error) {
	sess, err := s.creds.RestoreSession(models.RoleGuardian)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	if credentials.TokenUsable(sess.Token) {
		s.creds.AdoptToken(models.RoleGuardian, sess.Token)
		s.log.WithField("email", sess.Email).Info("restored persisted session")
		return s.fetchOrCreateAccount(sess.Email, sess.Password)
	}

	if sess.Email == "" || sess.Password == "" {
		return nil, ErrNoSession
	}
	if _, err := s.loginAccount(ctx, sess.Email, sess.Password); err != nil {
		return nil, fmt.Errorf("silent re-login failed: %w", err)
	}
	return s.fetchOrCreateAccount(sess.Email, sess.Password)
}
