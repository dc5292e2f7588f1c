// Package auth implements the security core of the dashboard: credential
// storage and verification, the persisted signing secret, and session
// token issuance.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/hearthd/hearthd/storage"
)

// ErrAuthFailed is returned for both unknown usernames and wrong
// passwords. The two cases deliberately collapse into one signal so the
// login endpoint cannot be used for username enumeration.
var ErrAuthFailed = errors.New("invalid credentials")

// ErrInvalidInput is returned when a username or password is missing.
var ErrInvalidInput = errors.New("invalid input")

// BootstrapUsername is the username of the account created on first run.
const BootstrapUsername = "admin"

// Accounts owns password hashing and every credential-store operation.
// It is the only component that ever sees plaintext passwords.
type Accounts struct {
	store storage.Store
}

// NewAccounts returns an account service over the given store.
func NewAccounts(store storage.Store) *Accounts {
	return &Accounts{store: store}
}

// NormalizeRole maps any role outside {admin, user} to user. Unknown roles
// must never silently grant elevated rights.
func NormalizeRole(role string) string {
	if role == storage.RoleAdmin {
		return storage.RoleAdmin
	}
	return storage.RoleUser
}

// Bootstrap creates the default administrator account if the store holds
// no accounts at all. It is idempotent and safe to call on every startup:
// an existing population, admin or not, is left untouched.
func (s *Accounts) Bootstrap(password string) (created bool, err error) {
	existing, err := s.store.ListAccounts()
	if err != nil {
		return false, fmt.Errorf("listing accounts: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.Create(BootstrapUsername, password, "Administrator", storage.RoleAdmin); err != nil {
		// A concurrent bootstrap may have won the race; that still
		// satisfies the postcondition.
		if errors.Is(err, storage.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create stores a new account with a salted argon2id hash of the
// password. The username is case-sensitive and must be unique.
func (s *Accounts) Create(username, password, displayName, role string) (*storage.Account, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if displayName == "" {
		displayName = username
	}
	a := &storage.Account{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         NormalizeRole(role),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateAccount(a); err != nil {
		return nil, err
	}
	return a, nil
}

// VerifyPassword checks the username/password pair and returns the
// matching account. Unknown usernames and hash mismatches both return
// ErrAuthFailed; storage failures surface as themselves so operators can
// tell a broken store from a wrong password.
func (s *Accounts) VerifyPassword(username, password string) (*storage.Account, error) {
	a, err := s.store.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}
	ok, err := ComparePassword(password, a.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("comparing password hash: %w", err)
	}
	if !ok {
		return nil, ErrAuthFailed
	}
	return a, nil
}

// Update applies a partial update. Nil fields are left unchanged; a
// supplied password is re-hashed, never stored as given.
type Update struct {
	DisplayName *string
	Role        *string
	Password    *string
}

// Update mutates the account identified by id and returns the updated
// record.
func (s *Accounts) Update(id uint64, u Update) (*storage.Account, error) {
	a, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}
	if u.DisplayName != nil {
		a.DisplayName = *u.DisplayName
	}
	if u.Role != nil {
		a.Role = NormalizeRole(*u.Role)
	}
	if u.Password != nil {
		if *u.Password == "" {
			return nil, fmt.Errorf("password must not be empty: %w", ErrInvalidInput)
		}
		hash, err := HashPassword(*u.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		a.PasswordHash = hash
	}
	if err := s.store.UpdateAccount(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the account. Blocking self-deletion is the route layer's
// job; the store has no notion of the current caller.
func (s *Accounts) Delete(id uint64) error {
	return s.store.DeleteAccount(id)
}

// RecordLogin stamps the last successful login. Best effort: failures are
// returned but not security-critical.
func (s *Accounts) RecordLogin(id uint64, at time.Time) error {
	a, err := s.store.GetAccount(id)
	if err != nil {
		return err
	}
	at = at.UTC()
	a.LastLoginAt = &at
	return s.store.UpdateAccount(a)
}
