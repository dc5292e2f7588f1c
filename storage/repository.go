// Package storage provides the persistence abstraction for dashboard
// accounts and wholesale JSON documents (labels, permissions, kanban,
// notifications).
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the requested account or document does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when creating an account whose username is taken.
var ErrConflict = errors.New("username already exists")

// Role values. Anything else is downgraded to RoleUser at the service layer.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is one human user of the dashboard.
//
// ID is assigned from a monotonic sequence at creation and never reused.
// PasswordHash is a PHC-encoded argon2id string, never the plaintext.
// LastLoginAt stays nil until the first successful login.
type Account struct {
	ID           uint64     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	DisplayName  string     `json:"display_name"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Store defines account and document persistence.
//
// Documents are opaque JSON blobs written and read wholesale; the store
// imposes no merge semantics.
type Store interface {
	CreateAccount(a *Account) error
	GetAccount(id uint64) (*Account, error)
	GetAccountByUsername(username string) (*Account, error)
	ListAccounts() ([]*Account, error)
	UpdateAccount(a *Account) error
	DeleteAccount(id uint64) error

	GetDocument(name string) ([]byte, error)
	PutDocument(name string, data []byte) error
}
