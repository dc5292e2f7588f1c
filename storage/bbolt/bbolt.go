// Package bbolt provides a BBolt-backed account and document store.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/hearthd/hearthd/storage"
)

var (
	bucketAccounts  = []byte("accounts")
	bucketUsernames = []byte("usernames")
	bucketDocuments = []byte("documents")
)

// Store implements storage.Store backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.Store = (*Store)(nil)

// NewStore returns a Store backed by the given BBolt database.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccounts, bucketUsernames, bucketDocuments} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromFile opens a BBolt database at the given path and returns a new Store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db)
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func accountKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// CreateAccount assigns a fresh sequence ID and persists the account.
// The sequence only ever advances, so IDs are never reused even after
// deletions.
func (s *Store) CreateAccount(a *storage.Account) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		usernames := tx.Bucket(bucketUsernames)

		if usernames.Get([]byte(a.Username)) != nil {
			return fmt.Errorf("%s: %w", a.Username, storage.ErrConflict)
		}

		id, err := accounts.NextSequence()
		if err != nil {
			return err
		}
		a.ID = id

		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if err := accounts.Put(accountKey(id), data); err != nil {
			return err
		}
		return usernames.Put([]byte(a.Username), accountKey(id))
	})
}

func (s *Store) GetAccount(id uint64) (*storage.Account, error) {
	var a storage.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAccounts).Get(accountKey(id))
		if data == nil {
			return fmt.Errorf("account %d: %w", id, storage.ErrNotFound)
		}
		return json.Unmarshal(data, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetAccountByUsername(username string) (*storage.Account, error) {
	var a storage.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucketUsernames).Get([]byte(username))
		if key == nil {
			return fmt.Errorf("account %q: %w", username, storage.ErrNotFound)
		}
		data := tx.Bucket(bucketAccounts).Get(key)
		if data == nil {
			return fmt.Errorf("account %q: %w", username, storage.ErrNotFound)
		}
		return json.Unmarshal(data, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAccounts() ([]*storage.Account, error) {
	var accounts []*storage.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).ForEach(func(_, data []byte) error {
			var a storage.Account
			if err := json.Unmarshal(data, &a); err != nil {
				return err
			}
			accounts = append(accounts, &a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount overwrites the stored account record. The username index is
// kept consistent if the username changed.
func (s *Store) UpdateAccount(a *storage.Account) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		usernames := tx.Bucket(bucketUsernames)

		existing := accounts.Get(accountKey(a.ID))
		if existing == nil {
			return fmt.Errorf("account %d: %w", a.ID, storage.ErrNotFound)
		}
		var prev storage.Account
		if err := json.Unmarshal(existing, &prev); err != nil {
			return err
		}
		if prev.Username != a.Username {
			if usernames.Get([]byte(a.Username)) != nil {
				return fmt.Errorf("%s: %w", a.Username, storage.ErrConflict)
			}
			if err := usernames.Delete([]byte(prev.Username)); err != nil {
				return err
			}
			if err := usernames.Put([]byte(a.Username), accountKey(a.ID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return accounts.Put(accountKey(a.ID), data)
	})
}

func (s *Store) DeleteAccount(id uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		data := accounts.Get(accountKey(id))
		if data == nil {
			return fmt.Errorf("account %d: %w", id, storage.ErrNotFound)
		}
		var a storage.Account
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsernames).Delete([]byte(a.Username)); err != nil {
			return err
		}
		return accounts.Delete(accountKey(id))
	})
}

func (s *Store) GetDocument(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		stored := tx.Bucket(bucketDocuments).Get([]byte(name))
		if stored == nil {
			return fmt.Errorf("document %q: %w", name, storage.ErrNotFound)
		}
		data = append(data, stored...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) PutDocument(name string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(name), data)
	})
}
