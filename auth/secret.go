package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"

	"github.com/hearthd/hearthd/internal/util"
)

// secretLen is the size of the token signing secret in bytes.
const secretLen = 32

// LoadOrCreateSecret reads the signing secret from path, generating and
// persisting a fresh one if the file does not exist. Tokens issued before
// a restart stay valid because the same secret is read back. Exactly one
// secret is ever in force per deployment unless the file is deleted out
// of band, which is the documented coarse-grained way to revoke every
// outstanding token at once.
//
// The secret lives in a memguard Enclave so it is encrypted at rest in
// process memory and only decrypted while signing or verifying.
func LoadOrCreateSecret(path string) (*memguard.Enclave, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != secretLen {
			return nil, fmt.Errorf("signing secret %s has %d bytes, want %d", path, len(data), secretLen)
		}
		// NewEnclave wipes data.
		return memguard.NewEnclave(data), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading signing secret: %w", err)
	}

	secret, err := util.RandomBytes(secretLen)
	if err != nil {
		return nil, fmt.Errorf("generating signing secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating secret directory: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("persisting signing secret: %w", err)
	}
	return memguard.NewEnclave(secret), nil
}
