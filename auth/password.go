package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/hearthd/hearthd/internal/util"
)

// argon2idParams are the work-factor parameters for password hashing.
// Verification re-derives with the parameters stored in the hash string,
// so these can be raised later without invalidating existing hashes.
type argon2idParams struct {
	time        uint32
	memoryKiB   uint32
	parallelism uint8
	keyLen      uint32
}

func defaultArgon2idParams() argon2idParams {
	return argon2idParams{
		time:        1,
		memoryKiB:   64 * 1024,
		parallelism: 4,
		keyLen:      32,
	}
}

const saltLen = 16

// HashPassword derives an argon2id hash of the password and returns it in
// PHC string format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>.
// The password is NFKD-normalized first.
func HashPassword(password string) (string, error) {
	salt, err := util.RandomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	p := defaultArgon2idParams()
	key := argon2.IDKey([]byte(util.Normalize(password)), salt, p.time, p.memoryKiB, p.parallelism, p.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memoryKiB, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ComparePassword reports whether the password matches the PHC-encoded
// argon2id hash. The underlying key comparison is constant-time.
func ComparePassword(password, encoded string) (bool, error) {
	salt, expected, p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(util.Normalize(password)), salt, p.time, p.memoryKiB, p.parallelism, p.keyLen)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func decodePHC(encoded string) (salt, key []byte, p argon2idParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("malformed argon2id hash")
	}
	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("malformed argon2id version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memoryKiB, &p.time, &p.parallelism); err != nil {
		return nil, nil, p, fmt.Errorf("malformed argon2id parameters: %w", err)
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, p, fmt.Errorf("malformed argon2id salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, p, fmt.Errorf("malformed argon2id key: %w", err)
	}
	p.keyLen = uint32(len(key))
	return salt, key, p, nil
}
