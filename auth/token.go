package auth

import (
	"fmt"
	"time"

	"github.com/awnumar/memguard"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is how long issued session tokens stay valid.
const DefaultTokenLifetime = 7 * 24 * time.Hour

// Claims is the verified payload of a session token. Role is captured at
// issuance time; a later role change does not reach tokens already handed
// out.
type Claims struct {
	UserID   uint64 `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens signed
// with the persisted process secret. Verification needs no store round
// trip.
type TokenService struct {
	secret   *memguard.Enclave
	lifetime time.Duration
}

// NewTokenService returns a token service. A non-positive lifetime falls
// back to DefaultTokenLifetime.
func NewTokenService(secret *memguard.Enclave, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{secret: secret, lifetime: lifetime}
}

// Lifetime returns the configured token validity duration.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue mints a signed token for the account with an absolute expiry of
// now + lifetime.
func (s *TokenService) Issue(userID uint64, username, role string) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(s.lifetime)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	key, err := s.secret.Open()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("opening signing secret: %w", err)
	}
	defer key.Destroy()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.Bytes())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token. It returns nil for anything
// unacceptable: malformed input, a signature minted under a different
// secret, or an expiry in the past. Callers treat nil uniformly as
// "unauthenticated"; the distinction between expired and forged is
// deliberately not surfaced.
func (s *TokenService) Verify(token string) *Claims {
	key, err := s.secret.Open()
	if err != nil {
		return nil
	}
	defer key.Destroy()

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key.Bytes(), nil
	})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil
	}
	return claims
}
