package auth

import (
	"testing"
	"time"

	"github.com/awnumar/memguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthd/hearthd/storage"
)

func testSecret(t *testing.T) *memguard.Enclave {
	t.Helper()
	return memguard.NewEnclaveRandom(secretLen)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret(t), time.Hour)

	token, expiresAt, err := svc.Issue(42, "alice", storage.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims := svc.Verify(token)
	require.NotNil(t, claims)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, storage.RoleAdmin, claims.Role)
}

func TestTokenService_DefaultLifetime(t *testing.T) {
	svc := NewTokenService(testSecret(t), 0)
	assert.Equal(t, DefaultTokenLifetime, svc.Lifetime())

	_, expiresAt, err := svc.Issue(1, "bob", storage.RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret(t), time.Hour)

	assert.Nil(t, svc.Verify(""))
	assert.Nil(t, svc.Verify("not-a-token"))
	assert.Nil(t, svc.Verify("aaaa.bbbb.cccc"))
}

func TestTokenService_VerifyRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenService(testSecret(t), time.Hour)
	verifier := NewTokenService(testSecret(t), time.Hour)

	token, _, err := issuer.Issue(1, "alice", storage.RoleUser)
	require.NoError(t, err)

	assert.Nil(t, verifier.Verify(token), "token from another secret must not verify")
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService(testSecret(t), time.Millisecond)

	token, _, err := svc.Issue(1, "alice", storage.RoleUser)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	assert.Nil(t, svc.Verify(token), "expired token must not verify")
}

func TestTokenService_RoleCapturedAtIssuance(t *testing.T) {
	svc := NewTokenService(testSecret(t), time.Hour)

	token, _, err := svc.Issue(7, "carol", storage.RoleUser)
	require.NoError(t, err)

	// The claims are baked in; the token stays a user token no matter what
	// happens to the account afterwards.
	claims := svc.Verify(token)
	require.NotNil(t, claims)
	assert.Equal(t, storage.RoleUser, claims.Role)
}
