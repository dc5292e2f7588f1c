package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateSecret_CreatesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	enclave, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	require.NotNil(t, enclave)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(secretLen), info.Size())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoadOrCreateSecret_StableAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	first, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	second, err := LoadOrCreateSecret(path)
	require.NoError(t, err)

	b1, err := first.Open()
	require.NoError(t, err)
	defer b1.Destroy()
	b2, err := second.Open()
	require.NoError(t, err)
	defer b2.Destroy()

	assert.Equal(t, b1.Bytes(), b2.Bytes(), "the same secret should be read back")
}

func TestLoadOrCreateSecret_RejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadOrCreateSecret(path)
	assert.Error(t, err)
}

func TestLoadOrCreateSecret_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "secret.key")

	_, err := LoadOrCreateSecret(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
