package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire(t *testing.T) {
	key := filepath.Join(t.TempDir(), "site_blocker.db")

	lock, err := Acquire(key)
	require.NoError(t, err)
	assert.Contains(t, lock.Addr(), "127.0.0.1:")

	_, err = Acquire(key)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, lock.Release())
	assert.Equal(t, "", lock.Addr())
	require.NoError(t, lock.Release())

	again, err := Acquire(key)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestLockPort(t *testing.T) {
	key := "/home/u/.config/site_blocker/site_blocker.db"
	assert.Equal(t, lockPort(key), lockPort(key))
	assert.GreaterOrEqual(t, lockPort(key), lockPortBase)
	assert.Less(t, lockPort(key), lockPortBase+lockPortCount)
}

func TestNilLock(t *testing.T) {
	var lock *Lock
	assert.NoError(t, lock.Release())
	assert.Equal(t, "", lock.Addr())
}
