package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceWindowRejectsReplay(t *testing.T) {
	w := NewNonceWindow(5*time.Minute, 10)
	require.NoError(t, w.Insert("nonce-1"))
	assert.True(t, w.Contains("nonce-1"))
	assert.ErrorIs(t, w.Insert("nonce-1"), ErrNonceReplay)
}

func TestNonceWindowEvictsOldestOnOverflow(t *testing.T) {
	w := NewNonceWindow(time.Hour, 2)
	require.NoError(t, w.Insert("a"))
	require.NoError(t, w.Insert("b"))
	require.NoError(t, w.Insert("c"))

	assert.Equal(t, 2, w.Len())
	assert.False(t, w.Contains("a"))
	assert.True(t, w.Contains("b"))
	assert.True(t, w.Contains("c"))
}

func TestNonceWindowExpiresByTTL(t *testing.T) {
	w := NewNonceWindow(10*time.Millisecond, 10)
	require.NoError(t, w.Insert("nonce-1"))
	time.Sleep(30 * time.Millisecond)
	assert.False(t, w.Contains("nonce-1"))
	assert.NoError(t, w.Insert("nonce-1"))
}
