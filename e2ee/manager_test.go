package e2ee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterGetRemove(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	initSess, _ := activeSessionPair(t)
	m.Register(initSess)

	got, ok := m.Get(initSess.ID())
	require.True(t, ok)
	assert.Same(t, initSess, got)

	m.Remove(initSess.ID())
	_, ok = m.Get(initSess.ID())
	assert.False(t, ok)
}

func TestManagerSweepDropsClosedSessions(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	initSess, _ := activeSessionPair(t)
	m.Register(initSess)
	initSess.Close()

	m.sweep()

	_, ok := m.Get(initSess.ID())
	assert.False(t, ok)
}
