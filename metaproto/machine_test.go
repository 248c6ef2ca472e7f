package metaproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine("did:wba:a.example:agents:a", "did:wba:b.example:agents:b", Config{})

	state, err := m.Apply(EventInitiate)
	require.NoError(t, err)
	assert.Equal(t, StateNegotiating, state)

	state, err = m.Apply(EventAccept)
	require.NoError(t, err)
	assert.Equal(t, StateCodeGeneration, state)

	state, err = m.Apply(EventCodeReady)
	require.NoError(t, err)
	assert.Equal(t, StateTestCases, state)

	state, err = m.Apply(EventSkipTests)
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)

	state, err = m.Apply(EventStartComm)
	require.NoError(t, err)
	assert.Equal(t, StateCommunicating, state)

	state, err = m.Apply(EventEnd)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.True(t, IsTerminal(state))
}

func TestMachineRejectsInvalidTransition(t *testing.T) {
	m := NewMachine("a", "b", Config{})
	_, err := m.Apply(EventCodeReady)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMachineTestFailureRecoversThroughFixError(t *testing.T) {
	m := NewMachine("a", "b", Config{})
	_, err := m.Apply(EventInitiate)
	require.NoError(t, err)
	_, err = m.Apply(EventAccept)
	require.NoError(t, err)
	_, err = m.Apply(EventCodeReady)
	require.NoError(t, err)
	_, err = m.Apply(EventTestsAgreed)
	require.NoError(t, err)

	state, err := m.Apply(EventTestsFailed)
	require.NoError(t, err)
	assert.Equal(t, StateFixError, state)

	state, err = m.Apply(EventFixAccepted)
	require.NoError(t, err)
	assert.Equal(t, StateCodeGeneration, state)
}

func TestMachineEndIsValidFromAnyNonTerminalState(t *testing.T) {
	m := NewMachine("a", "b", Config{})
	_, err := m.Apply(EventInitiate)
	require.NoError(t, err)

	state, err := m.Apply(EventEnd)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
}

func TestMachineRejectsEventsFromTerminalState(t *testing.T) {
	m := NewMachine("a", "b", Config{})
	_, err := m.Apply(EventInitiate)
	require.NoError(t, err)
	_, err = m.Apply(EventReject)
	require.NoError(t, err)

	_, err = m.Apply(EventAccept)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNegotiateEnforcesMaxRounds(t *testing.T) {
	m := NewMachine("a", "b", Config{MaxNegotiationRounds: 2})
	_, err := m.Apply(EventInitiate)
	require.NoError(t, err)

	require.NoError(t, m.Negotiate())
	require.NoError(t, m.Negotiate())

	err = m.Negotiate()
	assert.ErrorIs(t, err, ErrMaxRoundsExceeded)
	assert.Equal(t, StateRejected, m.Session().State)
}

func TestSequenceIDIncrementsOnEveryOutboundTransition(t *testing.T) {
	m := NewMachine("a", "b", Config{})
	_, err := m.Apply(EventInitiate)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Session().SequenceID)

	_, err = m.Apply(EventAccept)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), m.Session().SequenceID)
}
