package metaproto

import (
	"sync"
	"time"

	"github.com/anp-network/anp-go/internal/metrics"
)

// DefaultMaxNegotiationRounds caps how many negotiation rounds a session
// may go through before it is auto-rejected.
const DefaultMaxNegotiationRounds = 10

// DefaultStateTimeout is how long a session may sit in a non-terminal
// state before TimedOut reports it stalled.
const DefaultStateTimeout = 30 * time.Second

// Session is a single negotiation's mutable state, owned by its Machine
// rather than a process-wide registry.
type Session struct {
	Local              string
	Remote             string
	SequenceID         uint64
	Round              int
	CandidateProtocols []string
	AgreedProtocol     string
	TestCases          []string
	Errors             []string
	State              State
}

// Machine drives a single Session through the meta-protocol negotiation
// automaton. Its locking only guards one Session's mutations; callers own
// one Machine per negotiation rather than sharing a process-wide
// registry.
type Machine struct {
	mu                   sync.Mutex
	session              Session
	maxNegotiationRounds int
	stateTimeout         time.Duration
	stateEnteredAt       time.Time
}

// Config governs the tunables of a Machine.
type Config struct {
	MaxNegotiationRounds int
	StateTimeout         time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxNegotiationRounds == 0 {
		c.MaxNegotiationRounds = DefaultMaxNegotiationRounds
	}
	if c.StateTimeout == 0 {
		c.StateTimeout = DefaultStateTimeout
	}
	return c
}

// NewMachine constructs a Machine for a fresh session between local and
// remote, starting in Idle.
func NewMachine(local, remote string, cfg Config) *Machine {
	cfg = cfg.withDefaults()
	return &Machine{
		session: Session{
			Local:  local,
			Remote: remote,
			State:  StateIdle,
		},
		maxNegotiationRounds: cfg.MaxNegotiationRounds,
		stateTimeout:         cfg.StateTimeout,
		stateEnteredAt:       time.Now(),
	}
}

// Session returns a snapshot of the current session tuple.
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Apply advances the machine on event, enforcing the round ceiling, the
// sequenceId increment, and the always-valid EventEnd escape hatch. An
// event invalid from the current state returns ErrInvalidTransition and
// leaves the session unchanged; the caller decides whether to log or
// ignore it.
func (m *Machine) Apply(event Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if IsTerminal(m.session.State) {
		return m.session.State, ErrInvalidTransition
	}

	if event == EventEnd {
		m.transitionLocked(StateDone)
		return m.session.State, nil
	}

	if event == EventTimeout && time.Since(m.stateEnteredAt) < m.stateTimeout {
		return m.session.State, ErrInvalidTransition
	}

	next, ok := transitions[m.session.State][event]
	if !ok {
		return m.session.State, ErrInvalidTransition
	}

	m.session.SequenceID++
	m.transitionLocked(next)
	return m.session.State, nil
}

// Negotiate records one round of back-and-forth while the session remains
// in Negotiating. The round counter must not exceed maxNegotiationRounds;
// the round that does forces an autonomous transition to Rejected.
// Unlike Apply, this does not itself change state on success; only an
// overflow forces Rejected.
func (m *Machine) Negotiate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.State != StateNegotiating {
		return ErrInvalidTransition
	}

	m.session.Round++
	m.session.SequenceID++
	if m.session.Round > m.maxNegotiationRounds {
		m.transitionLocked(StateRejected)
		metrics.MetaProtocolRejections.Inc()
		return ErrMaxRoundsExceeded
	}
	return nil
}

func (m *Machine) transitionLocked(next State) {
	metrics.MetaProtocolTransitions.WithLabelValues(string(m.session.State), string(next)).Inc()
	m.session.State = next
	m.stateEnteredAt = time.Now()
}

// TimedOut reports whether the machine's current state has exceeded its
// timeout budget, for callers driving the internal timeout event from a
// host scheduler loop.
func (m *Machine) TimedOut() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !IsTerminal(m.session.State) && time.Since(m.stateEnteredAt) >= m.stateTimeout
}
