// Package metaproto implements the meta-protocol negotiation state
// machine: a single-session finite-state automaton, its sequenceId/round
// invariants, and the tagged wire codec used to frame negotiation,
// application, natural-language, and verification messages.
package metaproto

// State is one node of the meta-protocol negotiation automaton.
type State string

const (
	StateIdle          State = "Idle"
	StateNegotiating   State = "Negotiating"
	StateCodeGeneration State = "CodeGeneration"
	StateTestCases     State = "TestCases"
	StateTesting       State = "Testing"
	StateReady         State = "Ready"
	StateCommunicating State = "Communicating"
	StateFixError      State = "FixError"
	StateRejected      State = "Rejected"
	StateFailed        State = "Failed"
	StateDone          State = "Done"
)

// Event is an input to the state machine, either a negotiation action or
// an internal/external control event (timeout, end).
type Event string

const (
	EventInitiate       Event = "initiate"
	EventReceiveRequest Event = "receive_request"
	EventAccept         Event = "accept"
	EventReject         Event = "reject"
	EventCodeReady      Event = "code_ready"
	EventCodeError      Event = "code_error"
	EventSkipTests      Event = "skip_tests"
	EventTestsAgreed    Event = "tests_agreed"
	EventTestsPassed    Event = "tests_passed"
	EventTestsFailed    Event = "tests_failed"
	EventFixAccepted    Event = "fix_accepted"
	EventFixRejected    Event = "fix_rejected"
	EventStartComm      Event = "start_communication"
	EventProtocolError  Event = "protocol_error"
	EventEnd            Event = "end"
	EventTimeout        Event = "timeout"
)

var terminalStates = map[State]bool{
	StateRejected: true,
	StateFailed:   true,
	StateDone:     true,
}

// IsTerminal reports whether s has no outbound transitions.
func IsTerminal(s State) bool { return terminalStates[s] }

// transitions enumerates every (state, event) -> state edge of the
// negotiation diagram. EventEnd is valid from every non-terminal state
// and is applied separately in Machine.Apply rather than listed per
// state.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventInitiate:       StateNegotiating,
		EventReceiveRequest: StateNegotiating,
	},
	StateNegotiating: {
		EventAccept:  StateCodeGeneration,
		EventReject:  StateRejected,
		EventTimeout: StateRejected,
	},
	StateCodeGeneration: {
		EventCodeReady: StateTestCases,
		EventCodeError: StateFailed,
	},
	StateTestCases: {
		EventSkipTests:   StateReady,
		EventTestsAgreed: StateTesting,
	},
	StateTesting: {
		EventTestsPassed: StateReady,
		EventTestsFailed: StateFixError,
	},
	StateFixError: {
		EventFixRejected: StateFailed,
		EventFixAccepted: StateCodeGeneration,
	},
	StateReady: {
		EventStartComm: StateCommunicating,
	},
	StateCommunicating: {
		EventProtocolError: StateFixError,
		EventEnd:           StateDone,
	},
}
