package metaproto

import "errors"

// Error sentinels the state machine returns.
var (
	ErrInvalidTransition = errors.New("metaproto: event not valid from current state")
	ErrMaxRoundsExceeded = errors.New("metaproto: negotiation round limit exceeded")
	ErrTimeout           = errors.New("metaproto: state timed out")
)
