package e2ee

import (
	"time"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/internal/metrics"
)

func newSession(id, localDID, remoteDID string, aeadKey []byte, policy RekeyPolicy) *Session {
	return &Session{
		id:         id,
		DIDLocal:   localDID,
		DIDRemote:  remoteDID,
		aeadKey:    aeadKey,
		state:      StateHandshakeInitiated,
		createdAt:  time.Now(),
		policy:     policy,
		inboundIVs: newIVWindow(0),
	}
}

// direction tags mix into the AEAD associated data so a ciphertext from one
// direction can never be replayed as if it came from the other.
const (
	directionInitiatorToResponder = "initiator->responder"
	directionResponderToInitiator = "responder->initiator"
)

func (s *Session) aad(direction string) []byte {
	return []byte(s.id + "|" + direction)
}

func (s *Session) sealFinished(role string) (Finished, error) {
	sealed, err := sagecrypto.AEADSeal(s.aeadKey, []byte("finished:"+role), s.aad(role))
	if err != nil {
		return Finished{}, err
	}
	return Finished{Tag: append(append(append([]byte(nil), sealed.IV[:]...), sealed.Tag[:]...), sealed.Ciphertext...)}, nil
}

func (s *Session) verifyFinished(role string, f Finished) error {
	if len(f.Tag) < 12+16 {
		return ErrAuthenticationFailed
	}
	sealed := &sagecrypto.Sealed{Ciphertext: f.Tag[28:]}
	copy(sealed.IV[:], f.Tag[:12])
	copy(sealed.Tag[:], f.Tag[12:28])
	plaintext, err := sagecrypto.AEADOpen(s.aeadKey, sealed, s.aad(role))
	if err != nil || string(plaintext) != "finished:"+role {
		return ErrAuthenticationFailed
	}
	return nil
}

// Seal encrypts plaintext for transmission in the direction from the
// local side to the remote side, binding the associated data to
// session_id ‖ direction.
func (s *Session) Seal(plaintext []byte, outbound bool) (*sagecrypto.Sealed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, ErrSessionClosed
	}
	sealed, err := sagecrypto.AEADSeal(s.aeadKey, plaintext, s.aad(directionOf(outbound)))
	if err != nil {
		return nil, err
	}
	s.messageCount++
	metrics.SessionMessageSize.WithLabelValues("outbound").Observe(float64(len(plaintext)))
	return sealed, nil
}

// Open decrypts a message received from the remote side. Two consecutive
// ErrAuthenticationFailed results close the session. A previously-accepted
// IV is rejected outright as a replay, without attempting decryption.
func (s *Session) Open(sealed *sagecrypto.Sealed, outbound bool) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, ErrSessionClosed
	}
	if s.inboundIVs.seenOrInsert(sealed.IV) {
		metrics.ReplayAttacksDetected.Inc()
		s.consecutiveAuthFail++
		if s.consecutiveAuthFail >= 2 {
			s.state = StateClosed
			metrics.SessionsClosed.Inc()
			metrics.SessionsActive.Dec()
		}
		return nil, ErrAuthenticationFailed
	}
	plaintext, err := sagecrypto.AEADOpen(s.aeadKey, sealed, s.aad(directionOf(outbound)))
	if err != nil {
		s.consecutiveAuthFail++
		if s.consecutiveAuthFail >= 2 {
			s.state = StateClosed
			metrics.SessionsClosed.Inc()
			metrics.SessionsActive.Dec()
		}
		return nil, ErrAuthenticationFailed
	}
	s.consecutiveAuthFail = 0
	s.messageCount++
	metrics.SessionMessageSize.WithLabelValues("inbound").Observe(float64(len(plaintext)))
	return plaintext, nil
}

func directionOf(outbound bool) string {
	if outbound {
		return directionInitiatorToResponder
	}
	return directionResponderToInitiator
}

// Rekey replaces the session's AEAD key with newKey, atomically, after a
// fresh handshake has been performed over the existing authenticated
// channel. It resets the age/message-count clock.
func (s *Session) Rekey(newKey []byte) error {
	if len(newKey) != 32 {
		return ErrRekeyRefused
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrRekeyRefused
	}
	s.aeadKey = newKey
	s.createdAt = time.Now()
	s.messageCount = 0
	return nil
}

// Close tears down the session irreversibly.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		metrics.SessionsClosed.Inc()
		if s.state == StateActive {
			metrics.SessionsActive.Dec()
		}
	}
	s.state = StateClosed
}
