// Package transport implements the external interface shim: the
// wire-format glue between agents — message framing over a WebSocket
// connection, the `.well-known/did.json` and `ad.json` HTTP document
// shapes — without owning any of the identity, proof, or negotiation
// semantics those documents carry.
package transport

import (
	"errors"

	"github.com/anp-network/anp-go/metaproto"
)

// Envelope is the application-level unit exchanged between agents: a
// metaproto-tagged frame plus the sender's DID and, once a session is
// active, the e2ee seal fields carrying the frame's encrypted payload.
// Exactly one of Frame/Sealed is meaningful at a time: Sealed is set once
// the end-to-end encryption handshake (TagMetaProtocol,
// ActionProtocolNegotiation) has completed and ordinary
// application/natural-language traffic switches to encrypted delivery.
type Envelope struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	DID       string `json:"did"`

	Tag  metaproto.Tag `json:"tag"`
	Body []byte        `json:"body,omitempty"` // plaintext metaproto.Encode output, pre-session

	Sealed *SealedPayload `json:"sealed,omitempty"` // e2ee-encrypted body, post-session
}

// SealedPayload carries the three fields of crypto.Sealed across the
// wire as distinct JSON members rather than a single opaque blob, so a
// receiver can validate IV/tag lengths before attempting to decrypt.
type SealedPayload struct {
	Ciphertext []byte   `json:"ciphertext"`
	IV         [12]byte `json:"iv"`
	Tag        [16]byte `json:"tag"`
}

// Ack is the per-Envelope acknowledgement returned by the responder. It
// carries no generic payload field: any response content travels as its
// own Envelope so that response messages are also subject to metaproto
// sequencing.
type Ack struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sentinel errors for the transport package.
var (
	ErrNotConnected    = errors.New("transport: not connected")
	ErrEnvelopeInvalid = errors.New("transport: envelope missing required fields")
	ErrResponseTimeout = errors.New("transport: response timeout")
	ErrClosed          = errors.New("transport: connection closed")
)
