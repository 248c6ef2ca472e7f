package metaproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	body := MetaProtocolBody{
		Action:     ActionProtocolNegotiation,
		SequenceID: 3,
		Payload:    map[string]any{"candidateProtocols": []string{"anp/1"}},
	}

	frame, err := Encode(TagMetaProtocol, body)
	require.NoError(t, err)
	assert.Equal(t, byte(TagMetaProtocol), frame[0])

	decoded, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, TagMetaProtocol, decoded.Tag)

	got, err := DecodeMetaProtocolBody(decoded.Body)
	require.NoError(t, err)
	assert.Equal(t, ActionProtocolNegotiation, got.Action)
	assert.Equal(t, uint64(3), got.SequenceID)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := Decode([]byte{0xFF, '{', '}'})
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestDecodeRejectsEmptyFrame(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrUnknownTag)
}
