package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anp-network/anp-go/metaproto"
)

func TestClientServerRoundTrip(t *testing.T) {
	srv := NewServer(func(ctx context.Context, env *Envelope) (*Ack, error) {
		return &Ack{Success: true, MessageID: env.ID, SessionID: env.SessionID}, nil
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	client := NewClient(wsURL)
	defer client.Close()

	body, err := metaproto.Encode(metaproto.TagMetaProtocol, metaproto.MetaProtocolBody{
		Action:     metaproto.ActionProtocolNegotiation,
		SequenceID: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ack, err := client.Send(ctx, &Envelope{
		DID:  "did:wba:agent.example.com",
		Tag:  metaproto.TagMetaProtocol,
		Body: body,
	})
	require.NoError(t, err)
	assert.True(t, ack.Success)
}

func TestClientSendRejectsEnvelopeWithoutDID(t *testing.T) {
	client := NewClient("ws://unused")
	_, err := client.Send(context.Background(), &Envelope{})
	assert.ErrorIs(t, err, ErrEnvelopeInvalid)
}

func TestServerRejectsEnvelopeWithoutDID(t *testing.T) {
	srv := NewServer(func(ctx context.Context, env *Envelope) (*Ack, error) {
		t.Fatal("handler should not be called for an invalid envelope")
		return nil, nil
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(&Envelope{ID: "m1"}))

	var ack Ack
	require.NoError(t, conn.ReadJSON(&ack))
	assert.False(t, ack.Success)
}

func TestServerConnectionCount(t *testing.T) {
	srv := NewServer(func(ctx context.Context, env *Envelope) (*Ack, error) {
		return &Ack{Success: true, MessageID: env.ID}, nil
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, srv.Len())
}
