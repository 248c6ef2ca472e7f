package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anp-network/anp-go/did"
)

func validDescription() *AgentDescription {
	ad := NewAgentDescription(did.AgentDID("did:wba:agent.example.com"), "example-agent")
	ad.AddInterface(AgentInterface{
		Type:     InterfaceTypeStructured,
		Protocol: ProtocolAP2ANP,
		URL:      "https://agent.example.com/anp/ws",
	})
	return ad
}

func TestAgentDescriptionValidateRequiresInterfaces(t *testing.T) {
	ad := NewAgentDescription(did.AgentDID("did:wba:agent.example.com"), "example-agent")
	err := ad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentDescriptionInvalid)
}

func TestAgentDescriptionValidateRequiresInterfaceFields(t *testing.T) {
	ad := NewAgentDescription(did.AgentDID("did:wba:agent.example.com"), "example-agent")
	ad.AddInterface(AgentInterface{Type: InterfaceTypeStructured})
	err := ad.Validate()
	require.Error(t, err)
}

func TestAgentDescriptionValidateOK(t *testing.T) {
	assert.NoError(t, validDescription().Validate())
}

func TestMarshalParseAgentDescriptionRoundTrip(t *testing.T) {
	ad := validDescription()
	data, err := MarshalAgentDescription(ad)
	require.NoError(t, err)

	parsed, err := ParseAgentDescription(data)
	require.NoError(t, err)
	assert.Equal(t, ad.ID, parsed.ID)
	assert.Equal(t, ad.Name, parsed.Name)
	require.Len(t, parsed.Interfaces, 1)
	assert.Equal(t, ProtocolAP2ANP, parsed.Interfaces[0].Protocol)
}

func TestParseAgentDescriptionRejectsMissingFields(t *testing.T) {
	_, err := ParseAgentDescription([]byte(`{"@context":["https://www.w3.org/ns/did/v1"],"@id":"did:wba:agent.example.com"}`))
	require.Error(t, err)
}

func TestInterfaceByProtocol(t *testing.T) {
	ad := validDescription()
	iface, ok := ad.InterfaceByProtocol(ProtocolAP2ANP)
	require.True(t, ok)
	assert.Equal(t, "https://agent.example.com/anp/ws", iface.URL)

	_, ok = ad.InterfaceByProtocol(ProtocolOpenRPC)
	assert.False(t, ok)
}
