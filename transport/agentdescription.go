package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anp-network/anp-go/did"
)

// Well-known interface protocol tags. Not exhaustive: any string a
// deployment agrees on out of band is valid, these are just the common
// ones worth naming as constants.
const (
	ProtocolOpenRPC  = "openrpc"
	ProtocolJSONRPC2 = "JSON-RPC 2.0"
	ProtocolAP2ANP   = "AP2/ANP"
)

// Interface type tags.
const (
	InterfaceTypeStructured = "StructuredInterface"
)

// AgentInterface is one entry of an AgentDescription's interfaces
// sequence: a single protocol endpoint the agent exposes.
type AgentInterface struct {
	Type        string `json:"type"`
	Protocol    string `json:"protocol"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// AgentDescription is the `ad.json` document: JSON-LD metadata plus the
// sequence of interfaces a remote party can use to talk to this agent.
// Modeled after the did package's Document record idiom — a plain struct
// with JSON tags, no behavior baked into the wire shape itself.
type AgentDescription struct {
	Context      []string         `json:"@context"`
	ID           did.AgentDID     `json:"@id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Interfaces   []AgentInterface `json:"interfaces"`
	Informations map[string]any   `json:"Informations,omitempty"`
}

// ErrAgentDescriptionInvalid is returned by Validate when the document
// is missing a required field.
var ErrAgentDescriptionInvalid = errors.New("transport: agent description invalid")

// NewAgentDescription builds a minimal, valid AgentDescription for id,
// ready to have interfaces appended via AddInterface before publishing.
func NewAgentDescription(id did.AgentDID, name string) *AgentDescription {
	return &AgentDescription{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      id,
		Name:    name,
	}
}

// AddInterface appends one endpoint to the description's interfaces
// sequence. Order is preserved verbatim; interfaces carry no ranking.
func (ad *AgentDescription) AddInterface(iface AgentInterface) {
	ad.Interfaces = append(ad.Interfaces, iface)
}

// Validate checks the document's required-field invariants: @context and
// @id present, at least one interface, and every interface carrying a
// non-empty type/protocol/url.
func (ad *AgentDescription) Validate() error {
	if len(ad.Context) == 0 {
		return fmt.Errorf("%w: missing @context", ErrAgentDescriptionInvalid)
	}
	if ad.ID == "" {
		return fmt.Errorf("%w: missing @id", ErrAgentDescriptionInvalid)
	}
	if ad.Name == "" {
		return fmt.Errorf("%w: missing name", ErrAgentDescriptionInvalid)
	}
	if len(ad.Interfaces) == 0 {
		return fmt.Errorf("%w: at least one interface is required", ErrAgentDescriptionInvalid)
	}
	for i, iface := range ad.Interfaces {
		if iface.Type == "" || iface.Protocol == "" || iface.URL == "" {
			return fmt.Errorf("%w: interface %d missing type/protocol/url", ErrAgentDescriptionInvalid, i)
		}
	}
	return nil
}

// MarshalAgentDescription validates ad and encodes it as the JSON bytes
// to publish at `ad.json`.
func MarshalAgentDescription(ad *AgentDescription) ([]byte, error) {
	if err := ad.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(ad)
}

// ParseAgentDescription decodes and validates an `ad.json` document
// fetched from a remote agent.
func ParseAgentDescription(data []byte) (*AgentDescription, error) {
	var ad AgentDescription
	if err := json.Unmarshal(data, &ad); err != nil {
		return nil, fmt.Errorf("transport: parse agent description: %w", err)
	}
	if err := ad.Validate(); err != nil {
		return nil, err
	}
	return &ad, nil
}

// InterfaceByProtocol returns the first interface entry matching
// protocol, for callers picking a transport to use against a remote
// agent (e.g. selecting the "AP2/ANP" endpoint before issuing a cart
// mandate request).
func (ad *AgentDescription) InterfaceByProtocol(protocol string) (*AgentInterface, bool) {
	for i := range ad.Interfaces {
		if ad.Interfaces[i].Protocol == protocol {
			return &ad.Interfaces[i], true
		}
	}
	return nil, false
}
