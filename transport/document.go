package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anp-network/anp-go/did"
)

// DocumentServer serves an agent's own `.well-known/did.json` and
// `ad.json` documents over HTTP. It owns no identity material itself —
// the DID document and agent description are supplied at construction
// (or refreshed via SetDocument/SetDescription after a key rotation) and
// served as static JSON. A resolver on the other end treats any
// non-200 response as resolution failure, never partial data.
type DocumentServer struct {
	mu   sync.RWMutex
	doc  *did.Document
	desc *AgentDescription
}

// NewDocumentServer creates a DocumentServer publishing doc and desc.
// desc may be nil if this agent exposes no interfaces (identity-only
// deployments).
func NewDocumentServer(doc *did.Document, desc *AgentDescription) *DocumentServer {
	return &DocumentServer{doc: doc, desc: desc}
}

// SetDocument atomically replaces the served DID document, e.g. after a
// verification-method rotation.
func (s *DocumentServer) SetDocument(doc *did.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// SetDescription atomically replaces the served agent description.
func (s *DocumentServer) SetDescription(desc *AgentDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = desc
}

// DIDDocumentHandler serves the current DID document as
// `.well-known/did.json`.
func (s *DocumentServer) DIDDocumentHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		doc := s.doc
		s.mu.RUnlock()

		if doc == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	})
}

// AgentDescriptionHandler serves the current agent description as
// `ad.json`.
func (s *DocumentServer) AgentDescriptionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		desc := s.desc
		s.mu.RUnlock()

		if desc == nil {
			http.NotFound(w, r)
			return
		}
		if err := desc.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, desc)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/did+ld+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FetchAgentDescription retrieves and validates the `ad.json` document
// published alongside did's `.well-known/did.json`. It reuses
// did.Parse/WellKnownURL's host/port/path derivation so the two
// documents are always looked up at the same origin.
func FetchAgentDescription(ctx context.Context, client *http.Client, agentDID did.AgentDID, timeout time.Duration) (*AgentDescription, error) {
	if client == nil {
		client = &http.Client{}
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	host, port, path, err := did.Parse(agentDID)
	if err != nil {
		return nil, err
	}
	url := adDescriptionURL(host, port, path)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build ad.json request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: fetch ad.json: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transport: fetch ad.json: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read ad.json body: %w", err)
	}
	return ParseAgentDescription(body)
}

// adDescriptionURL mirrors did.WellKnownURL's authority/path derivation,
// swapping the well-known did.json filename for a sibling ad.json served
// at the same path.
func adDescriptionURL(host string, port *int, path []string) string {
	authority := host
	if port != nil {
		authority = fmt.Sprintf("%s:%d", host, *port)
	}
	u := "https://" + authority + "/"
	if len(path) > 0 {
		u += strings.Join(path, "/") + "/"
	}
	u += "ad.json"
	return u
}
