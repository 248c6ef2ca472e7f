package did

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/anp-network/anp-go/internal/metrics"
)

// cacheEntry holds either a resolved document or a cached resolution
// failure, alongside the time it expires from the cache.
type cacheEntry struct {
	doc     *Document
	err     error
	expires time.Time
}

// ResolverConfig governs resolution timeouts, retries, and cache lifetimes.
type ResolverConfig struct {
	Timeout       time.Duration // per-attempt HTTP timeout, default 10s
	MaxAttempts   int           // default 3
	BackoffBase   time.Duration // default 1s, doubled per retry
	PositiveTTL   time.Duration // default 10m
	NegativeTTL   time.Duration // default 30s, shorter than PositiveTTL
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = time.Second
	}
	if c.PositiveTTL == 0 {
		c.PositiveTTL = 10 * time.Minute
	}
	if c.NegativeTTL == 0 {
		c.NegativeTTL = 30 * time.Second
	}
	return c
}

// Resolver fetches and caches did:wba documents over HTTPS. Many readers,
// occasional writer: reads take a shared lock for lookup, writers hold the
// exclusive lock only to install an entry.
type Resolver struct {
	cfg    ResolverConfig
	client *http.Client
	mu     sync.RWMutex
	cache  map[AgentDID]cacheEntry
}

// NewResolver creates a Resolver with the given configuration and HTTP
// client; a nil client defaults to http.DefaultClient's transport with the
// resolver's own per-attempt timeout applied.
func NewResolver(cfg ResolverConfig, client *http.Client) *Resolver {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{}
	}
	return &Resolver{
		cfg:    cfg,
		client: client,
		cache:  make(map[AgentDID]cacheEntry),
	}
}

// Resolve fetches the DID document for did, serving from cache when a live
// entry exists. Resolution fails with ErrResolutionNotFound,
// ErrDocumentInvalid, ErrIdentifierMismatch, or ErrResolutionNetwork.
func (r *Resolver) Resolve(ctx context.Context, did AgentDID) (*Document, error) {
	start := time.Now()
	if doc, err, ok := r.lookup(did); ok {
		metrics.GetGlobalCollector().RecordDIDResolution(true, time.Since(start))
		return doc, err
	}

	host, port, path, err := Parse(did)
	if err != nil {
		return nil, err
	}
	url := WellKnownURL(host, port, path)

	doc, err := r.fetchWithRetry(ctx, url, did)
	r.store(did, doc, err)
	metrics.GetGlobalCollector().RecordDIDResolution(false, time.Since(start))
	return doc, err
}

func (r *Resolver) lookup(did AgentDID) (*Document, error, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[did]
	if !ok || time.Now().After(e.expires) {
		return nil, nil, false
	}
	return e.doc, e.err, true
}

func (r *Resolver) store(did AgentDID, doc *Document, err error) {
	ttl := r.cfg.PositiveTTL
	if err != nil {
		ttl = r.cfg.NegativeTTL
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[did] = cacheEntry{doc: doc, err: err, expires: time.Now().Add(ttl)}
}

// Invalidate drops a cached entry, used when a document is known to have
// changed (e.g. after a key rotation) without waiting for TTL expiry.
func (r *Resolver) Invalidate(did AgentDID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, did)
}

// CacheSize reports the number of entries currently held in the
// resolution cache, for health/metrics surfaces.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Len is an alias of CacheSize satisfying internal/health.SizeReporter.
func (r *Resolver) Len() int {
	return r.CacheSize()
}

func (r *Resolver) fetchWithRetry(ctx context.Context, url string, want AgentDID) (*Document, error) {
	backoff := r.cfg.BackoffBase
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ErrResolutionNetwork
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		doc, err, retryable := r.fetchOnce(ctx, url, want)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrResolutionNetwork
}

func (r *Resolver) fetchOnce(ctx context.Context, url string, want AgentDID) (doc *Document, err error, retryable bool) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrResolutionNetwork, false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ErrResolutionNetwork, true
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrResolutionNotFound, false
	case resp.StatusCode >= 500:
		return nil, ErrResolutionNetwork, true
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("did: unexpected status %d resolving document: %w", resp.StatusCode, ErrResolutionNetwork), false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrResolutionNetwork, true
	}

	var d Document
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: malformed document JSON: %v", err)), false
	}
	if err := d.Validate(); err != nil {
		return nil, err, false
	}
	if d.ID != want {
		return nil, ErrIdentifierMismatch, false
	}
	return &d, nil, false
}
