package health

import (
	"context"
	"fmt"
)

// SizeReporter is satisfied by any bounded collection a liveness check
// wants to report occupancy for, without this package importing did or
// auth directly: did.Resolver.CacheSize, auth.BearerCache.Len, and
// auth.NonceWindow.Len all already implement it.
type SizeReporter interface {
	Len() int
}

// DIDCacheHealthCheck reports the occupancy of a did.Resolver's
// resolution cache against a soft capacity. A cache above the soft cap
// (or a nil cache) returns an error, which HealthChecker reports as
// unhealthy.
func DIDCacheHealthCheck(cache SizeReporter, softCap int) HealthCheck {
	return func(ctx context.Context) error {
		if cache == nil {
			return fmt.Errorf("did resolver cache not configured")
		}
		n := cache.Len()
		if softCap > 0 && n > softCap {
			return fmt.Errorf("did resolver cache at %d entries, exceeds soft cap %d", n, softCap)
		}
		return nil
	}
}

// NonceWindowHealthCheck reports the occupancy of an auth.NonceWindow
// against its configured maxSize, surfacing a window that is
// persistently full (a sign of clock skew or a replay attempt storm)
// rather than waiting for VerifyHeader to start rejecting nonces.
func NonceWindowHealthCheck(window SizeReporter, maxSize int) HealthCheck {
	return func(ctx context.Context) error {
		if window == nil {
			return fmt.Errorf("nonce window not configured")
		}
		n := window.Len()
		if maxSize > 0 && n >= maxSize {
			return fmt.Errorf("nonce window full: %d/%d", n, maxSize)
		}
		return nil
	}
}

// BearerCacheHealthCheck reports the occupancy of an auth.BearerCache
// against a soft capacity, the client-side counterpart to
// DIDCacheHealthCheck.
func BearerCacheHealthCheck(cache SizeReporter, softCap int) HealthCheck {
	return func(ctx context.Context) error {
		if cache == nil {
			return fmt.Errorf("bearer cache not configured")
		}
		n := cache.Len()
		if softCap > 0 && n > softCap {
			return fmt.Errorf("bearer cache at %d entries, exceeds soft cap %d", n, softCap)
		}
		return nil
	}
}
