package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReportsHealthyAndUnhealthy(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	h.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("boom") })

	ok, err := h.Check(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, ok.Status)

	bad, err := h.Check(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Equal(t, "boom", bad.Message)
}

func TestCheckUnknownNameErrors(t *testing.T) {
	h := NewHealthChecker(time.Second)
	_, err := h.Check(context.Background(), "missing")
	assert.Error(t, err)
}

func TestCheckCachesResult(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.SetCacheTTL(time.Minute)
	calls := 0
	h.RegisterCheck("counted", func(ctx context.Context) error {
		calls++
		return nil
	})

	_, err := h.Check(context.Background(), "counted")
	require.NoError(t, err)
	_, err = h.Check(context.Background(), "counted")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetOverallStatusAggregates(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	h.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("boom") })

	assert.Equal(t, StatusUnhealthy, h.GetOverallStatus(context.Background()))
}

func TestGetOverallStatusHealthyWhenNoChecks(t *testing.T) {
	h := NewHealthChecker(time.Second)
	assert.Equal(t, StatusHealthy, h.GetOverallStatus(context.Background()))
}

func TestUnregisterCheckDropsCacheToo(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	_, err := h.Check(context.Background(), "ok")
	require.NoError(t, err)

	h.UnregisterCheck("ok")
	_, err = h.Check(context.Background(), "ok")
	assert.Error(t, err)
}

func TestGetSystemHealth(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })

	sys := h.GetSystemHealth(context.Background())
	assert.Equal(t, StatusHealthy, sys.Status)
	assert.Contains(t, sys.Checks, "ok")
}
