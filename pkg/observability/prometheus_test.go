package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnPhase(ctx, 1, "estimated")
	h.OnPhase(ctx, 1, "measured")
	h.OnPhase(ctx, 2, "estimated")
	h.OnDropped(ctx, 3)
	h.OnTransition(ctx, "idle", "panning")
	h.OnZoom(ctx, 1.5)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 100)
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Millisecond)
	h.OnLayoutComplete(ctx, "tree", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(h.settlePhases.WithLabelValues("estimated")); got != 2 {
		t.Errorf("estimated phases = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.dropped); got != 3 {
		t.Errorf("dropped = %v, want 3", got)
	}
	if got := testutil.ToFloat64(h.zoom); got != 1.5 {
		t.Errorf("zoom = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes); got != 100 {
		t.Errorf("cache bytes = %v, want 100", got)
	}
	if got := testutil.ToFloat64(h.httpRequests.WithLabelValues("POST", "/v1/layout", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.stageErrors.WithLabelValues("layout")); got != 1 {
		t.Errorf("layout errors = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered")
	}
}

func TestPrometheusHooksRegister(t *testing.T) {
	defer Reset()
	h := NewPrometheusHooks(nil)
	h.Register()
	if Settle() != SettleHooks(h) || Gesture() != GestureHooks(h) {
		t.Error("Register() should install h globally")
	}
}
