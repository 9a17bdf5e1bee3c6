package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	FeedFetches.WithLabelValues("technology", "ok").Inc()
	PoolSize.Set(42)

	if got := testutil.ToFloat64(FeedFetches.WithLabelValues("technology", "ok")); got < 1 {
		t.Fatalf("feed fetch counter = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(PoolSize); got != 42 {
		t.Fatalf("pool size gauge = %v, want 42", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metric families")
	}
}
