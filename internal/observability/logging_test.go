package observability

import (
	"context"
	"testing"
)

func TestLogContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithPhase(ctx, "writing")
	ctx = WithSection(ctx, "Overview")

	lc := GetContext(ctx)
	if lc.RunID != "run-1" || lc.Phase != "writing" || lc.Section != "Overview" {
		t.Errorf("unexpected log context: %+v", lc)
	}
}

func TestLogContextOverwrite(t *testing.T) {
	ctx := WithPhase(context.Background(), "planning")
	ctx = WithPhase(ctx, "writing")

	if got := GetContext(ctx).Phase; got != "writing" {
		t.Errorf("expected phase writing, got %s", got)
	}
}

func TestEmptyContext(t *testing.T) {
	lc := GetContext(context.Background())
	if lc.RunID != "" || lc.Phase != "" || lc.Section != "" {
		t.Errorf("expected empty log context, got %+v", lc)
	}
}

func TestMetricsRegistry(t *testing.T) {
	RecordRequest("plan")
	RecordRetry("rate_limit")
	RecordWindowWait(1.5)
	RecordArtifact("screenshot")
	RecordSectionWritten()

	mfs, err := Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Error("expected registered metric families")
	}
}
