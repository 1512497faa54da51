package logging

import (
	"context"
	"testing"
)

func TestCorrelationIDHelpers(t *testing.T) {
	ctx := context.Background()
	if GetCorrelationID(ctx) != "" {
		t.Fatalf("expected empty correlation id")
	}

	ctx = WithCorrelationID(ctx, "cid")
	if GetCorrelationID(ctx) != "cid" {
		t.Fatalf("expected correlation id to be set")
	}

	if got := GetCorrelationID(EnsureCorrelationID(ctx)); got != "cid" {
		t.Fatalf("expected existing correlation id to be kept, got %q", got)
	}

	fresh := EnsureCorrelationID(context.Background())
	if GetCorrelationID(fresh) == "" {
		t.Fatalf("expected generated correlation id")
	}
}

func TestGenerateCorrelationID(t *testing.T) {
	a := GenerateCorrelationID()
	b := GenerateCorrelationID()
	if a == "" || a == b {
		t.Fatalf("expected unique non-empty ids, got %q and %q", a, b)
	}
}
