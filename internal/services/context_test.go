package services_test

import (
	"context"
	"testing"

	"lookout/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEventID(ctx, "evt-123")
	ctx = services.WithSource(ctx, "front-door")
	ctx = services.WithComponent(ctx, "dispatch")

	if id, ok := services.EventIDFromContext(ctx); !ok || id != "evt-123" {
		t.Fatalf("unexpected event id: %v %v", id, ok)
	}
	if source, ok := services.SourceFromContext(ctx); !ok || source != "front-door" {
		t.Fatalf("unexpected source: %v %v", source, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "dispatch" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEventID(ctx, "")
	ctx = services.WithSource(ctx, "")
	if _, ok := services.EventIDFromContext(ctx); ok {
		t.Fatal("expected no event id value")
	}
	if _, ok := services.SourceFromContext(ctx); ok {
		t.Fatal("expected no source value")
	}
}
