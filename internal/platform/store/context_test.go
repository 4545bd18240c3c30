package store

import (
	"context"
	"testing"
)

// TestOwnerID_SetAndGet sets a owner id and retrieves it
func TestOwnerID_SetAndGet(t *testing.T) {
	t.Parallel()

	base := context.Background()
	ctx := WithOwner(base, "acme")

	id, ok := OwnerID(ctx)
	if !ok {
		t.Fatalf("OwnerID not found")
	}
	if id != "acme" {
		t.Fatalf("OwnerID mismatch got=%q want=%q", id, "acme")
	}
}

// TestOwnerID_EmptyString reports false when empty string is stored
func TestOwnerID_EmptyString(t *testing.T) {
	t.Parallel()

	ctx := WithOwner(context.Background(), "")

	id, ok := OwnerID(ctx)
	if ok {
		t.Fatalf("OwnerID ok should be false for empty value")
	}
	if id != "" {
		t.Fatalf("OwnerID should be empty got=%q", id)
	}
}

// TestOwnerID_NotPresent returns false on base context
func TestOwnerID_NotPresent(t *testing.T) {
	t.Parallel()

	id, ok := OwnerID(context.Background())
	if ok || id != "" {
		t.Fatalf("OwnerID should be absent on base context")
	}
}

// TestOwnerID_NoLeak ensures adding value returns a new ctx and base has no value
func TestOwnerID_NoLeak(t *testing.T) {
	t.Parallel()

	base := context.Background()
	_ = WithOwner(base, "acme")

	id, ok := OwnerID(base)
	if ok || id != "" {
		t.Fatalf("base context should not have owner value")
	}
}

// TestRequestID_SetAndGet sets a request id and retrieves it
func TestRequestID_SetAndGet(t *testing.T) {
	t.Parallel()

	base := context.Background()
	ctx := WithRequestID(base, "req-123")

	id, ok := RequestID(ctx)
	if !ok {
		t.Fatalf("RequestID not found")
	}
	if id != "req-123" {
		t.Fatalf("RequestID mismatch got=%q want=%q", id, "req-123")
	}
}

// TestRequestID_EmptyString reports false when empty string is stored
func TestRequestID_EmptyString(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "")

	id, ok := RequestID(ctx)
	if ok {
		t.Fatalf("RequestID ok should be false for empty value")
	}
	if id != "" {
		t.Fatalf("RequestID should be empty got=%q", id)
	}
}

// TestRequestID_NotPresent returns false on base context
func TestRequestID_NotPresent(t *testing.T) {
	t.Parallel()

	id, ok := RequestID(context.Background())
	if ok || id != "" {
		t.Fatalf("RequestID should be absent on base context")
	}
}

// TestKeys_Isolation ensures owner and request keys do not collide
func TestKeys_Isolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = WithOwner(ctx, "acme")
	ctx = WithRequestID(ctx, "req-123")

	ten, tok := OwnerID(ctx)
	req, rok := RequestID(ctx)

	if !tok || ten != "acme" {
		t.Fatalf("OwnerID mismatch tok=%v ten=%q", tok, ten)
	}
	if !rok || req != "req-123" {
		t.Fatalf("RequestID mismatch rok=%v req=%q", rok, req)
	}
}
