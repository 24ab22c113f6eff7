package translator

import (
	"context"
	"errors"
	"testing"
)

type countingService struct {
	calls int
}

func (c *countingService) Name() string { return "counting" }

func (c *countingService) Translate(ctx context.Context, fragment, instructions, glossary string) Result {
	c.calls++
	return Success("ok:" + fragment)
}

func (c *countingService) IsAvailable(ctx context.Context) error { return nil }

func TestWithRateLimit_Disabled(t *testing.T) {
	svc := &countingService{}
	if got := WithRateLimit(svc, 0); got != Service(svc) {
		t.Error("expected service to be returned unchanged")
	}
}

func TestWithRateLimit_PassesThrough(t *testing.T) {
	svc := &countingService{}
	limited := WithRateLimit(svc, 600)

	res := limited.Translate(context.Background(), "a", "", "")
	if !res.OK() || res.Text != "ok:a" {
		t.Errorf("unexpected result %+v", res)
	}
	if limited.Name() != "counting" {
		t.Errorf("expected wrapped name, got %q", limited.Name())
	}
	if svc.calls != 1 {
		t.Errorf("expected exactly one call, got %d", svc.calls)
	}
}

func TestWithRateLimit_CancelledWait(t *testing.T) {
	svc := &countingService{}
	limited := WithRateLimit(svc, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := limited.Translate(ctx, "a", "", "")
	if res.OK() {
		t.Fatal("expected failure for cancelled context")
	}
	if res.Failure.Kind != KindUnexpected {
		t.Errorf("expected unexpected failure, got %s", res.Failure.Kind)
	}
	if !errors.Is(res.Failure, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", res.Failure.Cause)
	}
	if svc.calls != 0 {
		t.Errorf("expected no upstream call, got %d", svc.calls)
	}
}
