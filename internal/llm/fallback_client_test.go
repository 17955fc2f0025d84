package llm

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "primary" {
		t.Errorf("expected primary response, got %q", resp.Text)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not be called when primary succeeds")
	}
}

func TestFallbackClientFallsBack(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "fallback" {
		t.Errorf("expected fallback response, got %q", resp.Text)
	}
}

func TestFallbackClientBothFail(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	fallback := &stubClient{err: errors.New("fallback down")}
	client := NewFallbackClient(primary, fallback, nil)

	_, err := client.Complete(context.Background(), Request{})
	if err == nil || err.Error() != "fallback down" {
		t.Fatalf("expected last error surfaced, got %v", err)
	}
}

func TestFallbackClientNoFallbackConfigured(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	client := NewFallbackClient(primary, nil, nil)

	_, err := client.Complete(context.Background(), Request{})
	if err == nil || err.Error() != "primary down" {
		t.Fatalf("expected primary error, got %v", err)
	}
}
