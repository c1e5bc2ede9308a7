package stripewebhook

import (
	"context"
	"testing"
	"time"
)

type stubIdempotencyStore struct {
	keys map[string]string
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]string)}
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = value.(string)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "cp:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksFirstDelivery(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubIdempotencyStore(), time.Hour, "stripe")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if seen {
		t.Fatalf("first delivery must not be marked as seen")
	}

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !seen {
		t.Fatalf("second delivery must be deduplicated")
	}
}

func TestIdempotencyGuardDeleteReopensEvent(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStubIdempotencyStore(), time.Hour, "stripe")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt_2"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.Delete(context.Background(), "evt_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_2")
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if seen {
		t.Fatalf("deleted mark must allow a retry")
	}
}
