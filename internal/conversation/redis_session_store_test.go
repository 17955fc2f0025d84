package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedisStore(t *testing.T) *RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, time.Hour, nil)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	state := &CallState{
		CustomerID:        "CUST001",
		CustomerName:      "Rajesh Kumar",
		OutstandingAmount: 45000,
		Stage:             StageVerification,
		AwaitingUser:      true,
		Turns:             []Turn{{Role: RoleAssistant, Content: "Hello"}},
		OfferedPlans:      []PaymentPlan{{Name: "3-Month Installment", Description: "Pay ₹15,000 per month for 3 months"}},
	}

	id, err := store.Create(ctx, state)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	loaded, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.CustomerID != "CUST001" || len(loaded.Turns) != 1 || len(loaded.OfferedPlans) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}

	loaded.Stage = StageNegotiation
	loaded.Turns = append(loaded.Turns, Turn{Role: RoleUser, Content: "yes"})
	if err := store.Put(ctx, id, loaded); err != nil {
		t.Fatalf("Put: %v", err)
	}

	again, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if again.Stage != StageNegotiation || len(again.Turns) != 2 {
		t.Errorf("after put = %+v", again)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisSessionStoreUnknownSession(t *testing.T) {
	store := testRedisStore(t)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisSessionStore(client, time.Minute, nil)

	id, err := store.Create(context.Background(), &CallState{CustomerID: "CUST001"})
	if err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(context.Background(), id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound after TTL", err)
	}
}
