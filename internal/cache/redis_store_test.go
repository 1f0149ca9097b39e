package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL is not set, skip redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client, "test")
	key := "cache-test:" + t.Name()
	t.Cleanup(func() { client.Del(ctx, key) })

	if _, found, err := store.Get(ctx, key); err != nil || found {
		t.Fatalf("Get before Set: found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, key, `{"serviceId":"svc-1"}`, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, found, err := store.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get after Set: found=%v err=%v", found, err)
	}
	if value != `{"serviceId":"svc-1"}` {
		t.Fatalf("value = %q", value)
	}
}
