package catalog

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on empty cache error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get() = %q, %v; want v", got, err)
	}

	now = now.Add(time.Minute)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete error = %v, want ErrCacheMiss", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

// TestRedisCache requires a Redis instance on localhost:6379 and is skipped
// when none is available.
func TestRedisCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	defer client.Close()

	c := NewRedisCache(client, "stand-test-"+strconv.FormatInt(time.Now().UnixNano(), 10)+":")
	ctx = context.Background()

	if _, err := c.Get(ctx, "snap"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on empty cache error = %v, want ErrCacheMiss", err)
	}

	data, err := EncodeSnapshot(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "snap", data, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "snap")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	snap, err := DecodeSnapshot(got)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if len(snap.Brands) != 3 {
		t.Errorf("brands len = %d, want 3", len(snap.Brands))
	}

	if err := c.Delete(ctx, "snap"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "snap"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete error = %v, want ErrCacheMiss", err)
	}
}
