package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeCmdable implements only the commands TokenRevoker issues.
type fakeCmdable struct {
	redis.Cmdable
	ttl map[string]time.Duration
	err error
}

func (f *fakeCmdable) Set(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err == nil {
		f.ttl[key] = expiration
	}
	return redis.NewStatusResult("OK", f.err)
}

func (f *fakeCmdable) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.ttl[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func TestTokenRevoker_RevokeUntilExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeCmdable{ttl: map[string]time.Duration{}}
	r := NewTokenRevoker(fake)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti-1", now.Add(90*time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if got := fake.ttl["revoked:jti-1"]; got != 90*time.Minute {
		t.Fatalf("expected ttl 90m, got %v", got)
	}

	revoked, err := r.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected jti-1 revoked, got %v (%v)", revoked, err)
	}
	revoked, err = r.IsRevoked(ctx, "jti-2")
	if err != nil || revoked {
		t.Fatalf("expected jti-2 not revoked, got %v (%v)", revoked, err)
	}
}

func TestTokenRevoker_ExpiredTokenNeedsNoEntry(t *testing.T) {
	fake := &fakeCmdable{ttl: map[string]time.Duration{}}
	r := NewTokenRevoker(fake)

	if err := r.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(fake.ttl) != 0 {
		t.Fatalf("expected no key for an already expired token")
	}
}

func TestTokenRevoker_PropagatesErrors(t *testing.T) {
	fake := &fakeCmdable{ttl: map[string]time.Duration{}, err: errors.New("connection refused")}
	r := NewTokenRevoker(fake)
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected Revoke error")
	}
	if _, err := r.IsRevoked(ctx, "jti"); err == nil {
		t.Fatalf("expected IsRevoked error")
	}
}
