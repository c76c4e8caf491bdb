package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bsthardware/storefront-backend/pkg/config"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client := &Client{store: fake}

	steps := []struct {
		allowed bool
		count   int64
	}{
		{true, 1},
		{true, 2},
		{false, 3},
	}
	for i, step := range steps {
		allowed, count, err := client.FixedWindowAllow(ctx, "ip:login:1.2.3.4", 2, time.Minute)
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if allowed != step.allowed || count != step.count {
			t.Fatalf("attempt %d: got allowed=%v count=%d", i+1, allowed, count)
		}
	}

	key := "sf:rate_limit:ip:login:1.2.3.4"
	if fake.expires[key] != 1 {
		t.Fatalf("expected a single expire on %s, got %d", key, fake.expires[key])
	}
	if fake.ttls[key] != time.Minute {
		t.Fatalf("unexpected ttl %v", fake.ttls[key])
	}
}

func TestIncrWithTTLRestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client := &Client{store: fake}

	// counter left behind without a ttl
	fake.counters["stuck"] = 4

	count, err := client.IncrWithTTL(ctx, "stuck", time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 got %d", count)
	}
	if fake.ttls["stuck"] != time.Minute {
		t.Fatalf("expected expiry to be restored, got %v", fake.ttls["stuck"])
	}
}

func TestSetsAndPublish(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client := &Client{store: fake}

	if err := client.SAdd(ctx, "set", "a", "b", "a"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	members, err := client.SMembers(ctx, "set")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}

	if err := client.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}

	if err := client.Publish(ctx, "catalog", "payload"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := fake.published["catalog"]; len(got) != 1 || got[0] != "payload" {
		t.Fatalf("unexpected published payloads %v", got)
	}
}

func TestNilClient(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
	if _, _, err := client.FixedWindowAllow(context.Background(), "x", 1, time.Second); err == nil {
		t.Fatal("expected error from nil client")
	}
	if _, err := (&Client{}).Subscribe(context.Background(), "chan"); err == nil {
		t.Fatal("expected subscribe error without a connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.RateLimitKey("scope"):        "sf:rate_limit:scope",
		client.AccessSessionKey("jti"):      "sf:session:access:jti",
		client.SubjectSessionsKey("user-1"): "sf:session:subject:user-1",
		buildKey("a", " ", "b"):             "sf:a:b",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s got %s", want, got)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options db=%d pool=%d dial=%v", opts.DB, opts.PoolSize, opts.DialTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 3 {
		t.Fatalf("unexpected options addr=%s db=%d", opts.Addr, opts.DB)
	}
}

type fakeStore struct {
	values    map[string]string
	counters  map[string]int64
	ttls      map[string]time.Duration
	expires   map[string]int
	sets      map[string]map[string]struct{}
	published map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:    map[string]string{},
		counters:  map[string]int64{},
		ttls:      map[string]time.Duration{},
		expires:   map[string]int{},
		sets:      map[string]map[string]struct{}{},
		published: map[string][]string{},
	}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key]++
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) TTL(_ context.Context, key string) *redis.DurationCmd {
	if ttl, ok := f.ttls[key]; ok {
		return redis.NewDurationResult(ttl, nil)
	}
	if _, ok := f.counters[key]; ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(-2, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.sets, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeStore) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	set, ok := f.sets[key]
	if !ok {
		set = map[string]struct{}{}
		f.sets[key] = set
	}
	for _, member := range members {
		set[fmt.Sprint(member)] = struct{}{}
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeStore) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	out := make([]string, 0, len(f.sets[key]))
	for member := range f.sets[key] {
		out = append(out, member)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeStore) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.published[channel] = append(f.published[channel], fmt.Sprint(message))
	return redis.NewIntResult(1, nil)
}
