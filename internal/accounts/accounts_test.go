package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestEphemeral(t *testing.T) (*Ephemeral, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewEphemeral(rdb), mr
}

func TestEphemeralLifecycle(t *testing.T) {
	s, mr := newTestEphemeral(t)
	ctx := context.Background()

	g, err := s.CreateGuest(ctx, "  ")
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if !strings.HasPrefix(g.Username, GuestPrefix) || g.Displayname != "Guest" || g.Rating != DefaultRating || !g.IsTemp {
		t.Fatalf("guest = %+v", g)
	}
	if ttl := mr.TTL("acct:temp:" + g.Username); ttl != 24*time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}

	if err := s.SetRating(ctx, g.Username, 412.5); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	got, err := s.FetchPublicProfile(ctx, g.Username)
	if err != nil || got.Rating != 412.5 {
		t.Fatalf("fetch = %+v, %v", got, err)
	}

	if err := s.Remove(ctx, g.Username); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.FetchPublicProfile(ctx, g.Username); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fetch after remove: %v", err)
	}
	if err := s.SetRating(ctx, g.Username, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rate after remove: %v", err)
	}
}

func TestEphemeralExpires(t *testing.T) {
	s, mr := newTestEphemeral(t)
	ctx := context.Background()
	ai, err := s.CreateAI(ctx)
	if err != nil {
		t.Fatalf("CreateAI: %v", err)
	}
	if !IsAI(ai.Username) || !IsTemporary(ai.Username) {
		t.Fatalf("ai username = %s", ai.Username)
	}
	mr.FastForward(25 * time.Hour)
	if _, err := s.FetchPublicProfile(ctx, ai.Username); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired account still present: %v", err)
	}
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	persistent := NewMemory()
	persistent.Put(Profile{Username: "ann", Displayname: "Ann", Rating: 1500})
	temp, _ := newTestEphemeral(t)
	r := NewRouter(persistent, temp)

	ai, err := r.CreateAI(ctx)
	if err != nil {
		t.Fatalf("CreateAI: %v", err)
	}
	if _, err := persistent.FetchPublicProfile(ctx, ai.Username); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AI account leaked into persistent store")
	}
	p, err := r.FetchPublicProfile(ctx, ai.Username)
	if err != nil || !p.IsTemp {
		t.Fatalf("fetch ai = %+v, %v", p, err)
	}

	if err := r.SetRating(ctx, "ann", 1510); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	p, _ = r.FetchPublicProfile(ctx, "ann")
	if p.Rating != 1510 || p.IsTemp || p.RoundedRating() != 1510 {
		t.Fatalf("ann = %+v", p)
	}

	if err := r.Remove(ctx, "ann"); err != nil {
		t.Fatalf("Remove registered: %v", err)
	}
	if _, err := r.FetchPublicProfile(ctx, "ann"); err != nil {
		t.Fatalf("registered user removed: %v", err)
	}
	if _, err := r.FetchPublicProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestRoundedRating(t *testing.T) {
	if got := (Profile{Rating: 404.99}).RoundedRating(); got != 404 {
		t.Fatalf("got %d", got)
	}
}

func TestMemoryAutoProvision(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.FetchPublicProfile(ctx, "zoe"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user without provisioning: %v", err)
	}

	m.AutoProvision = true
	m.StartRating = 1000
	p, err := m.FetchPublicProfile(ctx, "zoe")
	if err != nil || p.Rating != 1000 || p.Displayname != "zoe" {
		t.Fatalf("provisioned = %+v, %v", p, err)
	}
	if err := m.SetRating(ctx, "zoe", 1010); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if p, _ := m.FetchPublicProfile(ctx, "zoe"); p.Rating != 1010 {
		t.Fatalf("rating not kept: %+v", p)
	}
	if _, err := m.FetchPublicProfile(ctx, AIPrefix+"x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("temporary names must not be provisioned: %v", err)
	}
	ai, _ := m.CreateAI(ctx)
	if ai.Rating != 1000 {
		t.Fatalf("ai start rating = %v", ai.Rating)
	}
}
