package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ttlTemp = 24 * time.Hour

// Ephemeral keeps guest and AI accounts in Redis with a sliding TTL.
// New accounts start at StartRating, or DefaultRating when it is zero.
type Ephemeral struct {
	rdb         *redis.Client
	StartRating float64
}

func NewEphemeral(rdb *redis.Client) *Ephemeral { return &Ephemeral{rdb: rdb} }

func (s *Ephemeral) key(username string) string { return "acct:temp:" + strings.TrimSpace(username) }

func (s *Ephemeral) save(ctx context.Context, p *Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(p.Username), raw, ttlTemp).Err(); err != nil {
		return fmt.Errorf("save temp account: %w", err)
	}
	return nil
}

func (s *Ephemeral) FetchPublicProfile(ctx context.Context, username string) (*Profile, error) {
	raw, err := s.rdb.Get(ctx, s.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load temp account: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode temp account: %w", err)
	}
	return &p, nil
}

// SetRating rewrites the account and refreshes its TTL.
func (s *Ephemeral) SetRating(ctx context.Context, username string, rating float64) error {
	p, err := s.FetchPublicProfile(ctx, username)
	if err != nil {
		return err
	}
	p.Rating = rating
	return s.save(ctx, p)
}

func (s *Ephemeral) CreateGuest(ctx context.Context, displayname string) (*Profile, error) {
	p := &Profile{Username: GuestPrefix + uuid.NewString(), Displayname: guestDisplayname(displayname), Rating: startRating(s.StartRating), IsTemp: true}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Ephemeral) CreateAI(ctx context.Context) (*Profile, error) {
	p := &Profile{Username: AIPrefix + uuid.NewString(), Displayname: aiDisplayname, Rating: startRating(s.StartRating), IsTemp: true}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Ephemeral) Remove(ctx context.Context, username string) error {
	return s.rdb.Del(ctx, s.key(username)).Err()
}
