// Package accounts resolves usernames to public profiles and persists ratings.
//
// Usernames starting with "@" belong to ephemeral accounts (guests and AI players)
// that live in a TTL store; everything else is a registered user.
package accounts

import (
	"context"
	"errors"
	"math"
	"strings"
)

var ErrNotFound = errors.New("account not found")

const (
	DefaultRating = 400.0
	GuestPrefix   = "@guest-"
	AIPrefix      = "@ai-"
)

// Profile is the public part of an account.
type Profile struct {
	Username    string  `json:"username"`
	Displayname string  `json:"displayname"`
	Rating      float64 `json:"rating"`
	IsTemp      bool    `json:"isTemp"`
}

// RoundedRating floors the rating for display.
func (p Profile) RoundedRating() int { return int(math.Floor(p.Rating)) }

// Store is the contract the match orchestrator depends on.
type Store interface {
	FetchPublicProfile(ctx context.Context, username string) (*Profile, error)
	SetRating(ctx context.Context, username string, rating float64) error
}

// TempStore additionally creates and removes ephemeral accounts.
type TempStore interface {
	Store
	CreateGuest(ctx context.Context, displayname string) (*Profile, error)
	CreateAI(ctx context.Context) (*Profile, error)
	Remove(ctx context.Context, username string) error
}

// IsTemporary reports whether username names an ephemeral account.
func IsTemporary(username string) bool { return strings.HasPrefix(username, "@") }

// IsAI reports whether username names a synthetic AI player.
func IsAI(username string) bool { return strings.HasPrefix(username, AIPrefix) }

func guestDisplayname(displayname string) string {
	if d := strings.TrimSpace(displayname); d != "" {
		return d
	}
	return "Guest"
}

const aiDisplayname = "Paint Chess AI"

func startRating(r float64) float64 {
	if r > 0 {
		return r
	}
	return DefaultRating
}
