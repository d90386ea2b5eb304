package accounts

import "context"

// Router sends "@"-prefixed usernames to the temp store and the rest to the
// persistent store.
type Router struct {
	Persistent Store
	Temp       TempStore
}

func NewRouter(persistent Store, temp TempStore) *Router {
	return &Router{Persistent: persistent, Temp: temp}
}

func (r *Router) pick(username string) Store {
	if IsTemporary(username) {
		return r.Temp
	}
	return r.Persistent
}

func (r *Router) FetchPublicProfile(ctx context.Context, username string) (*Profile, error) {
	p, err := r.pick(username).FetchPublicProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	p.IsTemp = IsTemporary(username)
	return p, nil
}

func (r *Router) SetRating(ctx context.Context, username string, rating float64) error {
	return r.pick(username).SetRating(ctx, username, rating)
}

func (r *Router) CreateGuest(ctx context.Context, displayname string) (*Profile, error) {
	return r.Temp.CreateGuest(ctx, displayname)
}

func (r *Router) CreateAI(ctx context.Context) (*Profile, error) {
	return r.Temp.CreateAI(ctx)
}

// Remove deletes an ephemeral account. Registered users are never removed here.
func (r *Router) Remove(ctx context.Context, username string) error {
	if !IsTemporary(username) {
		return nil
	}
	return r.Temp.Remove(ctx, username)
}
