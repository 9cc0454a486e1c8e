package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/domain"
)

type feedEntry struct {
	ID     uint64
	Cancel context.CancelFunc
}

// Registry tracks hosting-view clients by their client token: the local user
// and at most one live state feed per client.
type Registry struct {
	mu     sync.RWMutex
	feeds  map[domain.UserID]*feedEntry
	users  map[domain.UserID]*domain.User
	feedID uint64
}

func NewRegistry() *Registry {
	return &Registry{
		feeds: make(map[domain.UserID]*feedEntry),
		users: make(map[domain.UserID]*domain.User),
	}
}

func (r *Registry) GetOrCreateUser(id domain.UserID) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u
	}
	u := domain.Guest(id)
	r.users[id] = u
	log.Info().Str("module", "app.registry").Str("client", string(id)).Msg("created new user")
	return u
}

func (r *Registry) UpdateUsername(id domain.UserID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		u = domain.Guest(id)
		r.users[id] = u
	}
	if err := u.SetUsername(name); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("client", string(id)).Str("username", name).Msg("updated username")
	return nil
}

// BindFeed registers a state feed for the client, cancelling the one it replaces.
// The returned id is needed to unbind it.
func (r *Registry) BindFeed(id domain.UserID, cancel context.CancelFunc) uint64 {
	r.mu.Lock()
	prev := r.feeds[id]
	r.feedID++
	e := &feedEntry{ID: r.feedID, Cancel: cancel}
	r.feeds[id] = e
	r.mu.Unlock()

	if prev != nil && prev.Cancel != nil {
		prev.Cancel()
		log.Info().Str("module", "app.registry").Str("client", string(id)).Msg("replaced feed")
	}
	log.Info().Str("module", "app.registry").Str("client", string(id)).Uint64("feed", e.ID).Msg("bound feed")
	return e.ID
}

// UnbindFeed removes the feed only if it is still the one registered under feedID.
func (r *Registry) UnbindFeed(id domain.UserID, feedID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.feeds[id]
	if !ok || e.ID != feedID {
		return false
	}
	delete(r.feeds, id)
	log.Info().Str("module", "app.registry").Str("client", string(id)).Uint64("feed", feedID).Msg("unbind feed")
	return true
}

func (r *Registry) HasFeed(id domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.feeds[id]
	return ok
}

func (r *Registry) Cancel(id domain.UserID) bool {
	r.mu.RLock()
	e, ok := r.feeds[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("client", string(id)).Msg("canceled feed")
	return true
}

// CancelAll stops every feed, used on shutdown.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	feeds := r.feeds
	r.feeds = make(map[domain.UserID]*feedEntry)
	r.mu.Unlock()
	for _, e := range feeds {
		if e.Cancel != nil {
			e.Cancel()
		}
	}
	return len(feeds)
}
