// Package game implements the session engine: room lifecycle, the
// round state machine, vote tallying with tie-break escalation,
// scoring, and churn handling.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/dkeye/Undercover/internal/domain"
	"github.com/dkeye/Undercover/internal/words"
)

// Engine processes every inbound event under one mutex: a handler
// runs to completion before the next event for any room is admitted,
// so session invariants never need per-field protection. Rooms share
// no state, which leaves sharding open as a scaling strategy.
type Engine struct {
	mu       sync.Mutex
	rooms    *Registry
	words    *words.Catalog
	rng      *rand.Rand
	byPlayer map[domain.PlayerID]string
	tick     time.Duration
}

type Option func(*Engine)

// WithRand injects a seeded source, used by tests for deterministic
// draws.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithTick shortens the countdown tick; production stays at one second.
func WithTick(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

func New(catalog *words.Catalog, opts ...Option) *Engine {
	e := &Engine{
		words:    catalog,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		byPlayer: make(map[domain.PlayerID]string),
		tick:     time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rooms = newRegistry(e.rng)
	return e
}

// sessionOf resolves a room code while holding the engine lock.
func (e *Engine) sessionOf(code string) (*Session, error) {
	s, ok := e.rooms.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return s, nil
}

// adminOf returns the requesting player iff they hold the admin seat.
// Admin-gated actions apply this uniformly instead of silently
// ignoring non-admin requesters.
func (e *Engine) adminOf(s *Session, id domain.PlayerID) (*domain.Player, error) {
	p := s.playerByID(id)
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}
	if !p.IsAdmin {
		return nil, domain.ErrNotAdmin
	}
	return p, nil
}

// destroy tears a room down: timer cancelled, waiting queue discarded,
// identity index scrubbed.
func (e *Engine) destroy(s *Session) {
	for _, p := range s.players {
		delete(e.byPlayer, p.ID)
	}
	for _, p := range s.waiting {
		delete(e.byPlayer, p.ID)
	}
	e.rooms.Destroy(s.code)
}

// Rooms reports the number of live rooms.
func (e *Engine) Rooms() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rooms.Len()
}
