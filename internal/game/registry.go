package game

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// Registry owns the table of live rooms. It is not safe for concurrent
// use on its own; the engine's event loop is the single writer.
type Registry struct {
	rng   *rand.Rand
	rooms map[string]*Session
}

func newRegistry(rng *rand.Rand) *Registry {
	return &Registry{rng: rng, rooms: make(map[string]*Session)}
}

// Create draws a random 4-digit code, re-drawing on collision with any
// live room, and registers a fresh empty session under it. Leading
// zeros are valid, so the space is the full 0000-9999 range.
func (r *Registry) Create(settings domain.Settings) *Session {
	var code string
	for {
		code = fmt.Sprintf("%04d", r.rng.Intn(10000))
		if _, taken := r.rooms[code]; !taken {
			break
		}
	}
	s := newSession(code, settings)
	r.rooms[code] = s
	return s
}

func (r *Registry) Get(code string) (*Session, bool) {
	s, ok := r.rooms[code]
	return s, ok
}

// Destroy cancels the room's countdown, discards its waiting queue and
// removes it from the table.
func (r *Registry) Destroy(code string) {
	s, ok := r.rooms[code]
	if !ok {
		return
	}
	s.stopCountdown()
	s.waiting = nil
	delete(r.rooms, code)
	log.Info().Str("module", "game.registry").Str("room", code).Msg("room destroyed")
}

func (r *Registry) Len() int { return len(r.rooms) }
