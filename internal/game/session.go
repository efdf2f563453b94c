package game

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// archivedPlayer is what survives a disconnect: enough to restore a
// returning player's seat under a fresh connection identity.
type archivedPlayer struct {
	Score  int
	Avatar domain.Avatar
}

// Session is the per-room aggregate. It carries no locking of its own:
// the engine serializes every event, so a handler always sees the
// session fully mutated or not at all.
type Session struct {
	code         string
	players      []*domain.Player
	waiting      []*domain.Player
	conns        map[domain.PlayerID]Conn
	disconnected map[string]archivedPlayer
	settings     domain.Settings
	state        domain.State
	round        *domain.Round
	countdown    *countdown
	createdAt    time.Time
}

func newSession(code string, settings domain.Settings) *Session {
	return &Session{
		code:         code,
		conns:        make(map[domain.PlayerID]Conn),
		disconnected: make(map[string]archivedPlayer),
		settings:     settings,
		state:        domain.StateLobby,
		createdAt:    time.Now(),
	}
}

func (s *Session) Code() string        { return s.code }
func (s *Session) State() domain.State { return s.state }

func (s *Session) playerByID(id domain.PlayerID) *domain.Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) waitingByID(id domain.PlayerID) *domain.Player {
	for _, p := range s.waiting {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// nameTaken checks the normalized name against active and waiting
// players alike; the uniqueness invariant spans both sets.
func (s *Session) nameTaken(name string) bool {
	for _, p := range s.players {
		if p.Name == name {
			return true
		}
	}
	for _, p := range s.waiting {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s *Session) usedAvatarFiles() map[string]bool {
	used := make(map[string]bool, len(s.players)+len(s.waiting))
	for _, p := range s.players {
		used[p.Avatar.File] = true
	}
	for _, p := range s.waiting {
		used[p.Avatar.File] = true
	}
	return used
}

// snapshot returns the roster by value, in join order.
func (s *Session) snapshot() []domain.Player {
	out := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p)
	}
	return out
}

// broadcast marshals once and fans out to every tracked connection,
// waiting players included. Slow consumers drop the frame.
func (s *Session) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "game").Str("room", s.code).Msg("broadcast marshal")
		return
	}
	for _, c := range s.conns {
		if c != nil {
			_ = c.TrySend(b)
		}
	}
}

func (s *Session) unicast(id domain.PlayerID, v any) {
	send(s.conns[id], v)
}

func (s *Session) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}
