package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// StartRound begins a round from the lobby: random enabled category,
// random word, random impostor, then the discussion countdown. Guard
// failures leave the session untouched and surface only to the
// requester.
func (e *Engine) StartRound(code string, requester domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if _, err := e.adminOf(s, requester); err != nil {
		return err
	}
	if s.state != domain.StateLobby {
		return domain.ErrRoundInProgress
	}
	if len(s.players) < domain.MinPlayers || len(s.players) > domain.MaxPlayers {
		return domain.ErrNotEnoughPlayers
	}
	return e.beginRound(s)
}

// SkipWord discards the running round and redraws a fresh one.
func (e *Engine) SkipWord(code string, requester domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	admin, err := e.adminOf(s, requester)
	if err != nil {
		return err
	}
	if s.state != domain.StateInRound {
		return domain.ErrNoActiveRound
	}
	s.broadcast(wordSkippedEvent{Type: "wordSkipped", AdminName: admin.Name})
	return e.beginRound(s)
}

// beginRound draws first so a failed draw is a full no-op, then swaps
// in the new round record and notifies each player with their
// personalized payload. Any stale countdown is cancelled before the new
// one starts; a room never owns two live timers.
func (e *Engine) beginRound(s *Session) error {
	categoryName, word, err := e.words.Draw(e.rng, s.settings.EnabledCategories)
	if err != nil {
		return err
	}
	impostor := s.players[e.rng.Intn(len(s.players))]

	s.stopCountdown()
	s.round = domain.NewRound(word, categoryName, impostor.ID)
	s.state = domain.StateInRound

	for _, p := range s.players {
		ev := roundStartedEvent{
			Type:         "roundStarted",
			TimerSeconds: s.settings.DiscussionSeconds,
		}
		if p.ID == impostor.ID {
			ev.IsImpostor = true
			if s.settings.ShowCategoryToImpostor {
				ev.Category = categoryName
			}
		} else {
			ev.Word = word
		}
		s.unicast(p.ID, ev)
	}
	e.startCountdown(s)

	log.Info().Str("module", "game.round").Str("room", s.code).
		Str("category", categoryName).Str("impostor", impostor.Name).Msg("round started")
	return nil
}

// countdown is the cancellable handle for a room's discussion timer.
type countdown struct {
	stop chan struct{}
	once sync.Once
}

func (c *countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (e *Engine) startCountdown(s *Session) {
	h := &countdown{stop: make(chan struct{})}
	s.countdown = h
	seconds := s.settings.DiscussionSeconds
	code := s.code

	go func() {
		ticker := time.NewTicker(e.tick)
		defer ticker.Stop()
		left := seconds
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				left--
				if !e.countdownTick(code, h, left) {
					return
				}
			}
		}
	}()
}

// countdownTick runs one timer event through the engine. A handle that
// is no longer the session's current one is stale (round skipped or
// resolved early) and silently expires.
func (e *Engine) countdownTick(code string, h *countdown, left int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.rooms.Get(code)
	if !ok || s.countdown != h || s.state != domain.StateInRound {
		return false
	}
	if left > 0 {
		s.broadcast(countdownEvent{Type: "countdown", SecondsLeft: left})
		return true
	}
	s.countdown = nil
	s.state = domain.StateVoting
	s.broadcast(votingStartedEvent{Type: "votingStarted", Players: s.snapshot()})
	return false
}
