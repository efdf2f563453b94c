package game

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// ChangeSettings merges a partial settings update and broadcasts the
// result. Changes apply from the next round onward.
func (e *Engine) ChangeSettings(code string, requester domain.PlayerID, patch domain.SettingsPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if _, err := e.adminOf(s, requester); err != nil {
		return err
	}

	next := s.settings
	if patch.DiscussionSeconds != nil {
		secs := *patch.DiscussionSeconds
		if secs < domain.MinDiscussionSeconds || secs > domain.MaxDiscussionSeconds {
			return domain.ErrInvalidSettings
		}
		next.DiscussionSeconds = secs
	}
	if patch.ShowCategoryToImpostor != nil {
		next.ShowCategoryToImpostor = *patch.ShowCategoryToImpostor
	}
	if patch.EnabledCategories != nil {
		enabled := *patch.EnabledCategories
		for _, id := range enabled {
			if _, ok := e.words.Get(id); !ok {
				return domain.ErrInvalidSettings
			}
		}
		next.EnabledCategories = enabled
	}

	s.settings = next
	s.broadcast(settingsUpdatedEvent{Type: "settingsUpdated", Settings: s.settings})
	log.Info().Str("module", "game.admin").Str("room", code).Msg("settings updated")
	return nil
}

// EndGame tears the room down on the admin's request, sending everyone
// a final score snapshot.
func (e *Engine) EndGame(code string, requester domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if _, err := e.adminOf(s, requester); err != nil {
		return err
	}
	s.broadcast(gameEndedEvent{Type: "gameEnded", Players: s.snapshot()})
	e.destroy(s)
	return nil
}
