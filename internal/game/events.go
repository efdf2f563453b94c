package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
	"github.com/dkeye/Undercover/internal/words"
)

// Outbound event payloads. Every struct carries its own Type tag so the
// client can dispatch on a single field, mirroring the inbound envelope.

type roomCreatedEvent struct {
	Type       string          `json:"type"`
	Code       string          `json:"code"`
	Players    []domain.Player `json:"players"`
	Settings   domain.Settings `json:"settings"`
	Categories []words.Info    `json:"categories"`
}

type codeValidatedEvent struct {
	Type           string        `json:"type"`
	InProgress     bool          `json:"inProgress"`
	State          domain.State  `json:"state"`
	AssignedAvatar domain.Avatar `json:"assignedAvatar"`
}

type joinedEvent struct {
	Type     string          `json:"type"`
	Players  []domain.Player `json:"players"`
	Settings domain.Settings `json:"settings"`
}

type joinQueuedEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type rosterUpdatedEvent struct {
	Type    string          `json:"type"`
	Players []domain.Player `json:"players"`
}

type roundStartedEvent struct {
	Type         string `json:"type"`
	IsImpostor   bool   `json:"isImpostor"`
	Word         string `json:"word,omitempty"`
	Category     string `json:"category,omitempty"`
	TimerSeconds int    `json:"timerSeconds"`
}

type countdownEvent struct {
	Type        string `json:"type"`
	SecondsLeft int    `json:"secondsLeft"`
}

type tieBreakBallot struct {
	Candidates []domain.Player   `json:"candidates"`
	VoterIDs   []domain.PlayerID `json:"voterIds"`
}

type votingStartedEvent struct {
	Type     string          `json:"type"`
	Players  []domain.Player `json:"players,omitempty"`
	TieBreak *tieBreakBallot `json:"tieBreak,omitempty"`
}

type excludedFromTieBreakEvent struct {
	Type string `json:"type"`
}

type roundResolvedEvent struct {
	Type          string                   `json:"type"`
	ImpostorFound bool                     `json:"impostorFound"`
	Impostor      domain.Player            `json:"impostor"`
	Word          string                   `json:"word"`
	Players       []domain.Player          `json:"players"`
	ScoreDeltas   map[domain.PlayerID]int  `json:"scoreDeltas"`
	Note          string                   `json:"note,omitempty"`
}

type wordSkippedEvent struct {
	Type      string `json:"type"`
	AdminName string `json:"adminName"`
}

type gameEndedEvent struct {
	Type    string          `json:"type"`
	Players []domain.Player `json:"players"`
	Reason  string          `json:"reason,omitempty"`
}

type adminChangedEvent struct {
	Type       string          `json:"type"`
	NewAdmin   domain.Player   `json:"newAdmin"`
	Players    []domain.Player `json:"players"`
	Settings   domain.Settings `json:"settings"`
	Categories []words.Info    `json:"categories"`
}

type playerLeftEvent struct {
	Type   string        `json:"type"`
	Player domain.Player `json:"player"`
}

type removedEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type settingsUpdatedEvent struct {
	Type     string          `json:"type"`
	Settings domain.Settings `json:"settings"`
}

// send marshals an event and pushes it to a single connection. Delivery
// is best effort: a saturated peer drops the frame instead of blocking
// the engine.
func send(c Conn, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "game").Msg("event marshal")
		return
	}
	_ = c.TrySend(b)
}
