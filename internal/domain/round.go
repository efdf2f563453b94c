package domain

import "time"

// Phase identifies which ballot of a round is being collected.
type Phase uint8

const (
	PhaseRegular Phase = iota
	PhaseTieBreak
)

func (p Phase) String() string {
	if p == PhaseTieBreak {
		return "tie-break"
	}
	return "regular"
}

// Round is the per-round record. Votes maps voter to target; the
// tie-break fields stay empty unless a two-way tie including the
// impostor escalates the regular ballot.
type Round struct {
	Word          string
	CategoryName  string
	ImpostorID    PlayerID
	Votes         map[PlayerID]PlayerID
	TieBreakVotes map[PlayerID]PlayerID
	TieCandidates []PlayerID
	TieVoters     []PlayerID
	Revealed      bool
	StartedAt     time.Time
}

func NewRound(word, categoryName string, impostor PlayerID) *Round {
	return &Round{
		Word:          word,
		CategoryName:  categoryName,
		ImpostorID:    impostor,
		Votes:         make(map[PlayerID]PlayerID),
		TieBreakVotes: make(map[PlayerID]PlayerID),
		StartedAt:     time.Now(),
	}
}

// Ballot returns the active vote map for a phase.
func (r *Round) Ballot(phase Phase) map[PlayerID]PlayerID {
	if phase == PhaseTieBreak {
		return r.TieBreakVotes
	}
	return r.Votes
}
