package domain

// State is the phase a room is in. Transitions are driven exclusively
// by the game engine; adapters only ever read it.
type State uint8

const (
	StateLobby State = iota
	StateInRound
	StateVoting
	StateTieBreak
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateInRound:
		return "in-round"
	case StateVoting:
		return "voting"
	case StateTieBreak:
		return "tie-break"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the state as its lowercase name so clients
// never see the numeric representation.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
