package game

import "github.com/dkeye/Undercover/internal/domain"

// applyScores applies the round's scoring rule and reports per-player
// deltas. Catching the impostor pays +1 to every player who cast a vote
// in the decisive ballot except the impostor; late joiners merged after
// the ballot get nothing. An escape pays the impostor +2. Scores reset
// only when the room is destroyed.
func applyScores(s *Session, found bool, ballot map[domain.PlayerID]domain.PlayerID) map[domain.PlayerID]int {
	deltas := make(map[domain.PlayerID]int)
	if found {
		for voter := range ballot {
			if voter == s.round.ImpostorID {
				continue
			}
			if p := s.playerByID(voter); p != nil {
				p.Score++
				deltas[voter]++
			}
		}
		return deltas
	}
	if p := s.playerByID(s.round.ImpostorID); p != nil {
		p.Score += 2
		deltas[p.ID] = 2
	}
	return deltas
}
