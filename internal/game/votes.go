package game

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// Vote records a regular-phase ballot entry. Repeated votes from the
// same voter and votes after the reveal are ignored; the arrival of the
// final expected vote triggers resolution.
func (e *Engine) Vote(code string, voter, target domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	r := s.round
	if r == nil || r.Revealed || s.state != domain.StateVoting {
		return nil
	}
	if s.playerByID(voter) == nil {
		return nil
	}
	if _, dup := r.Votes[voter]; dup {
		return nil
	}
	r.Votes[voter] = target
	e.maybeResolve(s)
	return nil
}

// TieBreakVote records a tie-break ballot entry from an eligible voter.
// The restricted ballot only accepts the tied candidates as targets;
// anything else is discarded like any other invalid vote.
func (e *Engine) TieBreakVote(code string, voter, target domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	r := s.round
	if r == nil || r.Revealed || s.state != domain.StateTieBreak {
		return nil
	}
	if !containsID(r.TieVoters, voter) {
		return nil
	}
	if !containsID(r.TieCandidates, target) {
		return nil
	}
	if _, dup := r.TieBreakVotes[voter]; dup {
		return nil
	}
	r.TieBreakVotes[voter] = target
	e.maybeResolve(s)
	return nil
}

// maybeResolve fires resolution once the active ballot holds an entry
// for every expected voter.
func (e *Engine) maybeResolve(s *Session) {
	r := s.round
	switch s.state {
	case domain.StateVoting:
		if len(r.Votes) >= len(s.players) {
			e.resolve(s, domain.PhaseRegular)
		}
	case domain.StateTieBreak:
		if len(r.TieBreakVotes) >= len(r.TieVoters) {
			e.resolve(s, domain.PhaseTieBreak)
		}
	}
}

// resolve tallies the active ballot. A unique maximum reveals the
// round. A two-way regular-phase tie that includes the impostor
// escalates to a tie-break; every other tie shape falls back to a
// uniform random pick among the tied leaders.
func (e *Engine) resolve(s *Session, phase domain.Phase) {
	r := s.round
	counts := make(map[domain.PlayerID]int)
	for _, target := range r.Ballot(phase) {
		counts[target]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	leaders := make([]domain.PlayerID, 0, len(counts))
	for id, n := range counts {
		if n == max {
			leaders = append(leaders, id)
		}
	}
	sort.Slice(leaders, func(i, j int) bool { return leaders[i] < leaders[j] })

	if len(leaders) == 1 {
		e.reveal(s, leaders[0], r.Ballot(phase), "")
		return
	}
	if phase == domain.PhaseRegular && len(leaders) == 2 && containsID(leaders, r.ImpostorID) {
		e.enterTieBreak(s, leaders)
		return
	}
	winner := leaders[e.rng.Intn(len(leaders))]
	log.Debug().Str("module", "game.votes").Str("room", s.code).
		Int("tied", len(leaders)).Str("phase", phase.String()).Msg("tie fallback, random pick among leaders")
	e.reveal(s, winner, r.Ballot(phase), "")
}

// enterTieBreak opens the restricted secondary ballot: the two tied
// players are the candidates, everyone else votes. An even non-zero
// voter set loses one random voter so the deciding count is odd.
func (e *Engine) enterTieBreak(s *Session, candidates []domain.PlayerID) {
	r := s.round

	voters := make([]domain.PlayerID, 0, len(s.players))
	for _, p := range s.players {
		if !containsID(candidates, p.ID) {
			voters = append(voters, p.ID)
		}
	}
	if len(voters) > 0 && len(voters)%2 == 0 {
		i := e.rng.Intn(len(voters))
		excluded := voters[i]
		voters = append(voters[:i], voters[i+1:]...)
		s.unicast(excluded, excludedFromTieBreakEvent{Type: "excludedFromTieBreak"})
	}

	r.TieCandidates = candidates
	r.TieVoters = voters
	r.TieBreakVotes = make(map[domain.PlayerID]domain.PlayerID)
	s.state = domain.StateTieBreak

	ballot := &tieBreakBallot{VoterIDs: voters}
	for _, id := range candidates {
		if p := s.playerByID(id); p != nil {
			ballot.Candidates = append(ballot.Candidates, *p)
		}
	}
	s.broadcast(votingStartedEvent{Type: "votingStarted", TieBreak: ballot})
	log.Info().Str("module", "game.votes").Str("room", s.code).Int("voters", len(voters)).Msg("tie-break started")
}

// reveal closes the round: scores applied over the decisive ballot,
// waiting players merged into the roster, one result broadcast, state
// back to lobby. The next round waits for an explicit admin start.
func (e *Engine) reveal(s *Session, winner domain.PlayerID, ballot map[domain.PlayerID]domain.PlayerID, note string) {
	r := s.round
	r.Revealed = true
	found := winner == r.ImpostorID

	deltas := applyScores(s, found, ballot)

	var impostor domain.Player
	if p := s.playerByID(r.ImpostorID); p != nil {
		impostor = *p
	}

	s.state = domain.StateLobby
	e.mergeWaiting(s)

	s.broadcast(roundResolvedEvent{
		Type:          "roundResolved",
		ImpostorFound: found,
		Impostor:      impostor,
		Word:          r.Word,
		Players:       s.snapshot(),
		ScoreDeltas:   deltas,
		Note:          note,
	})
	log.Info().Str("module", "game.votes").Str("room", s.code).Bool("found", found).Msg("round resolved")
}

// forceReveal resolves an unrevealed round when the impostor vanishes
// mid-round: the outcome counts as caught, scored over whatever ballot
// had been collected, regardless of vote completeness.
func (e *Engine) forceReveal(s *Session, impostor domain.Player, note string) {
	r := s.round
	s.stopCountdown()
	r.Revealed = true

	deltas := applyScores(s, true, r.Votes)

	s.state = domain.StateLobby
	e.mergeWaiting(s)

	s.broadcast(roundResolvedEvent{
		Type:          "roundResolved",
		ImpostorFound: true,
		Impostor:      impostor,
		Word:          r.Word,
		Players:       s.snapshot(),
		ScoreDeltas:   deltas,
		Note:          note,
	})
	log.Info().Str("module", "game.votes").Str("room", s.code).Msg("round force-resolved, impostor left")
}

// voterDeparted reconciles an in-flight ballot with a shrunken roster.
// A leaver who had not voted yet voids the ballot and restarts voting
// over the remaining players; a leaver whose vote was already in just
// has the entry dropped before re-checking completion.
func (e *Engine) voterDeparted(s *Session, id domain.PlayerID) {
	r := s.round
	ballot := r.Votes
	if s.state == domain.StateTieBreak {
		ballot = r.TieBreakVotes
	}

	if _, voted := ballot[id]; !voted {
		e.restartVoting(s)
		return
	}
	delete(ballot, id)
	if s.state == domain.StateTieBreak {
		for i, v := range r.TieVoters {
			if v == id {
				r.TieVoters = append(r.TieVoters[:i], r.TieVoters[i+1:]...)
				break
			}
		}
	}
	e.maybeResolve(s)
}

// restartVoting scraps all collected votes and reopens the regular
// ballot over the current roster.
func (e *Engine) restartVoting(s *Session) {
	r := s.round
	r.Votes = make(map[domain.PlayerID]domain.PlayerID)
	r.TieBreakVotes = make(map[domain.PlayerID]domain.PlayerID)
	r.TieCandidates = nil
	r.TieVoters = nil
	s.state = domain.StateVoting
	s.broadcast(votingStartedEvent{Type: "votingStarted", Players: s.snapshot()})
	log.Info().Str("module", "game.votes").Str("room", s.code).Msg("ballot voided, voting restarted")
}

// mergeWaiting seats the queued joiners now that the room is back in
// the lobby, notifying each with a successful-join event.
func (e *Engine) mergeWaiting(s *Session) {
	if len(s.waiting) == 0 {
		return
	}
	s.players = append(s.players, s.waiting...)
	joined := s.waiting
	s.waiting = nil
	for _, p := range joined {
		s.unicast(p.ID, joinedEvent{Type: "joined", Players: s.snapshot(), Settings: s.settings})
	}
}

func containsID(ids []domain.PlayerID, id domain.PlayerID) bool {
	for _, cur := range ids {
		if cur == id {
			return true
		}
	}
	return false
}
