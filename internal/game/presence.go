package game

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

const waitMessage = "You'll join at the end of the current round. Hang tight!"

// CreateRoom registers a new room with the creator as its admin.
func (e *Engine) CreateRoom(id domain.PlayerID, conn Conn, name, avatarFile string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name, err := validName(name)
	if err != nil {
		return err
	}

	s := e.rooms.Create(domain.DefaultSettings(e.words.IDs()))
	admin := &domain.Player{
		ID:      id,
		Name:    name,
		IsAdmin: true,
		Avatar:  domain.AvatarByFile(avatarFile),
	}
	s.players = append(s.players, admin)
	s.conns[id] = conn
	e.byPlayer[id] = s.code

	send(conn, roomCreatedEvent{
		Type:       "roomCreated",
		Code:       s.code,
		Players:    s.snapshot(),
		Settings:   s.settings,
		Categories: e.words.List(),
	})
	log.Info().Str("module", "game.presence").Str("room", s.code).Str("name", name).Msg("room created")
	return nil
}

// CheckCode validates a room code before the join handshake and offers
// the avatar the joiner would receive.
func (e *Engine) CheckCode(conn Conn, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if len(s.players)+len(s.waiting) >= domain.MaxPlayers {
		return domain.ErrRoomFull
	}
	send(conn, codeValidatedEvent{
		Type:           "codeValidated",
		InProgress:     s.state != domain.StateLobby,
		State:          s.state,
		AssignedAvatar: e.pickAvatar(s, ""),
	})
	return nil
}

// Join admits a player into a room. A normalized name matching an
// archived disconnect is a rejoin and restores the old seat; otherwise
// the name must be unique across active and waiting players and the
// room must have a free seat. Mid-round joiners are queued until the
// next lobby transition.
func (e *Engine) Join(code string, id domain.PlayerID, conn Conn, name, avatarFile string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name, err := validName(name)
	if err != nil {
		return err
	}
	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}

	if _, ok := s.disconnected[name]; ok {
		e.restoreSeat(s, id, conn, name)
		return nil
	}
	if s.nameTaken(name) {
		return domain.ErrNameTaken
	}
	// Queued joiners hold seats too: they merge into the roster at the
	// next lobby transition, so capacity counts both sets.
	if len(s.players)+len(s.waiting) >= domain.MaxPlayers {
		return domain.ErrRoomFull
	}

	p := &domain.Player{
		ID:     id,
		Name:   name,
		Avatar: e.pickAvatar(s, avatarFile),
	}
	e.admit(s, p, conn)
	log.Info().Str("module", "game.presence").Str("room", code).Str("name", name).Msg("player joined")
	return nil
}

// Rejoin is the explicit recovery path after a transport reconnect: it
// only succeeds for a name archived by a previous disconnect.
func (e *Engine) Rejoin(code string, id domain.PlayerID, conn Conn, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name, err := validName(name)
	if err != nil {
		return err
	}
	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if _, ok := s.disconnected[name]; !ok {
		return domain.ErrNoDisconnectedSeat
	}
	e.restoreSeat(s, id, conn, name)
	log.Info().Str("module", "game.presence").Str("room", code).Str("name", name).Msg("player rejoined")
	return nil
}

// restoreSeat rebuilds a player from a disconnect archive under the new
// connection identity. Uniqueness checks are skipped: the archive entry
// is the proof the name belongs to this seat.
func (e *Engine) restoreSeat(s *Session, id domain.PlayerID, conn Conn, name string) {
	arch := s.disconnected[name]
	delete(s.disconnected, name)
	p := &domain.Player{
		ID:     id,
		Name:   name,
		Score:  arch.Score,
		Avatar: arch.Avatar,
	}
	e.admit(s, p, conn)
}

// admit seats a player immediately in the lobby or queues them while a
// round is running.
func (e *Engine) admit(s *Session, p *domain.Player, conn Conn) {
	s.conns[p.ID] = conn
	e.byPlayer[p.ID] = s.code
	if s.state != domain.StateLobby {
		s.waiting = append(s.waiting, p)
		send(conn, joinQueuedEvent{Type: "joinQueued", Message: waitMessage})
		return
	}
	s.players = append(s.players, p)
	send(conn, joinedEvent{Type: "joined", Players: s.snapshot(), Settings: s.settings})
	s.broadcast(rosterUpdatedEvent{Type: "rosterUpdated", Players: s.snapshot()})
}

// Disconnect handles a transport-level departure for whichever room
// the connection was seated or queued in.
func (e *Engine) Disconnect(id domain.PlayerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code, ok := e.byPlayer[id]
	if !ok {
		return
	}
	s, sok := e.rooms.Get(code)
	if !sok {
		delete(e.byPlayer, id)
		return
	}
	if w := s.waitingByID(id); w != nil {
		e.dropWaiting(s, w)
		return
	}
	if p := s.playerByID(id); p != nil {
		log.Info().Str("module", "game.presence").Str("room", code).Str("name", p.Name).Msg("player disconnected")
		e.depart(s, p, true)
	}
}

// AdminLeaving is the voluntary variant of an admin disconnect: the
// seat is archived and the hand-off cascade runs immediately instead of
// waiting for the transport to notice.
func (e *Engine) AdminLeaving(code string, id domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	p, err := e.adminOf(s, id)
	if err != nil {
		return err
	}
	e.depart(s, p, true)
	return nil
}

// RemovePlayer evicts a non-admin player at the admin's request. The
// target gets a distinct notice; the seat is not archived, so the name
// frees up immediately.
func (e *Engine) RemovePlayer(code string, requester, target domain.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessionOf(code)
	if err != nil {
		return err
	}
	if _, err := e.adminOf(s, requester); err != nil {
		return err
	}

	if w := s.waitingByID(target); w != nil {
		send(s.conns[target], removedEvent{Type: "removed", Message: "You were removed by the admin."})
		e.dropWaiting(s, w)
		return nil
	}
	p := s.playerByID(target)
	if p == nil {
		return domain.ErrPlayerNotFound
	}
	if p.IsAdmin {
		return domain.ErrCannotRemoveAdmin
	}
	send(s.conns[target], removedEvent{Type: "removed", Message: "You were removed by the admin."})
	e.depart(s, p, false)
	return nil
}

func (e *Engine) dropWaiting(s *Session, p *domain.Player) {
	for i, w := range s.waiting {
		if w.ID == p.ID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			break
		}
	}
	delete(s.conns, p.ID)
	delete(e.byPlayer, p.ID)
}

// depart removes an active player and runs the churn cascade, in this
// order: empty room is destroyed; a mid-round room below the minimum is
// force-ended; a departing admin hands the seat to the earliest-joined
// survivor, and any in-flight ballot is reconciled the same way as for
// a regular leaver; a departing impostor forces the round to resolve; a
// voter vanishing mid-ballot restarts or re-checks the ballot.
func (e *Engine) depart(s *Session, p *domain.Player, archive bool) {
	for i, cur := range s.players {
		if cur.ID == p.ID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	delete(s.conns, p.ID)
	delete(e.byPlayer, p.ID)
	if archive {
		s.disconnected[p.Name] = archivedPlayer{Score: p.Score, Avatar: p.Avatar}
	}

	s.broadcast(playerLeftEvent{Type: "playerLeft", Player: *p})
	s.broadcast(rosterUpdatedEvent{Type: "rosterUpdated", Players: s.snapshot()})

	switch {
	case len(s.players) == 0:
		e.destroy(s)

	case len(s.players) < domain.MinPlayers && s.state != domain.StateLobby:
		s.broadcast(gameEndedEvent{Type: "gameEnded", Players: s.snapshot(), Reason: "notEnoughPlayers"})
		e.destroy(s)

	case p.IsAdmin:
		e.promoteAdmin(s)
		if s.state == domain.StateVoting || s.state == domain.StateTieBreak {
			e.voterDeparted(s, p.ID)
		}

	case s.round != nil && !s.round.Revealed && s.round.ImpostorID == p.ID:
		e.forceReveal(s, *p, p.Name+" (the impostor) left the game!")

	case s.state == domain.StateVoting || s.state == domain.StateTieBreak:
		e.voterDeparted(s, p.ID)
	}
}

// promoteAdmin hands the admin seat to the earliest-joined survivor and
// ships them a fresh settings/categories snapshot.
func (e *Engine) promoteAdmin(s *Session) {
	next := s.players[0]
	next.IsAdmin = true
	log.Info().Str("module", "game.presence").Str("room", s.code).Str("name", next.Name).Msg("admin seat transferred")
	s.broadcast(adminChangedEvent{
		Type:       "adminChanged",
		NewAdmin:   *next,
		Players:    s.snapshot(),
		Settings:   s.settings,
		Categories: e.words.List(),
	})
}

func validName(name string) (string, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return "", domain.ErrEmptyName
	}
	if len(name) > domain.MaxNameLen {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

// pickAvatar honors the requested avatar when free, otherwise draws a
// random unused one, falling back to any catalog entry in the
// degenerate everything-taken case.
func (e *Engine) pickAvatar(s *Session, requested string) domain.Avatar {
	used := s.usedAvatarFiles()
	if requested != "" && !used[requested] {
		return domain.AvatarByFile(requested)
	}
	free := make([]domain.Avatar, 0, len(domain.Avatars))
	for _, a := range domain.Avatars {
		if !used[a.File] {
			free = append(free, a)
		}
	}
	if len(free) == 0 {
		return domain.Avatars[e.rng.Intn(len(domain.Avatars))]
	}
	return free[e.rng.Intn(len(free))]
}
