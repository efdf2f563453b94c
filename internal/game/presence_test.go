package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Undercover/internal/domain"
)

func TestJoinNormalizesName(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 1)

	conn := &fakeConn{}
	require.NoError(t, e.Join(code, "p2", conn, "  Dana   Lev ", ""))

	s := session(e, code)
	require.Len(t, s.players, 2)
	assert.Equal(t, "Dana Lev", s.players[1].Name)
}

func TestJoinRejectsDuplicateNormalizedName(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 1)

	require.NoError(t, e.Join(code, "p2", &fakeConn{}, "Dana", ""))
	err := e.Join(code, "p3", &fakeConn{}, "  Dana  ", "")
	assert.ErrorIs(t, err, domain.ErrNameTaken)

	// Room state untouched by the rejected join.
	assert.Len(t, session(e, code).players, 2)
}

func TestJoinRejectsInvalidNames(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 1)

	assert.ErrorIs(t, e.Join(code, "p2", &fakeConn{}, "   ", ""), domain.ErrEmptyName)
	assert.ErrorIs(t, e.Join(code, "p3", &fakeConn{}, "abcdefghijklmnopqrstuvwxyz", ""), domain.ErrNameTooLong)
}

func TestJoinCapacityLimit(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 6)

	err := e.Join(code, "p7", &fakeConn{}, "P7", "")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
}

func TestJoinUnknownRoom(t *testing.T) {
	e := newTestEngine(t)
	err := e.Join("9999", "p1", &fakeConn{}, "Dana", "")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestJoinAssignsRequestedAvatarWhenFree(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 1)

	s := session(e, code)
	taken := s.players[0].Avatar.File
	want := ""
	for _, a := range domain.Avatars {
		if a.File != taken {
			want = a.File
			break
		}
	}

	conn := &fakeConn{}
	require.NoError(t, e.Join(code, "p2", conn, "Dana", want))
	assert.Equal(t, want, s.players[1].Avatar.File)
}

func TestJoinAvatarsUniqueAcrossRoom(t *testing.T) {
	e := newTestEngine(t)
	// Everyone requests the same avatar; only one may keep it.
	code, _, _ := makeRoom(t, e, 1)
	for i := 2; i <= 6; i++ {
		id := domain.PlayerID(fmt.Sprintf("p%d", i))
		require.NoError(t, e.Join(code, id, &fakeConn{}, fmt.Sprintf("P%d", i), "avatar1.png"))
	}

	s := session(e, code)
	seen := make(map[string]bool)
	for _, p := range s.players {
		assert.False(t, seen[p.Avatar.File], "avatar %s assigned twice", p.Avatar.File)
		seen[p.Avatar.File] = true
	}
}

func TestJoinMidRoundQueuesUntilLobby(t *testing.T) {
	e := newTestEngine(t)
	code, ids, _ := makeRoom(t, e, 3)
	require.NoError(t, e.StartRound(code, ids[0]))

	conn := &fakeConn{}
	require.NoError(t, e.Join(code, "p4", conn, "P4", ""))

	s := session(e, code)
	assert.Len(t, s.players, 3)
	require.Len(t, s.waiting, 1)
	require.NotNil(t, conn.last("joinQueued"))

	// Resolve the round; the queued player merges in and is notified.
	forceVoting(e, code)
	imp := impostorOf(e, code)
	for _, id := range ids {
		require.NoError(t, e.Vote(code, id, imp))
	}
	assert.Len(t, s.players, 4)
	assert.Empty(t, s.waiting)
	require.NotNil(t, conn.last("joined"))
}

func TestDisconnectRejoinRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 4)

	s := session(e, code)
	s.players[3].Score = 7
	avatar := s.players[3].Avatar

	e.Disconnect("p4")
	require.Len(t, s.players, 3)

	conn := &fakeConn{}
	require.NoError(t, e.Rejoin(code, "p4-new", conn, "P4"))
	require.Len(t, s.players, 4)
	restored := s.playerByID("p4-new")
	require.NotNil(t, restored)
	assert.Equal(t, 7, restored.Score)
	assert.Equal(t, avatar, restored.Avatar)
	assert.False(t, restored.IsAdmin)
}

func TestRejoinWithoutArchiveFails(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 3)

	err := e.Rejoin(code, "px", &fakeConn{}, "Nobody")
	assert.ErrorIs(t, err, domain.ErrNoDisconnectedSeat)
}

func TestJoinRestoresDisconnectedSeatByName(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 4)

	s := session(e, code)
	s.players[2].Score = 3
	e.Disconnect("p3")

	// A plain join with the archived name is a rejoin, uniqueness checks skipped.
	require.NoError(t, e.Join(code, "p3-new", &fakeConn{}, "P3", ""))
	restored := s.playerByID("p3-new")
	require.NotNil(t, restored)
	assert.Equal(t, 3, restored.Score)
}

func TestAdminDisconnectPromotesEarliestJoined(t *testing.T) {
	e := newTestEngine(t)
	code, _, conns := makeRoom(t, e, 3)

	e.Disconnect("p1")

	s := session(e, code)
	require.Len(t, s.players, 2)
	assert.True(t, s.players[0].IsAdmin)
	assert.Equal(t, "P2", s.players[0].Name)

	changed := conns[1].last("adminChanged")
	require.NotNil(t, changed)
	assert.Equal(t, "P2", changed["newAdmin"].(map[string]any)["name"])
	assert.Contains(t, changed, "settings")
	assert.Contains(t, changed, "categories")
}

func TestAdminLeavingVoluntarily(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 4)

	assert.ErrorIs(t, e.AdminLeaving(code, ids[1]), domain.ErrNotAdmin)
	require.NoError(t, e.AdminLeaving(code, ids[0]))

	s := session(e, code)
	require.Len(t, s.players, 3)
	assert.True(t, s.players[0].IsAdmin)
	require.NotNil(t, conns[2].last("adminChanged"))

	// The seat is archived for a later rejoin.
	_, archived := s.disconnected["P1"]
	assert.True(t, archived)
}

func TestLastPlayerLeavingDestroysRoom(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 1)

	e.Disconnect("p1")
	assert.Equal(t, 0, e.Rooms())
	assert.Nil(t, session(e, code))
}

func TestDropBelowMinimumMidRoundEndsGame(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 3)
	require.NoError(t, e.StartRound(code, ids[0]))

	// The below-minimum check runs before any impostor handling, so it
	// does not matter which non-admin leaves.
	e.Disconnect(ids[2])

	assert.Equal(t, 0, e.Rooms())
	ended := conns[0].last("gameEnded")
	require.NotNil(t, ended)
	assert.Equal(t, "notEnoughPlayers", ended["reason"])
}

func TestImpostorDisconnectForcesResolution(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 4)
	require.NoError(t, e.StartRound(code, ids[0]))

	// An admin impostor would exercise the hand-off branch instead, so
	// redraw until the impostor is a regular player.
	imp := impostorOf(e, code)
	for tries := 0; imp == ids[0]; tries++ {
		require.Less(t, tries, 50, "impostor draw never left the admin")
		require.NoError(t, e.SkipWord(code, ids[0]))
		imp = impostorOf(e, code)
	}

	// A vote is already in; the forced resolution pays it out.
	forceVoting(e, code)
	var voter domain.PlayerID
	for _, id := range ids {
		if id != imp {
			voter = id
			break
		}
	}
	require.NoError(t, e.Vote(code, voter, imp))

	e.Disconnect(imp)

	s := session(e, code)
	assert.Equal(t, domain.StateLobby, s.state)
	resolved := conns[0].last("roundResolved")
	require.NotNil(t, resolved)
	assert.Equal(t, true, resolved["impostorFound"])
	assert.NotEmpty(t, resolved["note"])
	assert.Equal(t, 1, scoreOf(t, e, code, voter))
}

func TestNonVoterDisconnectRestartsBallot(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 5)
	require.NoError(t, e.StartRound(code, ids[0]))
	forceVoting(e, code)

	imp := impostorOf(e, code)
	var voter, leaver domain.PlayerID
	for _, id := range ids[1:] {
		if id == imp {
			continue
		}
		if voter == "" {
			voter = id
		} else if leaver == "" {
			leaver = id
		}
	}
	require.NoError(t, e.Vote(code, voter, imp))

	e.Disconnect(leaver)

	s := session(e, code)
	assert.Equal(t, domain.StateVoting, s.state)
	assert.Empty(t, s.round.Votes, "collected votes must be discarded")
	// forceVoting skips the usual announcement, so the only
	// votingStarted frame is the restart one.
	assert.Len(t, conns[0].byType("votingStarted"), 1)
}

func TestVoterDisconnectKeepsBallotAndResolves(t *testing.T) {
	e := newTestEngine(t)
	code, ids, _ := makeRoom(t, e, 4)
	require.NoError(t, e.StartRound(code, ids[0]))
	forceVoting(e, code)

	imp := impostorOf(e, code)
	var others []domain.PlayerID
	for _, id := range ids {
		if id != imp && id != ids[0] {
			others = append(others, id)
		}
	}
	leaver := others[0]

	// Everyone except one non-leaver voter has voted; the leaver voted too.
	require.NoError(t, e.Vote(code, leaver, imp))
	require.NoError(t, e.Vote(code, others[1], imp))
	if imp != ids[0] {
		require.NoError(t, e.Vote(code, imp, others[1]))
	} else {
		require.NoError(t, e.Vote(code, ids[0], others[1]))
	}
	// Missing: one player. Now the leaver goes; their entry is dropped and
	// the ballot re-checks completion over the reduced roster.
	e.Disconnect(leaver)

	s := session(e, code)
	require.NotNil(t, s.round)
	_, stillThere := s.round.Votes[leaver]
	assert.False(t, stillThere)
}

func TestAdminDepartureMidBallotRestarts(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 4)
	require.NoError(t, e.StartRound(code, ids[0]))
	forceVoting(e, code)

	// Every non-admin has voted; the admin leaving makes the ballot
	// formally complete, so it must not be left hanging in Voting.
	for _, id := range ids[1:] {
		require.NoError(t, e.Vote(code, id, ids[1]))
	}
	e.Disconnect(ids[0])

	s := session(e, code)
	require.Equal(t, domain.StateVoting, s.state)
	assert.Empty(t, s.round.Votes, "the non-voter's departure voids the ballot")
	assert.True(t, s.players[0].IsAdmin)
	assert.Len(t, conns[1].byType("votingStarted"), 1)

	// The reduced roster can still vote the round to a close.
	target := s.players[0].ID
	voters := make([]domain.PlayerID, 0, len(s.players))
	for _, p := range s.players {
		voters = append(voters, p.ID)
	}
	for _, id := range voters {
		require.NoError(t, e.Vote(code, id, target))
	}
	assert.Equal(t, domain.StateLobby, s.state)
	require.NotNil(t, conns[1].last("roundResolved"))
}

func TestAdminDepartureDropsOwnVote(t *testing.T) {
	e := newTestEngine(t)
	code, ids, _ := makeRoom(t, e, 5)
	require.NoError(t, e.StartRound(code, ids[0]))
	forceVoting(e, code)

	require.NoError(t, e.Vote(code, ids[0], ids[1]))
	require.NoError(t, e.Vote(code, ids[1], ids[2]))
	require.NoError(t, e.Vote(code, ids[2], ids[1]))

	e.Disconnect(ids[0])

	s := session(e, code)
	require.Equal(t, domain.StateVoting, s.state)
	_, kept := s.round.Votes[ids[0]]
	assert.False(t, kept, "departed admin's entry is dropped")
	assert.Len(t, s.round.Votes, 2, "other votes survive the departure")
}

func TestJoinQueueCountsAgainstCapacity(t *testing.T) {
	e := newTestEngine(t)
	code, ids, _ := makeRoom(t, e, 5)
	require.NoError(t, e.StartRound(code, ids[0]))

	require.NoError(t, e.Join(code, "p6", &fakeConn{}, "P6", ""))
	assert.ErrorIs(t, e.Join(code, "p7", &fakeConn{}, "P7", ""), domain.ErrRoomFull)
	assert.ErrorIs(t, e.CheckCode(&fakeConn{}, code), domain.ErrRoomFull)

	// Resolving the round merges exactly up to the cap.
	forceVoting(e, code)
	imp := impostorOf(e, code)
	for _, id := range ids {
		require.NoError(t, e.Vote(code, id, imp))
	}
	assert.Len(t, session(e, code).players, 6)
}

func TestRemovePlayer(t *testing.T) {
	e := newTestEngine(t)
	code, ids, conns := makeRoom(t, e, 4)

	t.Run("non-admin cannot remove", func(t *testing.T) {
		assert.ErrorIs(t, e.RemovePlayer(code, ids[1], ids[2]), domain.ErrNotAdmin)
	})

	t.Run("admin cannot be removed", func(t *testing.T) {
		assert.ErrorIs(t, e.RemovePlayer(code, ids[0], ids[0]), domain.ErrCannotRemoveAdmin)
	})

	t.Run("admin evicts a player", func(t *testing.T) {
		require.NoError(t, e.RemovePlayer(code, ids[0], ids[3]))
		s := session(e, code)
		assert.Len(t, s.players, 3)
		require.NotNil(t, conns[3].last("removed"))
		// Eviction is not archival: the name frees up for a fresh join.
		_, archived := s.disconnected["P4"]
		assert.False(t, archived)
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.ErrorIs(t, e.RemovePlayer(code, ids[0], "ghost"), domain.ErrPlayerNotFound)
	})
}

func TestExactlyOneAdminInvariant(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 5)

	admins := func() int {
		n := 0
		for _, p := range session(e, code).players {
			if p.IsAdmin {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 1, admins())
	e.Disconnect("p1")
	assert.Equal(t, 1, admins())
	e.Disconnect("p3")
	assert.Equal(t, 1, admins())
}

func TestCheckCode(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 3)

	conn := &fakeConn{}
	require.NoError(t, e.CheckCode(conn, code))
	ev := conn.last("codeValidated")
	require.NotNil(t, ev)
	assert.Equal(t, false, ev["inProgress"])
	assert.Equal(t, "lobby", ev["state"])
	assert.Contains(t, ev, "assignedAvatar")

	bad := "0000"
	if code == bad {
		bad = "0001"
	}
	assert.ErrorIs(t, e.CheckCode(conn, bad), domain.ErrRoomNotFound)
}

func TestCheckCodeFullRoom(t *testing.T) {
	e := newTestEngine(t)
	code, _, _ := makeRoom(t, e, 6)
	assert.ErrorIs(t, e.CheckCode(&fakeConn{}, code), domain.ErrRoomFull)
}
