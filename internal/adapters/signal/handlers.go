package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

// Per-handler payload decoding plus error translation. The engine
// emits all success events itself; this layer only turns returned
// sentinels into outbound error events for the requester.

func (ctl *Controller) sendError(c *wsConn, msg string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "message": msg})
}

func (ctl *Controller) report(c *wsConn, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, domain.ErrNameTaken) {
		ctl.sendJSON(c, map[string]any{"type": "nameTaken", "message": err.Error()})
		return
	}
	ctl.sendError(c, err.Error())
}

func decode[T any](ctl *Controller, c *wsConn, data []byte) (T, bool) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.sendError(c, "bad payload")
		return p, false
	}
	return p, true
}

func (ctl *Controller) handleCreateRoom(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Name            string `json:"name"`
		RequestedAvatar string `json:"requestedAvatar"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.CreateRoom(id, c, p.Name, p.RequestedAvatar))
}

func (ctl *Controller) handleCheckCode(c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.CheckCode(c, p.Code))
}

func (ctl *Controller) handleJoin(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code            string `json:"code"`
		Name            string `json:"name"`
		RequestedAvatar string `json:"requestedAvatar"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.Join(p.Code, id, c, p.Name, p.RequestedAvatar))
}

func (ctl *Controller) handleRejoin(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.Rejoin(p.Code, id, c, p.Name))
}

func (ctl *Controller) handleStartRound(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.StartRound(p.Code, id))
}

func (ctl *Controller) handleSkipWord(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.SkipWord(p.Code, id))
}

func (ctl *Controller) handleChangeSettings(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code     string               `json:"code"`
		Settings domain.SettingsPatch `json:"settings"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.ChangeSettings(p.Code, id, p.Settings))
}

func (ctl *Controller) handleVote(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code   string          `json:"code"`
		Target domain.PlayerID `json:"target"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.Vote(p.Code, id, p.Target))
}

func (ctl *Controller) handleTieBreakVote(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code   string          `json:"code"`
		Target domain.PlayerID `json:"target"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.TieBreakVote(p.Code, id, p.Target))
}

func (ctl *Controller) handleEndGame(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.EndGame(p.Code, id))
}

func (ctl *Controller) handleAdminLeaving(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code string `json:"code"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.AdminLeaving(p.Code, id))
}

func (ctl *Controller) handleRemovePlayer(id domain.PlayerID, c *wsConn, data []byte) {
	p, ok := decode[struct {
		Code   string          `json:"code"`
		Target domain.PlayerID `json:"target"`
	}](ctl, c, data)
	if !ok {
		return
	}
	ctl.report(c, ctl.Engine.RemovePlayer(p.Code, id, p.Target))
}
