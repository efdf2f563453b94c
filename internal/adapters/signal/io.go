package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(c *wsConn) {
	pinger := time.NewTicker(ctl.PingPeriod)
	defer pinger.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-pinger.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound messages to the dispatcher. When the read
// loop ends, for whatever reason, the connection counts as a
// transport-level departure and the engine runs its churn handling.
func (ctl *Controller) readPump(id domain.PlayerID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("id", string(id)).Msg("readPump closing")
		c.Close()
		ctl.Engine.Disconnect(id)
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	readWait := ctl.PingPeriod + writeWait
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "signal").Str("id", string(id)).Msg("readPump read error")
			}
			return
		}
		ctl.dispatch(id, c, data)
	}
}

func (ctl *Controller) dispatch(id domain.PlayerID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad payload")
		return
	}

	switch env.Type {
	case "createRoom":
		ctl.handleCreateRoom(id, c, data)
	case "checkCode":
		ctl.handleCheckCode(c, data)
	case "join":
		ctl.handleJoin(id, c, data)
	case "rejoin":
		ctl.handleRejoin(id, c, data)
	case "startRound":
		ctl.handleStartRound(id, c, data)
	case "skipWord":
		ctl.handleSkipWord(id, c, data)
	case "changeSettings":
		ctl.handleChangeSettings(id, c, data)
	case "vote":
		ctl.handleVote(id, c, data)
	case "tieBreakVote":
		ctl.handleTieBreakVote(id, c, data)
	case "endGame":
		ctl.handleEndGame(id, c, data)
	case "adminLeaving":
		ctl.handleAdminLeaving(id, c, data)
	case "removePlayer":
		ctl.handleRemovePlayer(id, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown message type")
		ctl.sendError(c, "unknown message type")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
