// Package signal is the websocket adapter: it owns connections and
// their pumps, decodes inbound envelopes and forwards them to the game
// engine. All game state lives on the other side of that boundary.
package signal

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Undercover/internal/config"
	"github.com/dkeye/Undercover/internal/domain"
	"github.com/dkeye/Undercover/internal/game"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Engine     *game.Engine
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(engine *game.Engine, cfg *config.Config) *Controller {
	return &Controller{
		Engine:     engine,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
	}
}

// wsConn wraps one websocket with a buffered outbound queue. TrySend
// never blocks: a full queue means the peer is too slow and the frame
// is dropped.
type wsConn struct {
	conn *websocket.Conn
	send chan game.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f game.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

type avatarCatalogEvent struct {
	Type    string          `json:"type"`
	Avatars []domain.Avatar `json:"avatars"`
}

// HandleWS upgrades the request and runs the connection until the peer
// goes away. Each connection gets a fresh identity; the browser token
// from the cookie session is only carried for log correlation.
func (ctl *Controller) HandleWS(c *gin.Context) {
	token := c.GetString("client_token")
	id := domain.PlayerID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("id", string(id)).Str("ct", token).Msg("new ws connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan game.Frame, 32),
	}
	ctl.sendJSON(conn, avatarCatalogEvent{Type: "avatarCatalog", Avatars: domain.Avatars})

	go ctl.writePump(conn)
	go ctl.readPump(id, conn)
}
