package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Undercover/internal/domain"
	"github.com/dkeye/Undercover/internal/words"
)

// fakeConn records every frame the engine pushes to one connection.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) events() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var ev map[string]any
		if err := json.Unmarshal(f, &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) byType(typ string) []map[string]any {
	var out []map[string]any
	for _, ev := range c.events() {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) last(typ string) map[string]any {
	evs := c.byType(typ)
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

func newTestCatalog(t *testing.T) *words.Catalog {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"animals.json": `{"categoryName":"Animals","words":["elephant","penguin","giraffe"]}`,
		"food.json":    `{"categoryName":"Food","words":["pizza","sushi","falafel"]}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	catalog, err := words.Load(dir)
	require.NoError(t, err)
	return catalog
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	all := append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New(newTestCatalog(t), all...)
}

// makeRoom creates a room with n players p1..pn; p1 is the admin.
func makeRoom(t *testing.T, e *Engine, n int) (code string, ids []domain.PlayerID, conns []*fakeConn) {
	t.Helper()
	for i := 1; i <= n; i++ {
		ids = append(ids, domain.PlayerID(fmt.Sprintf("p%d", i)))
		conns = append(conns, &fakeConn{})
	}
	require.NoError(t, e.CreateRoom(ids[0], conns[0], "P1", ""))
	created := conns[0].last("roomCreated")
	require.NotNil(t, created)
	code = created["code"].(string)
	for i := 1; i < n; i++ {
		require.NoError(t, e.Join(code, ids[i], conns[i], fmt.Sprintf("P%d", i+1), ""))
	}
	return code, ids, conns
}

func session(e *Engine, code string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, _ := e.rooms.Get(code)
	return s
}

// forceVoting skips the discussion countdown so ballot tests stay
// deterministic without sleeping.
func forceVoting(e *Engine, code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.rooms.Get(code)
	if !ok {
		return
	}
	s.stopCountdown()
	s.state = domain.StateVoting
}

func impostorOf(e *Engine, code string) domain.PlayerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, _ := e.rooms.Get(code)
	return s.round.ImpostorID
}

func scoreOf(t *testing.T, e *Engine, code string, id domain.PlayerID) int {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.rooms.Get(code)
	require.True(t, ok)
	p := s.playerByID(id)
	require.NotNil(t, p)
	return p.Score
}
