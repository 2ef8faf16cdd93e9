package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/callsync/callsync/internal/app"
	"github.com/callsync/callsync/internal/core"
	"github.com/callsync/callsync/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket side of the signaling channel: one logical
// connection per participant, JSON envelopes dispatched on their type field.
type Controller struct {
	Engine        *app.Engine
	SendBuffer    int
	WriteDeadline time.Duration
}

func NewController(engine *app.Engine, sendBuffer int, writeDeadline time.Duration) *Controller {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	if writeDeadline <= 0 {
		writeDeadline = 5 * time.Second
	}
	return &Controller{Engine: engine, SendBuffer: sendBuffer, WriteDeadline: writeDeadline}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool

	// Set by readPump after a successful join and read only from that
	// goroutine; no lock needed.
	sid domain.SessionID
	uid domain.UserID
}

func (c *wsConn) TrySend(f core.Frame) error {
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
