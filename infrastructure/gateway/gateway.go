// Package gateway serves the chatCreated and chatSeen subscriptions over
// WebSocket with the graphql-transport-ws framing.
// Each connection runs one reader, one writer and one forwarding goroutine per
// subscription. Every exit path releases the bus subscriptions it holds.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"rosterhub/auth"
	"rosterhub/contract"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Config struct {
	InitTimeout      time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	MaxMessageSize   int64
	SendBufferSize   int
	ScopeChatCreated bool
}

type Gateway struct {
	log         *slog.Logger
	bus         contract.IBus
	tokens      auth.TokenValidator
	cfg         Config
	upgrader    websocket.Upgrader
	connections atomic.Int64
}

func NewGateway(log *slog.Logger, bus contract.IBus, tokens auth.TokenValidator, cfg Config) *Gateway {
	return &Gateway{
		log:    log,
		bus:    bus,
		tokens: tokens,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{Subprotocol},
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connections returns the number of open sockets.
func (g *Gateway) Connections() int64 {
	return g.connections.Load()
}

// ServeHTTP upgrades the request and blocks until the socket is gone.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	c := &connection{
		id:     id,
		gw:     g,
		log:    g.log.With("connection_id", id),
		ws:     ws,
		send:   make(chan []byte, g.cfg.SendBufferSize),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]contract.ISubscription),
	}

	g.connections.Add(1)
	defer g.connections.Add(-1)

	initTimer := time.AfterFunc(g.cfg.InitTimeout, func() {
		if !c.isAcked() {
			c.closeWith(CloseInitTimeout, "Connection initialisation timeout")
		}
	})
	defer initTimer.Stop()

	go c.writePump()
	c.readPump()
	c.shutdown()
}
