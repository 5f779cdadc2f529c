package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"rosterhub/auth"
	"rosterhub/contract"
	"rosterhub/domain/chat"
	"rosterhub/domain/event"
	"rosterhub/errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type connection struct {
	id     uuid.UUID
	gw     *Gateway
	ws     *websocket.Conn
	log    *slog.Logger
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	wg        sync.WaitGroup

	mu        sync.Mutex
	acked     bool
	profileID string
	subs      map[string]contract.ISubscription
}

func (c *connection) readPump() {
	cfg := c.gw.cfg
	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Debug("WebSocket read stopped", "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
		c.handle(data)
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(c.gw.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.gw.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("WebSocket write failed", "error", err)
				c.closeConn()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.gw.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeConn()
				return
			}
		}
	}
}

func (c *connection) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.closeWith(CloseBadRequest, "Invalid message received")
		return
	}

	switch msg.Type {
	case TypeConnectionInit:
		c.init(msg.Payload)
	case TypePing:
		c.enqueue(Message{Type: TypePong})
	case TypePong:
	case TypeSubscribe:
		c.subscribe(msg.ID, msg.Payload)
	case TypeComplete:
		if c.release(msg.ID) {
			c.log.Debug("Subscription completed by client", "subscription_id", msg.ID)
		}
	default:
		c.closeWith(CloseBadRequest, fmt.Sprintf("Invalid message type %q", msg.Type))
	}
}

func (c *connection) init(payload json.RawMessage) {
	c.mu.Lock()
	already := c.acked
	c.mu.Unlock()
	if already {
		c.closeWith(CloseTooManyInitRequests, "Too many initialisation requests")
		return
	}

	token, ok := auth.BearerToken(authorizationOf(payload))
	if !ok {
		c.closeWith(CloseForbidden, "Forbidden")
		return
	}
	claims, err := c.gw.tokens.Validate(token)
	if err != nil {
		c.log.Debug("Connection init rejected", "error", err)
		c.closeWith(CloseForbidden, "Forbidden")
		return
	}

	c.mu.Lock()
	c.acked = true
	c.profileID = claims.ProfileID
	c.mu.Unlock()
	c.log.Debug("Connection acknowledged", "profile_id", claims.ProfileID)
	c.enqueue(Message{Type: TypeConnectionAck})
}

// authorizationOf reads the authorization entry of a connection_init payload,
// whatever its key casing.
func authorizationOf(payload json.RawMessage) string {
	var params map[string]any
	if len(payload) == 0 || json.Unmarshal(payload, &params) != nil {
		return ""
	}
	for k, v := range params {
		if strings.EqualFold(k, "authorization") {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}

func (c *connection) subscribe(id string, payload json.RawMessage) {
	c.mu.Lock()
	acked, viewer := c.acked, c.profileID
	c.mu.Unlock()
	if !acked {
		c.closeWith(CloseUnauthorized, "Unauthorized")
		return
	}
	if id == "" {
		c.closeWith(CloseBadRequest, "Subscription id is required")
		return
	}

	var p SubscribePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.closeWith(CloseBadRequest, "Invalid subscribe payload")
		return
	}
	op, err := parseOperation(p, viewer, c.gw.cfg.ScopeChatCreated)
	if err != nil {
		c.sendError(id, err)
		return
	}

	c.mu.Lock()
	if _, exists := c.subs[id]; exists {
		c.mu.Unlock()
		c.closeWith(CloseSubscriberExists, fmt.Sprintf("Subscriber for %s already exists", id))
		return
	}
	sub, err := c.gw.bus.Subscribe(c.ctx, op.topic)
	if err != nil {
		c.mu.Unlock()
		c.sendError(id, err)
		return
	}
	c.subs[id] = sub
	c.mu.Unlock()

	c.log.Debug("Subscription opened", "subscription_id", id, "field", op.field)
	c.wg.Add(1)
	go c.forward(id, sub, op)
}

// forward pushes the accepted events of one subscription to the writer.
func (c *connection) forward(id string, sub contract.ISubscription, op operation) {
	defer c.wg.Done()
	for evt := range sub.Events() {
		if !op.accepts(evt) {
			continue
		}
		if !c.enqueueNext(id, op.field, evt) {
			break
		}
	}
	// Still registered means the bus ended it, not the client
	if c.release(id) {
		c.enqueue(Message{ID: id, Type: TypeComplete})
	}
}

func (c *connection) enqueueNext(id, field string, evt event.Event) bool {
	payload, err := json.Marshal(NextPayload{Data: map[string]chat.Chat{field: evt.Chat}})
	if err != nil {
		c.log.Error("Failed to encode event", "subscription_id", id, "error", err)
		return true
	}
	return c.enqueue(Message{ID: id, Type: TypeNext, Payload: payload})
}

func (c *connection) sendError(id string, err error) {
	code := errorCode(err)
	payload, _ := json.Marshal([]GraphQLError{{
		Message:    err.Error(),
		Extensions: map[string]any{"code": code},
	}})
	c.enqueue(Message{ID: id, Type: TypeError, Payload: payload})
}

func errorCode(err error) string {
	if stderrors.Is(err, errors.ErrUnknownOperation) || stderrors.Is(err, errors.ErrInvalidInput) {
		return errors.CodeBadUserInput
	}
	return errors.CodeInternal
}

// enqueue hands a frame to the writer. It reports false once the connection is closing.
func (c *connection) enqueue(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("Failed to encode frame", "type", msg.Type, "error", err)
		return false
	}
	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// release closes the bus subscription registered under id, if any.
func (c *connection) release(id string) bool {
	c.mu.Lock()
	sub, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()
	if ok {
		sub.Close()
	}
	return ok
}

func (c *connection) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.log.Debug("Closing connection", "code", code, "reason", reason)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.gw.cfg.WriteWait))
		c.cancel()
		_ = c.ws.Close()
	})
}

func (c *connection) closeConn() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.ws.Close()
	})
}

// shutdown releases every subscription once the reader is gone.
func (c *connection) shutdown() {
	c.closeConn()
	c.mu.Lock()
	ids := make([]string, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.release(id)
	}
	c.wg.Wait()
	c.log.Debug("Connection closed", "released", len(ids))
}

func (c *connection) isAcked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acked
}
