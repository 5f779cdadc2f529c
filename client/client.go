// Package client is the RosterHub chat client: it fetches the history once,
// keeps a live subscription to chatCreated and chatSeen(to: me) and feeds a
// projection.Assembler with everything it receives.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"rosterhub/domain/chat"
	"rosterhub/infrastructure/gateway"
	"rosterhub/projection"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	subscriptionCreated = "created"
	subscriptionSeen    = "seen"
)

type Config struct {
	BaseURL        string
	OrganizationID string
	Timeout        time.Duration
}

// Session is the identity returned by register and login.
type Session struct {
	Token     string `json:"token"`
	ProfileID string `json:"profileId"`
	Name      string `json:"name"`
}

// Update is emitted for every live event merged into the assembler.
type Update struct {
	Peer    string
	Created *chat.Chat
	Seen    *chat.Chat
}

type Client struct {
	log     *slog.Logger
	cfg     Config
	http    *http.Client
	session Session

	mu        sync.Mutex
	assembler *projection.Assembler
	ws        *websocket.Conn
	writeMu   sync.Mutex
}

func New(log *slog.Logger, cfg Config) *Client {
	return &Client{
		log:  log,
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Register creates the profile, joins the configured organization and keeps the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{
		"name": name, "email": email, "password": password, "organizationId": c.cfg.OrganizationID,
	}
	return c.authenticate(ctx, "/api/v1/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, body, &session); err != nil {
		return Session{}, err
	}
	c.mu.Lock()
	c.session = session
	c.assembler = projection.NewAssembler(session.ProfileID, time.Local)
	c.mu.Unlock()
	return session, nil
}

// Assembler returns the conversations of the logged-in profile.
func (c *Client) Assembler() *projection.Assembler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assembler
}

func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// FetchHistory loads every chat of the logged-in profile into the assembler.
// Calling it again after a reconnect merges without duplicates.
func (c *Client) FetchHistory(ctx context.Context) error {
	session, assembler, err := c.current()
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/api/v1/organizations/%s/users/%s/chats",
		url.PathEscape(c.cfg.OrganizationID), url.PathEscape(session.ProfileID))

	var chats []chat.Chat
	if err := c.do(ctx, http.MethodGet, path, nil, &chats); err != nil {
		return err
	}
	assembler.LoadHistory(chats)
	c.log.Debug("History loaded", "count", len(chats))
	return nil
}

// Search runs a full-text search in the organization.
func (c *Client) Search(ctx context.Context, terms string) ([]chat.Chat, error) {
	path := fmt.Sprintf("/api/v1/organizations/%s/chats/search?q=%s",
		url.PathEscape(c.cfg.OrganizationID), url.QueryEscape(terms))
	var chats []chat.Chat
	err := c.do(ctx, http.MethodGet, path, nil, &chats)
	return chats, err
}

// Send shows the chat right away, then replaces the echo with the server
// answer or drops it when the creation failed.
func (c *Client) Send(ctx context.Context, to, content string) (chat.Chat, error) {
	session, assembler, err := c.current()
	if err != nil {
		return chat.Chat{}, err
	}
	echo := chat.Chat{
		ID:        uuid.New(),
		From:      chat.ProfileSummary{ID: session.ProfileID, Name: session.Name},
		To:        chat.ProfileSummary{ID: to},
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	}
	assembler.Echo(echo)

	var created chat.Chat
	err = c.do(ctx, http.MethodPost, "/api/v1/chats", map[string]string{
		"to": to, "content": content, "organizationId": c.cfg.OrganizationID,
	}, &created)
	if err != nil {
		assembler.Discard(echo.ID)
		return chat.Chat{}, err
	}
	assembler.Confirm(echo.ID, created)
	return created, nil
}

// MarkSeen tells the server the conversation with peer has been read.
func (c *Client) MarkSeen(ctx context.Context, peer string) error {
	_, assembler, err := c.current()
	if err != nil {
		return err
	}
	var ok bool
	if err := c.do(ctx, http.MethodPost, "/api/v1/chats/seen", map[string]string{
		"userId": peer, "organizationId": c.cfg.OrganizationID,
	}, &ok); err != nil {
		return err
	}
	assembler.MarkInboundSeen(peer)
	return nil
}

// Subscribe opens the socket, completes the handshake and registers both
// subscriptions. Events are only consumed once Listen runs.
func (c *Client) Subscribe(ctx context.Context) error {
	session, _, err := c.current()
	if err != nil {
		return err
	}
	wsURL := "ws" + strings.TrimPrefix(strings.TrimRight(c.cfg.BaseURL, "/"), "http") + "/graphql/ws"
	dialer := websocket.Dialer{Subprotocols: []string{gateway.Subprotocol}, HandshakeTimeout: c.cfg.Timeout}
	ws, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	init, _ := json.Marshal(map[string]string{"authorization": "Bearer " + session.Token})
	if err := ws.WriteJSON(gateway.Message{Type: gateway.TypeConnectionInit, Payload: init}); err != nil {
		_ = ws.Close()
		return err
	}
	var ack gateway.Message
	if err := ws.ReadJSON(&ack); err != nil {
		_ = ws.Close()
		return fmt.Errorf("connection refused: %w", err)
	}
	if ack.Type != gateway.TypeConnectionAck {
		_ = ws.Close()
		return fmt.Errorf("unexpected %q frame during handshake", ack.Type)
	}

	subscriptions := []gateway.Message{
		subscribeFrame(subscriptionCreated, gateway.SubscribePayload{
			OperationName: gateway.FieldChatCreated,
			Query:         "subscription { chatCreated { id content seen createdAt from { _id name } to { _id name } } }",
			Variables:     map[string]any{"organizationId": c.cfg.OrganizationID},
		}),
		subscribeFrame(subscriptionSeen, gateway.SubscribePayload{
			OperationName: gateway.FieldChatSeen,
			Query:         "subscription ChatSeen($to: ID!) { chatSeen(to: $to) { id content seen createdAt from { _id name } to { _id name } } }",
			Variables:     map[string]any{"to": session.ProfileID, "organizationId": c.cfg.OrganizationID},
		}),
	}
	for _, frame := range subscriptions {
		if err := ws.WriteJSON(frame); err != nil {
			_ = ws.Close()
			return err
		}
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	return nil
}

func subscribeFrame(id string, payload gateway.SubscribePayload) gateway.Message {
	data, _ := json.Marshal(payload)
	return gateway.Message{ID: id, Type: gateway.TypeSubscribe, Payload: data}
}

// Listen merges live events until ctx is done or the socket closes.
// Delivery is at most once: after an error, reconnect and FetchHistory again.
func (c *Client) Listen(ctx context.Context, updates chan<- Update) error {
	c.mu.Lock()
	ws, assembler := c.ws, c.assembler
	c.mu.Unlock()
	if ws == nil {
		return fmt.Errorf("not subscribed")
	}
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	for {
		var msg gateway.Message
		if err := ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch msg.Type {
		case gateway.TypePing:
			if err := c.write(ws, gateway.Message{Type: gateway.TypePong}); err != nil {
				return err
			}
		case gateway.TypeError:
			c.log.Warn("Subscription error", "subscription_id", msg.ID, "payload", string(msg.Payload))
		case gateway.TypeComplete:
			return fmt.Errorf("subscription %s completed by server", msg.ID)
		case gateway.TypeNext:
			update, ok := c.apply(assembler, msg)
			if ok && updates != nil {
				select {
				case updates <- update:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (c *Client) apply(assembler *projection.Assembler, msg gateway.Message) (Update, bool) {
	var payload gateway.NextPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.log.Warn("Malformed next frame", "error", err)
		return Update{}, false
	}
	switch msg.ID {
	case subscriptionCreated:
		created := payload.Data[gateway.FieldChatCreated]
		// Broad fan-out: chats between other members are dropped here
		if !assembler.ApplyCreated(created) {
			return Update{}, false
		}
		return Update{Peer: created.PeerOf(assembler.ViewerID()), Created: &created}, true
	case subscriptionSeen:
		receipt := payload.Data[gateway.FieldChatSeen]
		if assembler.ApplySeen(receipt) == 0 {
			return Update{}, false
		}
		return Update{Peer: receipt.From.ID, Seen: &receipt}, true
	default:
		return Update{}, false
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()
	if ws == nil {
		return nil
	}
	_ = c.write(ws, gateway.Message{ID: subscriptionCreated, Type: gateway.TypeComplete})
	_ = c.write(ws, gateway.Message{ID: subscriptionSeen, Type: gateway.TypeComplete})
	return ws.Close()
}

// write serializes frames, the socket allows a single concurrent writer.
func (c *Client) write(ws *websocket.Conn, msg gateway.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteJSON(msg)
}

func (c *Client) current() (Session, *projection.Assembler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Token == "" {
		return Session{}, nil, fmt.Errorf("not logged in")
	}
	return c.session, c.assembler, nil
}

// do sends a JSON request and decodes the data of the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.Lock()
	token := c.session.Token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s %s: unreadable response (%d): %w", method, path, resp.StatusCode, err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return &APIError{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
		}
		return &APIError{Status: resp.StatusCode, Code: "UNKNOWN"}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// APIError is a failure reported by the server envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}
