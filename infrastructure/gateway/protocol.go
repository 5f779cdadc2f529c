package gateway

import (
	"encoding/json"
	"rosterhub/domain/chat"
)

// Subprotocol is the WebSocket subprotocol negotiated with clients.
const Subprotocol = "graphql-transport-ws"

// Message types of the graphql-transport-ws framing.
const (
	TypeConnectionInit = "connection_init"
	TypeConnectionAck  = "connection_ack"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeSubscribe      = "subscribe"
	TypeNext           = "next"
	TypeError          = "error"
	TypeComplete       = "complete"
)

// Close codes sent by the gateway.
const (
	CloseBadRequest          = 4400
	CloseUnauthorized        = 4401
	CloseForbidden           = 4403
	CloseInitTimeout         = 4408
	CloseSubscriberExists    = 4409
	CloseTooManyInitRequests = 4429
)

// Message is one frame exchanged on the socket, in both directions.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload is the body of a subscribe frame.
type SubscribePayload struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// NextPayload wraps a chat under its subscription field, as a GraphQL result.
type NextPayload struct {
	Data map[string]chat.Chat `json:"data"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}
