package websocket

import "github.com/stemsi/srms/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventConnected Event = "connected"
	EventResult    Event = "result"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// ConnectedResponse greets a client once its subscription is live.
type ConnectedResponse struct {
	Event   Event  `json:"event"`
	Channel string `json:"channel"`
}

// ResultResponse forwards one result mutation to the client.
type ResultResponse struct {
	Event Event             `json:"event"`
	Data  model.ResultEvent `json:"data"`
}
