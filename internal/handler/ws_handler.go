package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/metrics"
	"github.com/stemsi/srms/internal/middleware"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/service"
	ws "github.com/stemsi/srms/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams result events to connected admins.
type WSHandler struct {
	events   *service.EventService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(events *service.EventService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		events:   events,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ResultStream godoc
// WS /ws/v1/results/stream?token=
// Forwards every result mutation published on the events channel.
func (h *WSHandler) ResultStream(c *gin.Context) {
	claims := middleware.GetClaims(c)

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.events.Subscribe(ctx)
	defer sub.Close()

	// Wait for the subscription confirmation so no event slips past between
	// the greeting and the first receive.
	if _, err := sub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Msg("Subscribe to result events failed")
		_ = conn.WriteError("stream unavailable")
		return
	}

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	wsLog := h.log.With().Str("user_id", claims.UserID).Logger()
	wsLog.Info().Msg("Stream client connected")

	_ = conn.WriteTyped(ws.ConnectedResponse{
		Event:   ws.EventConnected,
		Channel: config.CacheKey.ResultEventsChannel(),
	})

	go h.forward(ctx, conn, sub.Channel(), wsLog)

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// forward relays PubSub payloads until ctx is cancelled or the channel closes.
func (h *WSHandler) forward(ctx context.Context, conn *ws.Conn, ch <-chan *redis.Message, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var evt model.ResultEvent
			if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
				log.Warn().Err(err).Msg("Dropping malformed result event")
				continue
			}
			if err := conn.WriteTyped(ws.ResultResponse{Event: ws.EventResult, Data: evt}); err != nil {
				log.Debug().Err(err).Msg("Stream write failed")
				return
			}
		}
	}
}
