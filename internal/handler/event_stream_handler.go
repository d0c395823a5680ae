package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/middleware"
	"github.com/noah-isme/gema-submit-api/internal/service"
	"github.com/noah-isme/gema-submit-api/internal/utils"
)

const (
	streamPingInterval = 30 * time.Second
	streamWriteWait    = 10 * time.Second
)

// EventStreamHandler pushes submission lifecycle events over a websocket.
type EventStreamHandler struct {
	stream       service.EventStream
	logger       zerolog.Logger
	pingInterval time.Duration
}

// NewEventStreamHandler constructs the websocket stream handler.
func NewEventStreamHandler(stream service.EventStream, logger zerolog.Logger) *EventStreamHandler {
	return &EventStreamHandler{
		stream:       stream,
		logger:       logger.With().Str("component", "event_stream_handler").Logger(),
		pingInterval: streamPingInterval,
	}
}

// Register binds the upgrade route under the submissions group.
func (h *EventStreamHandler) Register(router fiber.Router) {
	router.Use("/events", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return utils.SendError(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
		}
		if err := h.stream.Authorize(c.UserContext()); err != nil {
			return respondCommonError(c, h.logger, err)
		}
		c.Locals("correlation_id", middleware.GetCorrelationID(c))
		return c.Next()
	})

	router.Get("/events", websocket.New(h.serve))
}

func (h *EventStreamHandler) serve(conn *websocket.Conn) {
	logger := h.logger
	if correlation, ok := conn.Locals("correlation_id").(string); ok && correlation != "" {
		logger = logger.With().Str("correlation_id", correlation).Logger()
	}

	events, cancel := h.stream.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	logger.Info().Msg("event stream connected")
	defer logger.Info().Msg("event stream disconnected")

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("event stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
