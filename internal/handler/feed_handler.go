package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/service"
)

// FeedHandler streams the audit ledger live over a websocket.
type FeedHandler struct {
	feed   service.ActivityFeedService
	logger zerolog.Logger
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(feed service.ActivityFeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register wires the websocket upgrade route.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/feed", websocket.New(h.handleConnection))
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	id, entries := h.feed.Subscribe()
	defer h.feed.Unsubscribe(id)
	defer conn.Close()

	// Reader loop detects client disconnect; inbound payloads are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-entries:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug().Err(err).Msg("feed subscriber dropped")
				return
			}
		case <-done:
			return
		}
	}
}
