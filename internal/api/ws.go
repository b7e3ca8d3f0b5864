package api

import (
	"context"
	"encoding/json"

	"askhub/internal/pubsub"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WSUpgrade gates the websocket route behind a proper upgrade request.
func WSUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WSHandler streams forum lifecycle events to a connected client. Each
// connection gets its own broker subscription; closing the connection or
// shutting the broker down ends the stream.
func WSHandler(broker pubsub.Subscriber[any], logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := broker.Subscribe(ctx)

		// Reads are discarded, but the read loop is what detects the
		// client going away.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to encode broadcast event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("Websocket client disconnected", zap.Error(err))
				return
			}
		}
	})
}
