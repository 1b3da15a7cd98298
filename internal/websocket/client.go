package websocket

import (
	"notefiber-editor-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const maxListenerFrame = 512

// Client is one UI listener on the editor event stream.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// UserID comes from the handshake token and is only used for logging.
	UserID uuid.UUID

	// Send is closed by the hub on unregister.
	Send chan []byte
}

// readPump only keeps the connection alive; listeners never talk back.
func (c *Client) readPump(log logger.ILogger) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	if err := readLoop(c.Conn, maxListenerFrame, nil); unexpectedClose(err) {
		log.Warn("Hub", "Listener closed unexpectedly", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	writeLoop(c.Conn, c.Send, nil)
}
