package websocket

import (
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/editor/bridge"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// SurfaceAttacher is the part of the editor controller that owns the surface.
type SurfaceAttacher interface {
	AttachSurface(s bridge.Surface)
	DetachSurface(s bridge.Surface)
}

// ServeListener streams editor events to one UI client until it disconnects.
func ServeListener(hub *Hub, c *websocket.Conn, userID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	if !hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump(hub.logger)
}

// ServeSurface attaches the connection as the editing surface. It blocks
// until the surface goes away or is replaced.
func ServeSurface(owner SurfaceAttacher, b *bridge.Bridge, c *websocket.Conn, log logger.ILogger) {
	surface := NewSurfaceClient(c, log)
	owner.AttachSurface(surface)
	defer owner.DetachSurface(surface)

	go surface.writePump()
	surface.readPump(b.Dispatch)
}
