package handler

import (
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/pkg/serverutils"
	internalWS "notefiber-editor-be/internal/websocket"
	"notefiber-editor-be/pkg/editor/bridge"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// EditorSocketHandler upgrades the two editor websockets: the editing
// surface itself and UI listeners for editor events.
type EditorSocketHandler struct {
	owner     internalWS.SurfaceAttacher
	bridge    *bridge.Bridge
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewEditorSocketHandler(owner internalWS.SurfaceAttacher, b *bridge.Bridge, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EditorSocketHandler {
	return &EditorSocketHandler{
		owner:     owner,
		bridge:    b,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// authenticate checks the handshake token. Browsers cannot set headers on a
// websocket handshake, so the token may come as ?token=.
func (h *EditorSocketHandler) authenticate(c *fiber.Ctx) (uuid.UUID, error) {
	tokenStr := serverutils.BearerToken(c)
	if tokenStr == "" {
		return uuid.Nil, serverutils.Unauthorized("Missing token (Query 'token' or Header 'Authorization')")
	}

	claims, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("EditorSocket", "Invalid token in handshake", map[string]interface{}{"path": c.Path()})
		return uuid.Nil, serverutils.Unauthorized("Invalid token")
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, serverutils.Unauthorized("Token missing user_id")
	}
	return userID, nil
}

// ServeSurface attaches the caller as the editing surface, replacing any
// previous one.
func (h *EditorSocketHandler) ServeSurface(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EditorSocket", "Surface connected", map[string]interface{}{"user_id": userID})
		internalWS.ServeSurface(h.owner, h.bridge, conn, h.logger)
		h.logger.Info("EditorSocket", "Surface disconnected", map[string]interface{}{"user_id": userID})
	})(c)
}

// ServeEvents streams editor events to a UI listener.
func (h *EditorSocketHandler) ServeEvents(c *fiber.Ctx) error {
	userID, err := h.authenticate(c)
	if err != nil {
		return err
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeListener(h.hub, conn, userID)
	})(c)
}

func (h *EditorSocketHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/editor/ws")
	ws.Get("/surface", h.ServeSurface)
	ws.Get("/events", h.ServeEvents)
}
