package server

import (
	"notefiber-editor-be/pkg/editor"
	"notefiber-editor-be/pkg/editor/probe"

	"github.com/gofiber/fiber/v2"
)

type snapshotter interface {
	Snapshot() editor.Snapshot
}

type listenerCounter interface {
	Listeners() int
}

type healthResponse struct {
	Status          string `json:"status"`
	Readiness       string `json:"readiness"`
	SurfaceAttached bool   `json:"surface_attached"`
	Editing         bool   `json:"editing"`
	Listeners       int    `json:"listeners"`
}

// healthHandler reports process liveness. An unresponsive surface degrades
// the status but still answers 200: the process itself is fine and a
// replacement surface is expected to attach.
func healthHandler(ed snapshotter, hub listenerCounter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := ed.Snapshot()
		res := healthResponse{
			Status:          "ok",
			Readiness:       snap.Readiness,
			SurfaceAttached: snap.SurfaceAttached,
			Editing:         snap.Editing,
			Listeners:       hub.Listeners(),
		}
		if snap.Readiness == probe.Unresponsive.String() {
			res.Status = "degraded"
		}
		return c.JSON(res)
	}
}
