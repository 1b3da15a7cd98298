package controller

import (
	"notefiber-editor-be/internal/dto"
	"notefiber-editor-be/internal/pkg/serverutils"
	"notefiber-editor-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEditorController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	OpenNew(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	Theme(ctx *fiber.Ctx) error
	Title(ctx *fiber.Ctx) error
	Unlock(ctx *fiber.Ctx) error
	ListNotes(ctx *fiber.Ctx) error
	DeleteNote(ctx *fiber.Ctx) error
	CreateVault(ctx *fiber.Ctx) error
	LockVault(ctx *fiber.Ctx) error
	LockNote(ctx *fiber.Ctx) error
}

type editorController struct {
	editorService service.IEditorService
	vaultService  service.IVaultService
	jwtSecret     string
}

func NewEditorController(editorService service.IEditorService, vaultService service.IVaultService, jwtSecret string) IEditorController {
	return &editorController{
		editorService: editorService,
		vaultService:  vaultService,
		jwtSecret:     jwtSecret,
	}
}

func (c *editorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/editor/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("state", c.State)
	h.Post("open/:id", c.Open)
	h.Post("open-new", c.OpenNew)
	h.Post("close", c.Close)
	h.Post("retry", c.Retry)
	h.Post("theme", c.Theme)
	h.Post("title", c.Title)
	h.Post("unlock", c.Unlock)
	h.Get("notes", c.ListNotes)
	h.Delete("notes/:id", c.DeleteNote)
	h.Post("vaults", c.CreateVault)
	h.Post("notes/:id/lock", c.LockNote)
	h.Post("vaults/:id/lock", c.LockVault)
}

func (c *editorController) State(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get editor state", c.editorService.State()))
}

func (c *editorController) Open(ctx *fiber.Ctx) error {
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.editorService.Open(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success open note", c.editorService.State()))
}

func (c *editorController) OpenNew(ctx *fiber.Ctx) error {
	if err := c.editorService.OpenNew(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success open new note", c.editorService.State()))
}

func (c *editorController) Close(ctx *fiber.Ctx) error {
	if err := c.editorService.Close(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success close note", nil))
}

func (c *editorController) Retry(ctx *fiber.Ctx) error {
	if err := c.editorService.Retry(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reopen note", c.editorService.State()))
}

func (c *editorController) Theme(ctx *fiber.Ctx) error {
	var req dto.ThemeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.editorService.UpdateTheme(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success update theme", nil))
}

func (c *editorController) Title(ctx *fiber.Ctx) error {
	var req dto.SetTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.editorService.SetTitle(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success set title", nil))
}

func (c *editorController) Unlock(ctx *fiber.Ctx) error {
	var req dto.UnlockRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.vaultService.SubmitPassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success unlock vault", nil))
}

func (c *editorController) ListNotes(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.BadRequest("Invalid query", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editorService.ListNotes(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *editorController) DeleteNote(ctx *fiber.Ctx) error {
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.editorService.DeleteNote(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete note", dto.DeleteNoteResponse{Id: id}))
}

func (c *editorController) CreateVault(ctx *fiber.Ctx) error {
	var req dto.CreateVaultRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.vaultService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create vault", res))
}

// LockNote moves a note into a vault.
func (c *editorController) LockNote(ctx *fiber.Ctx) error {
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.LockNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", nil)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.vaultService.AddNote(ctx.UserContext(), req.VaultId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success lock note", nil))
}

// LockVault drops the vault's unlock grant; its notes prompt again on save.
func (c *editorController) LockVault(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.BadRequest("Invalid vault id", nil)
	}

	c.vaultService.Lock(id)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success lock vault", nil))
}

func noteIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("Invalid note id", nil)
	}
	return id, nil
}
