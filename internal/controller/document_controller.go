package controller

import (
	"io"
	"net/url"

	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	UploadText(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Content(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Templates(ctx *fiber.Ctx) error
	Template(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("/upload", c.Upload)
	h.Post("/upload-text", c.UploadText)
	h.Get("", c.List)
	h.Get("/count", c.Count)
	h.Post("/search", c.Search)
	h.Get("/templates", c.Templates)
	h.Get("/templates/:id", c.Template)
	h.Get("/content/:filename", c.Content)
	h.Delete("/reset", c.Reset)
	h.Delete("/:filename", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.NewBadRequestError("missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return serverutils.NewBadRequestError("could not read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return serverutils.NewBadRequestError("could not read uploaded file")
	}

	res, err := c.documentService.UploadFile(ctx.Context(), fileHeader.Filename, content)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) UploadText(ctx *fiber.Ctx) error {
	var req dto.UploadTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.UploadText(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.documentService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Content(ctx *fiber.Ctx) error {
	filename, err := decodeParam(ctx, "filename")
	if err != nil {
		return err
	}

	res, err := c.documentService.Content(ctx.Context(), filename)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document content", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	filename, err := decodeParam(ctx, "filename")
	if err != nil {
		return err
	}

	res, err := c.documentService.Delete(ctx.Context(), filename)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}

func (c *documentController) Reset(ctx *fiber.Ctx) error {
	if err := c.documentService.Reset(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset documents", nil))
}

func (c *documentController) Count(ctx *fiber.Ctx) error {
	res, err := c.documentService.Count(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success count chunks", res))
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

func (c *documentController) Templates(ctx *fiber.Ctx) error {
	res, err := c.documentService.Templates(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list templates", res))
}

func (c *documentController) Template(ctx *fiber.Ctx) error {
	id, err := decodeParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.Template(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get template", res))
}

// decodeParam reads a path parameter with URL escaping applied. Filenames can
// contain multibyte characters, which arrive percent-encoded.
func decodeParam(ctx *fiber.Ctx, name string) (string, error) {
	decoded, err := url.QueryUnescape(ctx.Params(name))
	if err != nil || decoded == "" {
		return "", serverutils.NewBadRequestError("invalid " + name)
	}
	return decoded, nil
}
