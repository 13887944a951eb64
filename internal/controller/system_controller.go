package controller

import (
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(app *fiber.App, api fiber.Router)
	Banner(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	LLMInfo(ctx *fiber.Ctx) error
	ModelStatus(ctx *fiber.Ctx) error
}

type systemController struct {
	systemService service.ISystemService
}

func NewSystemController(systemService service.ISystemService) ISystemController {
	return &systemController{
		systemService: systemService,
	}
}

// RegisterRoutes takes the app as well: the banner and /health live at the
// root, outside the /api prefix, so load balancers can probe them directly.
func (c *systemController) RegisterRoutes(app *fiber.App, api fiber.Router) {
	app.Get("/", c.Banner)
	app.Get("/health", c.Health)
	api.Get("/llm-info", c.LLMInfo)
	api.Get("/model-status", c.ModelStatus)
}

func (c *systemController) Banner(ctx *fiber.Ctx) error {
	return ctx.JSON(c.systemService.Banner())
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	res, err := c.systemService.Health(ctx.Context())
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return ctx.Status(status).JSON(res)
}

func (c *systemController) LLMInfo(ctx *fiber.Ctx) error {
	res, err := c.systemService.LLMInfo(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get llm info", res))
}

func (c *systemController) ModelStatus(ctx *fiber.Ctx) error {
	res := c.systemService.ModelStatus(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get model status", res))
}
