package controller

import (
	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type settingController struct {
	settingService service.ISettingService
}

func NewSettingController(settingService service.ISettingService) ISettingController {
	return &settingController{
		settingService: settingService,
	}
}

func (c *settingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings")
	h.Get("", c.Show)
	h.Put("", c.Update)
}

func (c *settingController) Show(ctx *fiber.Ctx) error {
	res, err := c.settingService.Effective(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *settingController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.settingService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update settings", res))
}
