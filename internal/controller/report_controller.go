package controller

import (
	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	CreateUser(ctx *fiber.Ctx) error
	ListUsers(ctx *fiber.Ctx) error
	UpdateUser(ctx *fiber.Ctx) error
	DeleteUser(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ExtractSummary(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{
		reportService: reportService,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/reports")
	h.Post("/users", c.CreateUser)
	h.Get("/users", c.ListUsers)
	h.Put("/users/:id", c.UpdateUser)
	h.Delete("/users/:id", c.DeleteUser)
	h.Post("", c.Upsert)
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/summary", c.ExtractSummary)
}

func (c *reportController) CreateUser(ctx *fiber.Ctx) error {
	var req dto.CreateReportUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.CreateUser(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create report user", res))
}

func (c *reportController) ListUsers(ctx *fiber.Ctx) error {
	res, err := c.reportService.GetAllUsers(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list report users", res))
}

func (c *reportController) UpdateUser(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid user id")
	}

	var req dto.UpdateReportUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.UpdateUser(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update report user", res))
}

func (c *reportController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid user id")
	}

	if err := c.reportService.DeleteUser(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete report user", nil))
}

func (c *reportController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.UpsertReport(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save report", res))
}

func (c *reportController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid report id")
	}

	res, err := c.reportService.GetReport(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get report", res))
}

func (c *reportController) List(ctx *fiber.Ctx) error {
	var filter service.ReportFilter

	if raw := ctx.Query("user_id"); raw != "" {
		userId, err := uuid.Parse(raw)
		if err != nil {
			return serverutils.NewBadRequestError("invalid user_id filter")
		}
		filter.ReportUserId = &userId
	}
	if raw := ctx.Query("date"); raw != "" {
		filter.ReportDate = &raw
	}

	res, err := c.reportService.ListReports(ctx.Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list reports", res))
}

func (c *reportController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid report id")
	}

	if err := c.reportService.DeleteReport(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete report", nil))
}

func (c *reportController) ExtractSummary(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid report id")
	}

	res, err := c.reportService.ExtractSummary(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success extract summary", res))
}
