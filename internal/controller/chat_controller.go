package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Completion(ctx *fiber.Ctx) error
	CompletionStream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	log         logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:id/history", c.History)
	h.Put("/sessions/:id", c.RenameSession)
	h.Delete("/sessions/:id", c.DeleteSession)
	h.Post("/completions", c.Completion)
	h.Post("/completions/stream", c.CompletionStream)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	res, err := c.chatService.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetAllSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid session id")
	}

	res, err := c.chatService.GetChatHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid session id")
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.RenameSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *chatController) Completion(ctx *fiber.Ctx) error {
	var req dto.ChatCompletionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Completion(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success completion", res))
}

// CompletionStream relays the upstream SSE stream to the client: each upstream
// data payload is forwarded as-is, followed by a final "data: [DONE]" line.
// Request validation errors still return a JSON error before streaming starts.
func (c *chatController) CompletionStream(ctx *fiber.Ctx) error {
	var req dto.ChatCompletionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The writer runs after this handler returns, so it must not touch the
	// fiber context again.
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCtx := context.Background()

		_, err := c.chatService.CompletionStream(streamCtx, &req, func(data string) error {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil {
			c.log.Error("chat_controller", "stream aborted", map[string]interface{}{
				"session_id": req.ChatSessionId,
				"error":      err.Error(),
			})
			payload, _ := json.Marshal(fiber.Map{"error": err.Error()})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}

		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	}))

	return nil
}
