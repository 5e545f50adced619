package controller

import (
	"errors"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/service"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	UploadFile(ctx *fiber.Ctx) error
	ClearFile(ctx *fiber.Ctx) error
	NewChat(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/health", c.Health)
	h.Get("/history", c.History)
	h.Get("/status", c.Status)
	h.Post("/messages", c.SendMessage)
	h.Post("/file", c.UploadFile)
	h.Delete("/file", c.ClearFile)
	h.Post("/new", c.NewChat)
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res := c.service.History(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) Status(ctx *fiber.Ctx) error {
	res := c.service.Status(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get chat status", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.Context(), &req)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) UploadFile(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.service.UploadFile(ctx.Context(), fileHeader.Filename, file)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload file", res))
}

func (c *chatController) ClearFile(ctx *fiber.Ctx) error {
	if err := c.service.ClearFile(ctx.Context()); err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear file", nil))
}

func (c *chatController) NewChat(ctx *fiber.Ctx) error {
	if err := c.service.NewChat(ctx.Context()); err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success start new chat", nil))
}

// chatError turns conversation and ingest errors into envelopes carrying the
// user-visible Arabic text. Anything else goes to the error middleware.
func chatError(ctx *fiber.Ctx, err error) error {
	var (
		turnErr   *conversation.TurnError
		ingestErr *ingest.Error
	)

	switch {
	case errors.Is(err, conversation.ErrTurnInFlight):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, err.Error()))
	case errors.Is(err, conversation.ErrEmptyMessage):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(fiber.StatusUnprocessableEntity, err.Error()))
	case errors.As(err, &turnErr):
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(fiber.StatusBadGateway, turnErr.UserMessage()))
	case errors.As(err, &ingestErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, ingestErr.Message))
	default:
		return err
	}
}
