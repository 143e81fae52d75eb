package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
)

type ConversationHandler struct {
	service  ports.ConversationService
	validate *validator.Validate
	log      *zap.Logger
}

func NewConversationHandler(service ports.ConversationService, log *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

type StartConversationRequest struct {
	Channel string `json:"channel" validate:"omitempty,oneof=api websocket cli"`
	UserRef string `json:"user_ref" validate:"omitempty,max=128"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// RegisterRoutes mounts the conversation API on router.
func (h *ConversationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/conversations", h.Start)
	router.Post("/conversations/:id/messages", h.SendMessage)
	router.Get("/conversations/:id", h.Get)
}

func (h *ConversationHandler) Start(c *fiber.Ctx) error {
	var req StartConversationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	channel := domain.ChannelAPI
	if req.Channel != "" {
		channel = domain.Channel(req.Channel)
	}
	userRef := req.UserRef
	if userRef == "" {
		userRef, _ = c.Locals(middleware.SubjectKey).(string)
	}

	reply, err := h.service.Start(c.UserContext(), channel, userRef)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (h *ConversationHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	reply, err := h.service.HandleMessage(c.UserContext(), c.Params("id"), req.Text)
	if errors.Is(err, domain.ErrConversationClosed) && reply != nil {
		return c.Status(fiber.StatusConflict).JSON(reply)
	}
	if err != nil {
		return err
	}
	return c.JSON(reply)
}

func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	conv, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(conv)
}
