package handlers

import (
	"messageapp/internal/middleware"
	"messageapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for messages.
type MessageHandler struct {
	service *services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// RegisterRoutes registers the message routes; all of them require a token.
func (h *MessageHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	messages := router.Group("/messages", requireAuth)
	messages.Get("/chat/:chatId/:page", h.HandlePage)
	messages.Post("/create", h.HandleCreate)
	messages.Put("/:messageId", h.HandleUpdate)
	messages.Delete("/:messageId", h.HandleDelete)
}

// HandlePage returns the chat and one page of its messages, newest first.
func (h *MessageHandler) HandlePage(c *fiber.Ctx) error {
	chatID, err := paramID(c, "chatId")
	if err != nil {
		return err
	}
	page, err := pageParam(c, "page")
	if err != nil {
		return err
	}
	chat, result, err := h.service.Page(middleware.CurrentUser(c).ID, chatID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"chat":     presentChat(chat),
		"messages": presentMessages(result.Items),
		"pages":    result.Pages,
	})
}

func (h *MessageHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateMessageInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	message, err := h.service.Create(middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": presentMessage(message)})
}

// HandleUpdate edits a message. Only its author may do so.
func (h *MessageHandler) HandleUpdate(c *fiber.Ctx) error {
	messageID, err := paramID(c, "messageId")
	if err != nil {
		return err
	}
	var req services.UpdateMessageInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	message, err := h.service.Update(middleware.CurrentUser(c).ID, messageID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": presentMessage(message)})
}

func (h *MessageHandler) HandleDelete(c *fiber.Ctx) error {
	messageID, err := paramID(c, "messageId")
	if err != nil {
		return err
	}
	if err := h.service.Delete(middleware.CurrentUser(c).ID, messageID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "message deleted"})
}
