package handlers

import (
	"messageapp/internal/middleware"
	"messageapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles chat and membership requests.
type ChatHandler struct {
	service *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes registers the chat routes; all of them require a token.
func (h *ChatHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	chats := router.Group("/chats", requireAuth)
	chats.Get("/page/:pageIndex", h.HandlePage)
	chats.Post("/create", h.HandleCreate)
	chats.Put("/rename", h.HandleRename)
	chats.Put("/addUser", h.HandleAddUser)
	chats.Put("/removeUser", h.HandleRemoveUser)
	chats.Get("/:chatId/users", h.HandleMembers)
}

func (h *ChatHandler) HandlePage(c *fiber.Ctx) error {
	page, err := pageParam(c, "pageIndex")
	if err != nil {
		return err
	}
	result, err := h.service.Page(middleware.CurrentUser(c).ID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chats": presentChats(result.Items), "pages": result.Pages})
}

// HandleCreate creates a chat; the caller is always a member.
func (h *ChatHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateChatInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	chat, err := h.service.Create(middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"chat": presentChat(chat)})
}

func (h *ChatHandler) HandleRename(c *fiber.Ctx) error {
	var req services.RenameChatInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	chat, err := h.service.Rename(middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chat": presentChat(chat)})
}

func (h *ChatHandler) HandleAddUser(c *fiber.Ctx) error {
	var req services.MemberInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.AddMember(middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user.Summary()})
}

func (h *ChatHandler) HandleRemoveUser(c *fiber.Ctx) error {
	var req services.MemberInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.RemoveMember(middleware.CurrentUser(c).ID, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user removed"})
}

func (h *ChatHandler) HandleMembers(c *fiber.Ctx) error {
	chatID, err := paramID(c, "chatId")
	if err != nil {
		return err
	}
	users, err := h.service.Members(middleware.CurrentUser(c).ID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": summaries(users)})
}
