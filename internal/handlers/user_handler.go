package handlers

import (
	"net/url"

	"messageapp/internal/apperr"
	"messageapp/internal/middleware"
	"messageapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account and user directory requests.
type UserHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, userService *services.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// RegisterRoutes registers the user routes. Only register and login are public.
func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	users := router.Group("/users")
	users.Post("/register", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Get("/profile", requireAuth, h.HandleProfile)
	users.Put("/update", requireAuth, h.HandleUpdate)
	users.Post("/changePassword", requireAuth, h.HandleChangePassword)
	users.Delete("/delete", requireAuth, h.HandleDelete)
	users.Get("/list/:page", requireAuth, h.HandleList)
	users.Get("/search/:query", requireAuth, h.HandleSearch)
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Register(req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleLogin handles user login and issues a JWT token.
// Bad credentials answer 400, not 401: 401 is reserved for bearer failures.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Login(req)
	if apperr.Is(err, apperr.KindAuth) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": apperr.MsgInvalidCredentials})
	}
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *UserHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.userService.Profile(middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Update(middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.userService.ChangePassword(middleware.CurrentUser(c).ID, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.userService.Delete(middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "account deleted"})
}

// HandleList lists every user except the caller, one page at a time.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	page, err := pageParam(c, "page")
	if err != nil {
		return err
	}
	result, err := h.userService.List(middleware.CurrentUser(c).ID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": listEntries(result.Items), "pages": result.Pages})
}

func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		return apperr.Validation("invalid query", apperr.FieldError{Field: "query", Message: "is not a valid path segment"})
	}
	users, err := h.userService.Search(middleware.CurrentUser(c).ID, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": summaries(users)})
}
