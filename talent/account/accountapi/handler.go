package accountapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/talent/account"
	"github.com/careerlens/careerlens/talent/account/accountsrv"
)

type AuthHandlers struct {
	service *accountsrv.Service
}

func NewAuthHandlers(service *accountsrv.Service) *AuthHandlers {
	return &AuthHandlers{service: service}
}

func (h *AuthHandlers) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/v1/auth")

	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Get("/me", authMiddleware, h.Me)
}

// Register creates an account and returns a session token
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req account.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	session, err := h.service.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Login exchanges credentials for a session token
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req account.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	session, err := h.service.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Me returns the account behind the current session
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	response, err := h.service.GetAccount(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}
