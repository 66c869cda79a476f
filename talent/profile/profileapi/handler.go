package profileapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/profile"
	"github.com/careerlens/careerlens/talent/profile/profilesrv"
)

type ProfileHandlers struct {
	service *profilesrv.Service
}

func NewProfileHandlers(service *profilesrv.Service) *ProfileHandlers {
	return &ProfileHandlers{service: service}
}

func (h *ProfileHandlers) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	profiles := app.Group("/api/v1/profiles", authMiddleware)

	// Candidate's own profile
	profiles.Get("/me", h.GetOwnProfile)
	profiles.Put("/me", h.UpdateOwnProfile)
	profiles.Delete("/me", h.DeleteOwnProfile)
	profiles.Post("/me/embedding/refresh", h.RefreshEmbedding)

	// Recruiter views
	recruiterOnly := auth.RequireRole(auth.RoleRecruiter)
	profiles.Get("/", recruiterOnly, h.ListProfiles)
	profiles.Post("/search", recruiterOnly, h.SearchProfiles)
	profiles.Get("/:id", recruiterOnly, h.GetProfile)
	profiles.Post("/:id/rescore", recruiterOnly, h.RescoreProfile)
}

// GetOwnProfile returns the authenticated candidate's profile
// GET /api/v1/profiles/me
func (h *ProfileHandlers) GetOwnProfile(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	response, err := h.service.GetOwnProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// UpdateOwnProfile replaces the candidate's document with a manual edit
// PUT /api/v1/profiles/me
func (h *ProfileHandlers) UpdateOwnProfile(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req profile.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	response, err := h.service.UpdateDocument(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// DeleteOwnProfile removes the candidate's profile
// DELETE /api/v1/profiles/me
func (h *ProfileHandlers) DeleteOwnProfile(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	if err := h.service.DeleteProfile(c.Context(), userID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// RefreshEmbedding regenerates the candidate's search embedding
// POST /api/v1/profiles/me/embedding/refresh
func (h *ProfileHandlers) RefreshEmbedding(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	if err := h.service.RefreshEmbedding(c.Context(), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "embedding refreshed",
	})
}

// GetProfile returns one candidate profile (recruiter view)
// GET /api/v1/profiles/:id
func (h *ProfileHandlers) GetProfile(c *fiber.Ctx) error {
	profileID := kernel.ProfileID(c.Params("id"))
	if profileID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile ID",
		})
	}

	response, err := h.service.GetProfile(c.Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// ListProfiles pages through candidate profiles (recruiter view)
// GET /api/v1/profiles?page=1&page_size=20
func (h *ProfileHandlers) ListProfiles(c *fiber.Ctx) error {
	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	response, err := h.service.ListProfiles(c.Context(), pagination)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// RescoreProfile scores one profile against recruiter criteria
// POST /api/v1/profiles/:id/rescore
func (h *ProfileHandlers) RescoreProfile(c *fiber.Ctx) error {
	profileID := kernel.ProfileID(c.Params("id"))
	if profileID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile ID",
		})
	}

	var req profile.RescoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	response, err := h.service.Rescore(c.Context(), profileID, req)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// SearchProfiles performs semantic search over candidate profiles
// POST /api/v1/profiles/search
func (h *ProfileHandlers) SearchProfiles(c *fiber.Ctx) error {
	var req profile.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	response, err := h.service.Search(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(response)
}
