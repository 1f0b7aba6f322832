package server

import (
	"reticle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(user)
}

// GetMyCrosshairs handles GET /api/users/me/crosshairs
func (s *Server) GetMyCrosshairs(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	crosshairs, err := s.crosshairService.GetUserCrosshairs(c.UserContext(), userID, p.Limit, p.Offset, userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"crosshairs": crosshairs})
}

// GetMyFavorites handles GET /api/users/me/favorites
func (s *Server) GetMyFavorites(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	crosshairs, err := s.crosshairService.GetFavorites(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"crosshairs": crosshairs})
}
