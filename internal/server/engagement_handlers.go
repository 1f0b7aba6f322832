package server

import (
	"reticle/internal/models"
	"reticle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ApplyEngagement handles POST /api/crosshairs/:id/engagement.
// The body names the desired action; repeating an action is a no-op that
// still returns the current state.
func (s *Server) ApplyEngagement(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.engagementService.ApplyEngagement(c.UserContext(), service.ApplyEngagementInput{
		UserID:      userID,
		CrosshairID: id,
		Action:      req.Action,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(result)
}
