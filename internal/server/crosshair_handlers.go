package server

import (
	"io"

	"reticle/internal/heroes"
	"reticle/internal/models"
	"reticle/internal/service"
	"reticle/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// createCrosshairRequest accepts both JSON bodies and multipart form fields;
// the optional image file rides alongside the form under the "image" key.
type createCrosshairRequest struct {
	Name           string `json:"name" form:"name"`
	Hero           string `json:"hero" form:"hero"`
	Description    string `json:"description" form:"description"`
	Type           string `json:"type" form:"type"`
	Color          string `json:"color" form:"color"`
	Thickness      int    `json:"thickness" form:"thickness"`
	Length         int    `json:"crosshair_length" form:"crosshair_length"`
	CenterGap      int    `json:"center_gap" form:"center_gap"`
	Opacity        int    `json:"opacity" form:"opacity"`
	OutlineOpacity int    `json:"outline_opacity" form:"outline_opacity"`
	DotSize        int    `json:"dot_size" form:"dot_size"`
	DotOpacity     int    `json:"dot_opacity" form:"dot_opacity"`
	ShowAccuracy   bool   `json:"show_accuracy" form:"show_accuracy"`
	Scale          int    `json:"scale" form:"scale"`
}

// CreateCrosshair handles POST /api/crosshairs
func (s *Server) CreateCrosshair(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createCrosshairRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	in := service.CreateCrosshairInput{
		UserID:         userID,
		Author:         user.Username,
		Name:           req.Name,
		Hero:           req.Hero,
		Description:    req.Description,
		Type:           req.Type,
		Color:          req.Color,
		Thickness:      req.Thickness,
		Length:         req.Length,
		CenterGap:      req.CenterGap,
		Opacity:        req.Opacity,
		OutlineOpacity: req.OutlineOpacity,
		DotSize:        req.DotSize,
		DotOpacity:     req.DotOpacity,
		ShowAccuracy:   req.ShowAccuracy,
		Scale:          req.Scale,
	}

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		if file.Size > storage.MaxImageSize {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("image exceeds the 5MB size limit"))
		}
		f, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("unreadable image upload"))
		}
		data, readErr := io.ReadAll(f)
		f.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("unreadable image upload"))
		}
		in.ImageData = data
		in.ImageType = file.Header.Get("Content-Type")
	}

	crosshair, err := s.crosshairService.CreateCrosshair(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(crosshair)
}

// GetCrosshairs handles GET /api/crosshairs
func (s *Server) GetCrosshairs(c *fiber.Ctx) error {
	in := service.ListCrosshairsInput{
		Search:        c.Query("search"),
		Author:        c.Query("author"),
		Hero:          c.Query("hero"),
		Sort:          c.Query("sort"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", service.DefaultPageSize),
		CurrentUserID: currentUserID(c),
	}

	page, err := s.crosshairService.ListCrosshairs(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(page)
}

// GetCrosshair handles GET /api/crosshairs/:id
func (s *Server) GetCrosshair(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	crosshair, err := s.crosshairService.GetCrosshair(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(crosshair)
}

// DeleteCrosshair handles DELETE /api/crosshairs/:id
func (s *Server) DeleteCrosshair(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.crosshairService.DeleteCrosshair(c.UserContext(), service.DeleteCrosshairInput{
		UserID:      userID,
		CrosshairID: id,
	}); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetHeroes handles GET /api/heroes
func (s *Server) GetHeroes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"heroes": heroes.Catalog})
}
