// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"reticle/internal/heroes"
	"reticle/internal/middleware"
	"reticle/internal/models"
	"reticle/internal/repository"
	"reticle/internal/storage"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

type CrosshairService struct {
	crosshairRepo repository.CrosshairRepository
	store         storage.ObjectStorage
	validate      *validator.Validate
}

type CreateCrosshairInput struct {
	UserID         uint
	Author         string
	Name           string `validate:"required,max=120"`
	Hero           string `validate:"required"`
	Description    string `validate:"max=2000"`
	Type           string `validate:"required,max=32"`
	Color          string `validate:"required,max=32"`
	Thickness      int    `validate:"min=0,max=10"`
	Length         int    `validate:"min=0,max=40"`
	CenterGap      int    `validate:"min=0,max=40"`
	Opacity        int    `validate:"min=0,max=100"`
	OutlineOpacity int    `validate:"min=0,max=100"`
	DotSize        int    `validate:"min=0,max=25"`
	DotOpacity     int    `validate:"min=0,max=100"`
	ShowAccuracy   bool
	Scale          int `validate:"min=1"`

	// Optional image attachment; requires configured object storage.
	ImageData []byte
	ImageType string
}

type ListCrosshairsInput struct {
	Search        string
	Author        string
	Hero          string
	Sort          string
	Page          int
	Limit         int
	CurrentUserID uint
}

type DeleteCrosshairInput struct {
	UserID      uint
	CrosshairID uint
}

func NewCrosshairService(crosshairRepo repository.CrosshairRepository, store storage.ObjectStorage) *CrosshairService {
	return &CrosshairService{
		crosshairRepo: crosshairRepo,
		store:         store,
		validate:      validator.New(),
	}
}

func (s *CrosshairService) CreateCrosshair(ctx context.Context, in CreateCrosshairInput) (*models.Crosshair, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, models.NewValidationError("invalid field: " + strings.ToLower(verrs[0].Field()))
		}
		return nil, models.NewValidationError("invalid crosshair payload")
	}

	hero, ok := heroes.Resolve(in.Hero)
	if !ok {
		return nil, models.NewValidationError("unknown hero: " + in.Hero)
	}

	crosshair := &models.Crosshair{
		Name:           in.Name,
		Author:         in.Author,
		Hero:           hero.Slug,
		Type:           in.Type,
		Color:          in.Color,
		Thickness:      in.Thickness,
		Length:         in.Length,
		CenterGap:      in.CenterGap,
		Opacity:        in.Opacity,
		OutlineOpacity: in.OutlineOpacity,
		DotSize:        in.DotSize,
		DotOpacity:     in.DotOpacity,
		ShowAccuracy:   in.ShowAccuracy,
		Scale:          in.Scale,
		UserID:         in.UserID,
	}
	if in.Description != "" {
		crosshair.Description = &in.Description
	}

	if len(in.ImageData) > 0 {
		if s.store == nil {
			return nil, models.NewValidationError("image uploads are not enabled")
		}
		key, url, err := s.store.Upload(ctx, in.UserID, in.ImageType, in.ImageData)
		if err != nil {
			middleware.ImageUploads.WithLabelValues("error").Inc()
			return nil, err
		}
		middleware.ImageUploads.WithLabelValues("ok").Inc()
		crosshair.ImageKey = &key
		crosshair.ImageURL = &url
	}

	if err := s.crosshairRepo.Create(ctx, crosshair); err != nil {
		// The row never landed; don't leave the image orphaned.
		if crosshair.ImageKey != nil {
			if delErr := s.store.Delete(ctx, *crosshair.ImageKey); delErr != nil {
				middleware.Logger.WarnContext(ctx, "failed to clean up orphaned image",
					slog.String("key", *crosshair.ImageKey),
					slog.String("error", delErr.Error()))
			}
		}
		return nil, models.NewInternalError(err)
	}

	return s.crosshairRepo.GetByID(ctx, crosshair.ID, in.UserID)
}

func (s *CrosshairService) GetCrosshair(ctx context.Context, id uint, currentUserID uint) (*models.Crosshair, error) {
	crosshair, err := s.crosshairRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Crosshair", id)
		}
		return nil, err
	}
	return crosshair, nil
}

// ListCrosshairs normalizes the raw query values and runs the gallery query.
// Out-of-range paging values are clamped rather than rejected and an
// unrecognized sort falls back to latest.
func (s *CrosshairService) ListCrosshairs(ctx context.Context, in ListCrosshairsInput) (*repository.CrosshairPage, error) {
	q := repository.ListQuery{
		Search: strings.TrimSpace(in.Search),
		Author: strings.TrimSpace(in.Author),
		Sort:   normalizeSort(in.Sort),
		Page:   in.Page,
		Limit:  in.Limit,
	}

	if hero := strings.TrimSpace(in.Hero); hero != "" {
		q.Hero = heroes.CanonicalSlug(hero)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}

	defer middleware.ObserveGalleryQuery(q.Sort)()
	return s.crosshairRepo.List(ctx, q, in.CurrentUserID)
}

func (s *CrosshairService) GetUserCrosshairs(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Crosshair, error) {
	return s.crosshairRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *CrosshairService) GetFavorites(ctx context.Context, userID uint, limit, offset int) ([]*models.Crosshair, error) {
	return s.crosshairRepo.GetFavorites(ctx, userID, limit, offset)
}

func (s *CrosshairService) DeleteCrosshair(ctx context.Context, in DeleteCrosshairInput) error {
	crosshair, err := s.crosshairRepo.GetByID(ctx, in.CrosshairID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Crosshair", in.CrosshairID)
		}
		return err
	}

	if crosshair.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own crosshairs")
	}

	if err := s.crosshairRepo.Delete(ctx, in.CrosshairID); err != nil {
		return err
	}

	// Best-effort: a leaked object costs pennies, a failed delete must not
	// resurrect the row.
	if crosshair.ImageKey != nil && s.store != nil {
		if err := s.store.Delete(ctx, *crosshair.ImageKey); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete crosshair image",
				slog.String("key", *crosshair.ImageKey),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func normalizeSort(sort string) string {
	switch sort {
	case "popular", "name", "latest":
		return sort
	default:
		return "latest"
	}
}
