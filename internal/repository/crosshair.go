// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"reticle/internal/cache"
	"reticle/internal/heroes"
	"reticle/internal/models"

	"gorm.io/gorm"
)

// ListQuery carries the normalized gallery listing parameters. Callers are
// expected to clamp Page and Limit before handing the query over.
type ListQuery struct {
	Search string
	Author string
	Hero   string
	Sort   string
	Page   int
	Limit  int
}

// CrosshairPage is one page of gallery results. HasMore is derived by
// fetching one row beyond the requested limit, so no COUNT query is needed.
type CrosshairPage struct {
	Items    []*models.Crosshair `json:"items"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	HasMore  bool                `json:"hasMore"`
	NextPage *int                `json:"nextPage"`
}

// CrosshairRepository defines the interface for crosshair data operations
type CrosshairRepository interface {
	Create(ctx context.Context, crosshair *models.Crosshair) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Crosshair, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Crosshair, error)
	GetFavorites(ctx context.Context, userID uint, limit, offset int) ([]*models.Crosshair, error)
	List(ctx context.Context, q ListQuery, currentUserID uint) (*CrosshairPage, error)
	Delete(ctx context.Context, id uint) error
}

type crosshairRepository struct {
	db *gorm.DB
}

// NewCrosshairRepository creates a new crosshair repository
func NewCrosshairRepository(db *gorm.DB) CrosshairRepository {
	return &crosshairRepository{db: db}
}

func (r *crosshairRepository) Create(ctx context.Context, crosshair *models.Crosshair) error {
	err := r.db.WithContext(ctx).Create(crosshair).Error
	if err == nil {
		cache.InvalidateGallery(ctx)
	}
	return err
}

func (r *crosshairRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Crosshair, error) {
	var crosshair models.Crosshair

	var err error
	if currentUserID == 0 {
		key := cache.CrosshairKey(id)
		err = cache.Aside(ctx, key, &crosshair, cache.CrosshairTTL, func() error {
			return r.applyEngagement(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&crosshair, id).Error
		})
	} else {
		err = r.applyEngagement(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&crosshair, id).Error
	}
	if err != nil {
		return nil, err
	}

	return &crosshair, nil
}

func (r *crosshairRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Crosshair, error) {
	var crosshairs []*models.Crosshair
	err := r.applyEngagement(r.db.WithContext(ctx), currentUserID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&crosshairs).Error
	return crosshairs, err
}

func (r *crosshairRepository) GetFavorites(ctx context.Context, userID uint, limit, offset int) ([]*models.Crosshair, error) {
	var crosshairs []*models.Crosshair
	err := r.applyEngagement(r.db.WithContext(ctx), userID).
		Joins("JOIN crosshair_favorites ON crosshair_favorites.crosshair_id = crosshairs.id").
		Where("crosshair_favorites.user_id = ?", userID).
		Order("crosshair_favorites.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&crosshairs).Error
	return crosshairs, err
}

func (r *crosshairRepository) List(ctx context.Context, q ListQuery, currentUserID uint) (*CrosshairPage, error) {
	// Anonymous unfiltered first pages are the hot path; serve them cache-aside.
	cacheable := currentUserID == 0 && q.Page == 1 &&
		q.Search == "" && q.Author == "" && q.Hero == ""
	if cacheable {
		var page CrosshairPage
		err := cache.Aside(ctx, cache.GalleryFirstPageKey(q.Sort), &page, cache.GalleryFirstPageTTL, func() error {
			fetched, fetchErr := r.list(ctx, q, 0)
			if fetchErr != nil {
				return fetchErr
			}
			page = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &page, nil
	}

	return r.list(ctx, q, currentUserID)
}

func (r *crosshairRepository) list(ctx context.Context, q ListQuery, currentUserID uint) (*CrosshairPage, error) {
	db := r.applyEngagement(r.db.WithContext(ctx), currentUserID)

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		db = db.Where("(crosshairs.name ILIKE ? OR crosshairs.author ILIKE ?)", pattern, pattern)
	}
	if q.Author != "" {
		db = db.Where("crosshairs.author ILIKE ?", "%"+escapeLike(q.Author)+"%")
	}
	if q.Hero != "" {
		// Rows created before slugs were canonical may store the display name.
		db = db.Where("crosshairs.hero IN ?", heroes.IdentifierVariants(q.Hero))
	}

	offset := (q.Page - 1) * q.Limit

	// Fetch one extra row to learn whether another page exists.
	var rows []*models.Crosshair
	err := r.applySort(db, q.Sort).
		Limit(q.Limit + 1).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page := &CrosshairPage{
		Items: rows,
		Page:  q.Page,
		Limit: q.Limit,
	}
	if len(rows) > q.Limit {
		page.Items = rows[:q.Limit]
		page.HasMore = true
		next := q.Page + 1
		page.NextPage = &next
	}
	if page.Items == nil {
		page.Items = []*models.Crosshair{}
	}

	return page, nil
}

// applySort appends the ORDER BY clause for the requested sort type.
func (r *crosshairRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "popular":
		return db.Order("likes DESC, created_at DESC")
	case "name":
		return db.Order("name ASC, id ASC")
	default: // "latest" and anything unrecognized
		return db.Order("created_at DESC")
	}
}

// applyEngagement adds EXISTS subqueries to fetch the requesting user's
// liked/favorited flags in a single query.
func (r *crosshairRepository) applyEngagement(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID != 0 {
		return db.Select(
			"crosshairs.*, "+
				"EXISTS(SELECT 1 FROM crosshair_likes WHERE crosshair_likes.crosshair_id = crosshairs.id AND crosshair_likes.user_id = ?) as liked, "+
				"EXISTS(SELECT 1 FROM crosshair_favorites WHERE crosshair_favorites.crosshair_id = crosshairs.id AND crosshair_favorites.user_id = ?) as favorited",
			currentUserID, currentUserID)
	}
	return db.Select("crosshairs.*, false as liked, false as favorited")
}

func (r *crosshairRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Crosshair{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateCrosshair(ctx, id)
	cache.InvalidateGallery(ctx)
	return nil
}

// escapeLike neutralizes LIKE wildcards so user input matches literally.
// A search for "50%_off" must match that exact substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
