package repository

import (
	"context"

	"reticle/internal/cache"
	"reticle/internal/models"

	"gorm.io/gorm"
)

// EngagementRepository applies like/favorite state transitions atomically.
type EngagementRepository interface {
	// SetLiked drives the like relation to the requested state. It returns
	// whether a row actually changed and the crosshair's like count after
	// the transaction. Requests matching the current state are no-ops.
	SetLiked(ctx context.Context, userID, crosshairID uint, liked bool) (bool, int, error)

	// SetFavorited drives the favorite relation to the requested state and
	// returns whether a row actually changed.
	SetFavorited(ctx context.Context, userID, crosshairID uint, favorited bool) (bool, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) SetLiked(ctx context.Context, userID, crosshairID uint, liked bool) (bool, int, error) {
	var changed bool
	var likes int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Existence check first so a missing crosshair surfaces as not-found
		// rather than a foreign key violation.
		var crosshair models.Crosshair
		if err := tx.Select("id").First(&crosshair, crosshairID).Error; err != nil {
			return err
		}

		if liked {
			// ON CONFLICT DO NOTHING so a concurrent duplicate insert cannot
			// abort the transaction; RowsAffected tells us whether this
			// request won the row. The loser sees 0 and reports already-liked.
			res := tx.Exec(
				`INSERT INTO crosshair_likes (user_id, crosshair_id, created_at)
				 VALUES (?, ?, NOW())
				 ON CONFLICT (user_id, crosshair_id) DO NOTHING`,
				userID, crosshairID,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				if err := tx.Model(&models.Crosshair{}).
					Where("id = ?", crosshairID).
					Update("likes", gorm.Expr("likes + 1")).Error; err != nil {
					return err
				}
				changed = true
			}
		} else {
			res := tx.Where("user_id = ? AND crosshair_id = ?", userID, crosshairID).
				Delete(&models.Like{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				// GREATEST floors the counter at zero should it ever drift.
				if err := tx.Model(&models.Crosshair{}).
					Where("id = ?", crosshairID).
					Update("likes", gorm.Expr("GREATEST(likes - 1, 0)")).Error; err != nil {
					return err
				}
				changed = true
			}
		}

		var refreshed models.Crosshair
		if err := tx.Select("likes").First(&refreshed, crosshairID).Error; err != nil {
			return err
		}
		likes = refreshed.Likes
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if changed {
		cache.InvalidateCrosshair(ctx, crosshairID)
		cache.InvalidateGallery(ctx)
	}
	return changed, likes, nil
}

func (r *engagementRepository) SetFavorited(ctx context.Context, userID, crosshairID uint, favorited bool) (bool, error) {
	var changed bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var crosshair models.Crosshair
		if err := tx.Select("id").First(&crosshair, crosshairID).Error; err != nil {
			return err
		}

		if favorited {
			res := tx.Exec(
				`INSERT INTO crosshair_favorites (user_id, crosshair_id, created_at)
				 VALUES (?, ?, NOW())
				 ON CONFLICT (user_id, crosshair_id) DO NOTHING`,
				userID, crosshairID,
			)
			if res.Error != nil {
				return res.Error
			}
			changed = res.RowsAffected > 0
		} else {
			res := tx.Where("user_id = ? AND crosshair_id = ?", userID, crosshairID).
				Delete(&models.Favorite{})
			if res.Error != nil {
				return res.Error
			}
			changed = res.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		cache.InvalidateCrosshair(ctx, crosshairID)
	}
	return changed, nil
}
