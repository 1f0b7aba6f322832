package service

import (
	"context"
	"errors"

	"reticle/internal/middleware"
	"reticle/internal/models"
	"reticle/internal/repository"

	"gorm.io/gorm"
)

// Engagement actions accepted by ApplyEngagement.
const (
	ActionLike       = "like"
	ActionUnlike     = "unlike"
	ActionFavorite   = "favorite"
	ActionUnfavorite = "unfavorite"
)

type EngagementService struct {
	engagementRepo repository.EngagementRepository
}

type ApplyEngagementInput struct {
	UserID      uint
	CrosshairID uint
	Action      string
}

// EngagementResult reports the engagement state after the request. Likes is
// only meaningful for like/unlike actions; favorite actions leave it nil.
type EngagementResult struct {
	Liked     *bool `json:"liked,omitempty"`
	Favorited *bool `json:"favorited,omitempty"`
	Likes     *int  `json:"likeCount,omitempty"`
}

func NewEngagementService(engagementRepo repository.EngagementRepository) *EngagementService {
	return &EngagementService{engagementRepo: engagementRepo}
}

// ApplyEngagement validates the action, applies the state transition and
// returns the resulting state. The action is checked before the crosshair is
// looked up, so a bad action on a missing crosshair is a 400, not a 404.
func (s *EngagementService) ApplyEngagement(ctx context.Context, in ApplyEngagementInput) (*EngagementResult, error) {
	switch in.Action {
	case ActionLike, ActionUnlike, ActionFavorite, ActionUnfavorite:
	default:
		return nil, models.NewValidationError("action must be one of: like, unlike, favorite, unfavorite")
	}

	switch in.Action {
	case ActionLike, ActionUnlike:
		liked := in.Action == ActionLike
		changed, likes, err := s.engagementRepo.SetLiked(ctx, in.UserID, in.CrosshairID, liked)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Crosshair", in.CrosshairID)
			}
			return nil, models.NewInternalError(err)
		}
		middleware.EngagementActions.WithLabelValues(in.Action, outcome(changed)).Inc()
		return &EngagementResult{Liked: &liked, Likes: &likes}, nil

	default:
		favorited := in.Action == ActionFavorite
		changed, err := s.engagementRepo.SetFavorited(ctx, in.UserID, in.CrosshairID, favorited)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Crosshair", in.CrosshairID)
			}
			return nil, models.NewInternalError(err)
		}
		middleware.EngagementActions.WithLabelValues(in.Action, outcome(changed)).Inc()
		return &EngagementResult{Favorited: &favorited}, nil
	}
}

func outcome(changed bool) string {
	if changed {
		return "applied"
	}
	return "noop"
}
