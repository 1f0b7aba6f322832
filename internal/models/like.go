package models

import "time"

// Like records that a user liked a crosshair. The (UserID, CrosshairID)
// pair is unique: a user can like a given crosshair at most once. Rows are
// hard-deleted on unlike; presence of the row is the engagement state.
type Like struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_like_user_crosshair;index" json:"user_id"`
	CrosshairID uint      `gorm:"not null;uniqueIndex:idx_like_user_crosshair;index" json:"crosshair_id"`
	CreatedAt   time.Time `json:"created_at"`

	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Crosshair Crosshair `gorm:"foreignKey:CrosshairID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string { return "crosshair_likes" }
