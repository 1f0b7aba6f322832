package models

import "time"

// Favorite records that a user favorited a crosshair. Structurally identical
// to Like, but favorites are not mirrored into a counter on the crosshair.
type Favorite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_favorite_user_crosshair;index" json:"user_id"`
	CrosshairID uint      `gorm:"not null;uniqueIndex:idx_favorite_user_crosshair;index" json:"crosshair_id"`
	CreatedAt   time.Time `json:"created_at"`

	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Crosshair Crosshair `gorm:"foreignKey:CrosshairID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string { return "crosshair_favorites" }
