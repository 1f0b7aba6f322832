package models

import (
	"time"
)

// Crosshair display parameter bounds. Enforced at creation time only; rows
// are never re-validated afterwards.
const (
	ThicknessMax      = 10
	LengthMax         = 40
	CenterGapMax      = 40
	OpacityMax        = 100
	OutlineOpacityMax = 100
	DotSizeMax        = 25
	DotOpacityMax     = 100
)

// Crosshair represents a shared crosshair configuration.
//
// Likes is a denormalized counter: it must equal the number of Like rows
// referencing this crosshair after every completed engagement transaction,
// and it never goes below zero.
type Crosshair struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:120;not null" json:"name"`
	Author         string    `gorm:"size:120;not null" json:"author"`
	Hero           string    `gorm:"size:60;not null;index" json:"hero"`
	Description    *string   `gorm:"type:text" json:"description"`
	Type           string    `gorm:"size:32;not null;index" json:"type"`
	Color          string    `gorm:"size:32;not null" json:"color"`
	Thickness      int       `gorm:"not null;default:1" json:"thickness"`
	Length         int       `gorm:"column:crosshair_length;not null;default:6" json:"crosshair_length"`
	CenterGap      int       `gorm:"not null;default:4" json:"center_gap"`
	Opacity        int       `gorm:"not null;default:100" json:"opacity"`
	OutlineOpacity int       `gorm:"not null;default:100" json:"outline_opacity"`
	DotSize        int       `gorm:"not null;default:0" json:"dot_size"`
	DotOpacity     int       `gorm:"not null;default:0" json:"dot_opacity"`
	ShowAccuracy   bool      `gorm:"not null;default:false" json:"show_accuracy"`
	Scale          int       `gorm:"not null;default:1" json:"scale"`
	ImageURL       *string   `json:"image_url"`
	ImageKey       *string   `json:"-"`
	Likes          int       `gorm:"not null;default:0" json:"likes"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Liked/Favorited indicate the requesting user's engagement (computed).
	Liked     bool `gorm:"->;-:migration" json:"liked"`
	Favorited bool `gorm:"->;-:migration" json:"favorited"`
}
