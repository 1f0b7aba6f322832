// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"reticle/internal/heroes"
	"reticle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers      int
	NumCrosshairs int
	ShouldClean   bool
	// MaxDays bounds how far back seeded created-at timestamps reach.
	MaxDays int
}

var (
	namePrefixes = []string{
		"职业", "极简", "高对比", "狙击", "追踪", "爆发", "训练", "比赛",
	}

	nameSuffixes = []string{
		"准星", "点射准星", "小绿点", "十字", "微点", "方案",
	}

	crosshairTypes = []string{"cross", "dot", "circle", "cross-dot"}

	colors = []string{"#00FF00", "#FFFFFF", "#00FFFF", "#FF00FF", "#FFFF00", "#FF4655"}
)

// Run seeds the database with users and crosshairs, including a consistent
// spread of likes and favorites.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumCrosshairs <= 0 {
		opts.NumCrosshairs = 50
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		for _, table := range []string{"crosshair_likes", "crosshair_favorites", "crosshairs", "users"} {
			if err := db.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
				return fmt.Errorf("failed to clean table %s: %w", table, err)
			}
		}
	}

	users, err := seedUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}

	crosshairs, err := seedCrosshairs(db, users, opts)
	if err != nil {
		return err
	}

	if err := seedEngagement(db, users, crosshairs); err != nil {
		return err
	}

	log.Printf("Seeded %d users and %d crosshairs", len(users), len(crosshairs))
	return nil
}

func seedUsers(db *gorm.DB, n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("SeededPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		// Suffix with the index so generated tags can never collide with the
		// unique constraints.
		username := fmt.Sprintf("%s%d", gofakeit.Gamertag(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashed),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func seedCrosshairs(db *gorm.DB, users []models.User, opts Options) ([]models.Crosshair, error) {
	crosshairs := make([]models.Crosshair, 0, opts.NumCrosshairs)
	for i := 0; i < opts.NumCrosshairs; i++ {
		owner := users[rand.Intn(len(users))]
		hero := heroes.Catalog[rand.Intn(len(heroes.Catalog))]

		crosshair := models.Crosshair{
			Name: fmt.Sprintf("%s%s %d",
				namePrefixes[rand.Intn(len(namePrefixes))],
				nameSuffixes[rand.Intn(len(nameSuffixes))], i),
			Author:         owner.Username,
			Hero:           hero.Slug,
			Type:           crosshairTypes[rand.Intn(len(crosshairTypes))],
			Color:          colors[rand.Intn(len(colors))],
			Thickness:      rand.Intn(models.ThicknessMax + 1),
			Length:         rand.Intn(models.LengthMax + 1),
			CenterGap:      rand.Intn(models.CenterGapMax + 1),
			Opacity:        50 + rand.Intn(51),
			OutlineOpacity: rand.Intn(models.OutlineOpacityMax + 1),
			DotSize:        rand.Intn(models.DotSizeMax + 1),
			DotOpacity:     rand.Intn(models.DotOpacityMax + 1),
			ShowAccuracy:   rand.Intn(2) == 0,
			Scale:          1 + rand.Intn(3),
			UserID:         owner.ID,
			CreatedAt:      spreadCreatedAt(opts.MaxDays),
		}
		if rand.Intn(3) == 0 {
			description := gofakeit.Sentence(8)
			crosshair.Description = &description
		}
		if err := db.Create(&crosshair).Error; err != nil {
			return nil, fmt.Errorf("failed to create crosshair: %w", err)
		}
		crosshairs = append(crosshairs, crosshair)
	}
	return crosshairs, nil
}

// spreadCreatedAt returns a timestamp scattered over the last maxDays so the
// latest/popular sorts have something realistic to order.
func spreadCreatedAt(maxDays int) time.Time {
	daysBack := rand.Intn(maxDays)
	hoursBack := rand.Intn(24)
	minsBack := rand.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack) * 24 * time.Hour).
		Add(-time.Duration(hoursBack) * time.Hour).
		Add(-time.Duration(minsBack) * time.Minute)
}

// seedEngagement creates like/favorite rows and sets each crosshair's likes
// counter to the exact number of like rows, keeping the denormalized count
// consistent from the start.
func seedEngagement(db *gorm.DB, users []models.User, crosshairs []models.Crosshair) error {
	for _, crosshair := range crosshairs {
		likers := rand.Intn(len(users) + 1)
		for _, user := range users[:likers] {
			like := models.Like{UserID: user.ID, CrosshairID: crosshair.ID}
			if err := db.Create(&like).Error; err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}
			if rand.Intn(3) == 0 {
				fav := models.Favorite{UserID: user.ID, CrosshairID: crosshair.ID}
				if err := db.Create(&fav).Error; err != nil {
					return fmt.Errorf("failed to create favorite: %w", err)
				}
			}
		}
		if err := db.Model(&models.Crosshair{}).
			Where("id = ?", crosshair.ID).
			Update("likes", likers).Error; err != nil {
			return fmt.Errorf("failed to set likes counter: %w", err)
		}
	}
	return nil
}
