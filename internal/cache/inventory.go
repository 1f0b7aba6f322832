package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix          = "user:%d"
	CrosshairKeyPrefix     = "crosshair:%d"
	RevokedTokenKeyPrefix  = "revoked:%s"
	galleryFirstPageFormat = "gallery:first:%s"
)

const (
	UserTTL      = 5 * time.Minute
	CrosshairTTL = 10 * time.Minute

	// The gallery cache only holds the unfiltered first page; engagement
	// writes invalidate it, so a short TTL is enough to bound staleness
	// from direct SQL edits.
	GalleryFirstPageTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CrosshairKey(crosshairID uint) string {
	return fmt.Sprintf(CrosshairKeyPrefix, crosshairID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func GalleryFirstPageKey(sort string) string {
	return fmt.Sprintf(galleryFirstPageFormat, sort)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCrosshair(ctx context.Context, crosshairID uint) {
	Invalidate(ctx, CrosshairKey(crosshairID))
}

// InvalidateGallery drops the cached first page for every sort mode.
func InvalidateGallery(ctx context.Context) {
	for _, sort := range []string{"latest", "popular", "name"} {
		Invalidate(ctx, GalleryFirstPageKey(sort))
	}
}

// RevokeToken records a logged-out token's jti until the token would have
// expired anyway. Best-effort: without Redis, logout only clears the client.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) {
	if client != nil && jti != "" {
		client.Set(ctx, RevokedTokenKey(jti), "1", ttl)
	}
}

// IsTokenRevoked reports whether the jti has been revoked via RevokeToken.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	return err == nil && n > 0
}
