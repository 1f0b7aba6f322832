package service

import (
	"context"
	"errors"
	"testing"

	"reticle/internal/models"
	"reticle/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// crosshairRepoStub is a stub for repository.CrosshairRepository.
type crosshairRepoStub struct {
	createFn       func(context.Context, *models.Crosshair) error
	getByIDFn      func(context.Context, uint, uint) (*models.Crosshair, error)
	getByUserIDFn  func(context.Context, uint, int, int, uint) ([]*models.Crosshair, error)
	getFavoritesFn func(context.Context, uint, int, int) ([]*models.Crosshair, error)
	listFn         func(context.Context, repository.ListQuery, uint) (*repository.CrosshairPage, error)
	deleteFn       func(context.Context, uint) error
}

func (s *crosshairRepoStub) Create(ctx context.Context, crosshair *models.Crosshair) error {
	return s.createFn(ctx, crosshair)
}
func (s *crosshairRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Crosshair, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *crosshairRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Crosshair, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *crosshairRepoStub) GetFavorites(ctx context.Context, userID uint, limit, offset int) ([]*models.Crosshair, error) {
	return s.getFavoritesFn(ctx, userID, limit, offset)
}
func (s *crosshairRepoStub) List(ctx context.Context, q repository.ListQuery, currentUserID uint) (*repository.CrosshairPage, error) {
	return s.listFn(ctx, q, currentUserID)
}
func (s *crosshairRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCrosshairRepo() *crosshairRepoStub {
	return &crosshairRepoStub{
		createFn: func(_ context.Context, c *models.Crosshair) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Crosshair, error) {
			return &models.Crosshair{ID: id}, nil
		},
		getByUserIDFn:  func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Crosshair, error) { return nil, nil },
		getFavoritesFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Crosshair, error) { return nil, nil },
		listFn: func(_ context.Context, q repository.ListQuery, _ uint) (*repository.CrosshairPage, error) {
			return &repository.CrosshairPage{Page: q.Page, Limit: q.Limit}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// storeStub is a stub for storage.ObjectStorage.
type storeStub struct {
	uploadFn func(context.Context, uint, string, []byte) (string, string, error)
	deleteFn func(context.Context, string) error
	deleted  []string
}

func (s *storeStub) Upload(ctx context.Context, userID uint, contentType string, data []byte) (string, string, error) {
	return s.uploadFn(ctx, userID, contentType, data)
}
func (s *storeStub) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteFn != nil {
		return s.deleteFn(ctx, key)
	}
	return nil
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func validCreateInput() CreateCrosshairInput {
	return CreateCrosshairInput{
		UserID:    1,
		Author:    "aimlord",
		Name:      "职业准星",
		Hero:      "widowmaker",
		Type:      "cross",
		Color:     "#00FF00",
		Thickness: 2,
		Length:    8,
		CenterGap: 4,
		Opacity:   100,
		Scale:     1,
	}
}

func TestCreateCrosshairValidation(t *testing.T) {
	svc := NewCrosshairService(noopCrosshairRepo(), nil)

	tests := []struct {
		name   string
		mutate func(*CreateCrosshairInput)
	}{
		{"Empty Name", func(in *CreateCrosshairInput) { in.Name = "" }},
		{"Whitespace Name", func(in *CreateCrosshairInput) { in.Name = "   " }},
		{"Missing Type", func(in *CreateCrosshairInput) { in.Type = "" }},
		{"Missing Color", func(in *CreateCrosshairInput) { in.Color = "" }},
		{"Thickness Over Max", func(in *CreateCrosshairInput) { in.Thickness = 11 }},
		{"Negative Thickness", func(in *CreateCrosshairInput) { in.Thickness = -1 }},
		{"Length Over Max", func(in *CreateCrosshairInput) { in.Length = 41 }},
		{"Gap Over Max", func(in *CreateCrosshairInput) { in.CenterGap = 41 }},
		{"Opacity Over Max", func(in *CreateCrosshairInput) { in.Opacity = 101 }},
		{"Negative Opacity", func(in *CreateCrosshairInput) { in.Opacity = -1 }},
		{"Dot Size Over Max", func(in *CreateCrosshairInput) { in.DotSize = 26 }},
		{"Dot Opacity Over Max", func(in *CreateCrosshairInput) { in.DotOpacity = 101 }},
		{"Scale Zero", func(in *CreateCrosshairInput) { in.Scale = 0 }},
		{"Unknown Hero", func(in *CreateCrosshairInput) { in.Hero = "nobody" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.CreateCrosshair(context.Background(), in)
			assertValidationError(t, err)
		})
	}
}

func TestCreateCrosshairBoundaryValues(t *testing.T) {
	svc := NewCrosshairService(noopCrosshairRepo(), nil)

	// Zero is a legal value for thickness (an invisible-line style), and
	// scale has no declared upper bound.
	tests := []struct {
		name   string
		mutate func(*CreateCrosshairInput)
	}{
		{"Zero Thickness", func(in *CreateCrosshairInput) { in.Thickness = 0 }},
		{"Max Thickness", func(in *CreateCrosshairInput) { in.Thickness = 10 }},
		{"Large Scale", func(in *CreateCrosshairInput) { in.Scale = 25 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.CreateCrosshair(context.Background(), in)
			assert.NoError(t, err)
		})
	}
}

func TestCreateCrosshairCanonicalizesHero(t *testing.T) {
	repo := noopCrosshairRepo()
	var created *models.Crosshair
	repo.createFn = func(_ context.Context, c *models.Crosshair) error {
		c.ID = 7
		created = c
		return nil
	}
	svc := NewCrosshairService(repo, nil)

	in := validCreateInput()
	in.Hero = "黑百合" // display name alias for widowmaker

	_, err := svc.CreateCrosshair(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "widowmaker", created.Hero)
}

func TestCreateCrosshairImageWithoutStorage(t *testing.T) {
	svc := NewCrosshairService(noopCrosshairRepo(), nil)

	in := validCreateInput()
	in.ImageData = []byte{1, 2, 3}
	in.ImageType = "image/png"

	_, err := svc.CreateCrosshair(context.Background(), in)
	assertValidationError(t, err)
}

func TestCreateCrosshairUploadsImage(t *testing.T) {
	repo := noopCrosshairRepo()
	var created *models.Crosshair
	repo.createFn = func(_ context.Context, c *models.Crosshair) error {
		c.ID = 3
		created = c
		return nil
	}
	store := &storeStub{
		uploadFn: func(_ context.Context, _ uint, _ string, _ []byte) (string, string, error) {
			return "crosshairs/1/abc.png", "https://cdn.example.com/crosshairs/1/abc.png", nil
		},
	}
	svc := NewCrosshairService(repo, store)

	in := validCreateInput()
	in.ImageData = []byte{1, 2, 3}
	in.ImageType = "image/png"

	_, err := svc.CreateCrosshair(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.ImageKey)
	assert.Equal(t, "crosshairs/1/abc.png", *created.ImageKey)
	require.NotNil(t, created.ImageURL)
	assert.Equal(t, "https://cdn.example.com/crosshairs/1/abc.png", *created.ImageURL)
}

func TestCreateCrosshairCleansUpImageOnDBFailure(t *testing.T) {
	repo := noopCrosshairRepo()
	repo.createFn = func(_ context.Context, _ *models.Crosshair) error {
		return errors.New("db down")
	}
	store := &storeStub{
		uploadFn: func(_ context.Context, _ uint, _ string, _ []byte) (string, string, error) {
			return "crosshairs/1/orphan.png", "https://cdn.example.com/crosshairs/1/orphan.png", nil
		},
	}
	svc := NewCrosshairService(repo, store)

	in := validCreateInput()
	in.ImageData = []byte{1}
	in.ImageType = "image/png"

	_, err := svc.CreateCrosshair(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, []string{"crosshairs/1/orphan.png"}, store.deleted)
}

func TestListCrosshairsNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   ListCrosshairsInput
		want repository.ListQuery
	}{
		{
			name: "Defaults",
			in:   ListCrosshairsInput{},
			want: repository.ListQuery{Sort: "latest", Page: 1, Limit: DefaultPageSize},
		},
		{
			name: "Negative Page Clamped",
			in:   ListCrosshairsInput{Page: -3, Limit: 10},
			want: repository.ListQuery{Sort: "latest", Page: 1, Limit: 10},
		},
		{
			name: "Limit Clamped To Max",
			in:   ListCrosshairsInput{Page: 2, Limit: 999},
			want: repository.ListQuery{Sort: "latest", Page: 2, Limit: MaxPageSize},
		},
		{
			name: "Unknown Sort Falls Back To Latest",
			in:   ListCrosshairsInput{Sort: "spiciest", Page: 1, Limit: 12},
			want: repository.ListQuery{Sort: "latest", Page: 1, Limit: 12},
		},
		{
			name: "Popular Sort Preserved",
			in:   ListCrosshairsInput{Sort: "popular", Page: 1, Limit: 12},
			want: repository.ListQuery{Sort: "popular", Page: 1, Limit: 12},
		},
		{
			name: "Hero Display Name Canonicalized",
			in:   ListCrosshairsInput{Hero: "黑百合", Page: 1, Limit: 12},
			want: repository.ListQuery{Hero: "widowmaker", Sort: "latest", Page: 1, Limit: 12},
		},
		{
			name: "Filters Trimmed",
			in:   ListCrosshairsInput{Search: "  green dot ", Author: " aimlord ", Page: 1, Limit: 12},
			want: repository.ListQuery{Search: "green dot", Author: "aimlord", Sort: "latest", Page: 1, Limit: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopCrosshairRepo()
			var got repository.ListQuery
			repo.listFn = func(_ context.Context, q repository.ListQuery, _ uint) (*repository.CrosshairPage, error) {
				got = q
				return &repository.CrosshairPage{Page: q.Page, Limit: q.Limit}, nil
			}
			svc := NewCrosshairService(repo, nil)

			_, err := svc.ListCrosshairs(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetCrosshairNotFound(t *testing.T) {
	repo := noopCrosshairRepo()
	repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Crosshair, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewCrosshairService(repo, nil)

	_, err := svc.GetCrosshair(context.Background(), 99, 0)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteCrosshairOwnership(t *testing.T) {
	repo := noopCrosshairRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Crosshair, error) {
		return &models.Crosshair{ID: id, UserID: 2}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := NewCrosshairService(repo, nil)

	err := svc.DeleteCrosshair(context.Background(), DeleteCrosshairInput{UserID: 1, CrosshairID: 5})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	assert.False(t, deleted)
}

func TestDeleteCrosshairRemovesImage(t *testing.T) {
	key := "crosshairs/1/old.png"
	repo := noopCrosshairRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Crosshair, error) {
		return &models.Crosshair{ID: id, UserID: 1, ImageKey: &key}, nil
	}
	store := &storeStub{}
	svc := NewCrosshairService(repo, store)

	err := svc.DeleteCrosshair(context.Background(), DeleteCrosshairInput{UserID: 1, CrosshairID: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{key}, store.deleted)
}

func TestDeleteCrosshairSurvivesImageDeleteFailure(t *testing.T) {
	key := "crosshairs/1/stuck.png"
	repo := noopCrosshairRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Crosshair, error) {
		return &models.Crosshair{ID: id, UserID: 1, ImageKey: &key}, nil
	}
	store := &storeStub{
		deleteFn: func(_ context.Context, _ string) error { return errors.New("storage down") },
	}
	svc := NewCrosshairService(repo, store)

	err := svc.DeleteCrosshair(context.Background(), DeleteCrosshairInput{UserID: 1, CrosshairID: 5})
	assert.NoError(t, err)
}
