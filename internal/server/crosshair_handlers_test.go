package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"reticle/internal/models"
	"reticle/internal/repository"
	"reticle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockCrosshairRepository is a mock implementation of repository.CrosshairRepository
type MockCrosshairRepository struct {
	mock.Mock
}

func (m *MockCrosshairRepository) Create(ctx context.Context, crosshair *models.Crosshair) error {
	args := m.Called(ctx, crosshair)
	return args.Error(0)
}

func (m *MockCrosshairRepository) GetByID(ctx context.Context, id, currentUserID uint) (*models.Crosshair, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Crosshair), args.Error(1)
}

func (m *MockCrosshairRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Crosshair, error) {
	args := m.Called(ctx, userID, limit, offset, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Crosshair), args.Error(1)
}

func (m *MockCrosshairRepository) GetFavorites(ctx context.Context, userID uint, limit, offset int) ([]*models.Crosshair, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Crosshair), args.Error(1)
}

func (m *MockCrosshairRepository) List(ctx context.Context, q repository.ListQuery, currentUserID uint) (*repository.CrosshairPage, error) {
	args := m.Called(ctx, q, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CrosshairPage), args.Error(1)
}

func (m *MockCrosshairRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// newCrosshairTestApp wires the crosshair routes onto a bare Fiber app with a
// fake authenticated user, bypassing the real JWT middleware.
func newCrosshairTestApp(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	if userID != 0 {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", userID)
			return c.Next()
		})
	}
	app.Get("/api/crosshairs/", s.GetCrosshairs)
	app.Get("/api/crosshairs/:id", s.GetCrosshair)
	app.Post("/api/crosshairs/", s.CreateCrosshair)
	app.Delete("/api/crosshairs/:id", s.DeleteCrosshair)
	app.Get("/api/heroes", s.GetHeroes)
	return app
}

func TestGetCrosshairs(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(*MockCrosshairRepository)
		expectedStatus int
	}{
		{
			name: "Default Listing",
			url:  "/api/crosshairs/",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("List", mock.Anything, repository.ListQuery{
					Sort: "latest", Page: 1, Limit: service.DefaultPageSize,
				}, uint(0)).Return(&repository.CrosshairPage{
					Items: []*models.Crosshair{{ID: 1, Name: "dot"}},
					Page:  1, Limit: service.DefaultPageSize,
				}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Oversized Limit Clamped",
			url:  "/api/crosshairs/?limit=999&page=2",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("List", mock.Anything, repository.ListQuery{
					Sort: "latest", Page: 2, Limit: service.MaxPageSize,
				}, uint(0)).Return(&repository.CrosshairPage{
					Items: []*models.Crosshair{}, Page: 2, Limit: service.MaxPageSize,
				}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Hero Filter Canonicalized",
			url:  "/api/crosshairs/?hero=%E9%BB%91%E7%99%BE%E5%90%88", // 黑百合
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("List", mock.Anything, repository.ListQuery{
					Hero: "widowmaker", Sort: "latest", Page: 1, Limit: service.DefaultPageSize,
				}, uint(0)).Return(&repository.CrosshairPage{
					Items: []*models.Crosshair{}, Page: 1, Limit: service.DefaultPageSize,
				}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCrosshairRepository)
			tt.mockSetup(mockRepo)

			s := &Server{crosshairRepo: mockRepo}
			s.crosshairService = service.NewCrosshairService(mockRepo, nil)
			app := newCrosshairTestApp(s, 0)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetCrosshair(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(*MockCrosshairRepository)
		expectedStatus int
	}{
		{
			name: "Found",
			url:  "/api/crosshairs/1",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("GetByID", mock.Anything, uint(1), uint(0)).
					Return(&models.Crosshair{ID: 1, Name: "dot"}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Not Found",
			url:  "/api/crosshairs/99",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("GetByID", mock.Anything, uint(99), uint(0)).
					Return(nil, gorm.ErrRecordNotFound)
			},
			expectedStatus: fiber.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			url:            "/api/crosshairs/abc",
			mockSetup:      func(m *MockCrosshairRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCrosshairRepository)
			tt.mockSetup(mockRepo)

			s := &Server{crosshairRepo: mockRepo}
			s.crosshairService = service.NewCrosshairService(mockRepo, nil)
			app := newCrosshairTestApp(s, 0)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCreateCrosshair(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockCrosshairRepository, *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Valid Crosshair",
			body: `{"name":"绿点","hero":"widowmaker","type":"dot","color":"#00FF00","thickness":2,"crosshair_length":8,"opacity":100,"scale":1}`,
			mockSetup: func(m *MockCrosshairRepository, u *MockUserRepository) {
				u.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Username: "aimlord"}, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*models.Crosshair")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*models.Crosshair).ID = 10
					}).Return(nil)
				m.On("GetByID", mock.Anything, uint(10), uint(1)).
					Return(&models.Crosshair{ID: 10, Name: "绿点", Author: "aimlord"}, nil)
			},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name: "Missing Name",
			body: `{"hero":"widowmaker","type":"dot","color":"#00FF00","thickness":2,"opacity":100,"scale":1}`,
			mockSetup: func(m *MockCrosshairRepository, u *MockUserRepository) {
				u.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Username: "aimlord"}, nil)
			},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Thickness Out Of Range",
			body: `{"name":"fat","hero":"widowmaker","type":"cross","color":"#fff","thickness":11,"opacity":100,"scale":1}`,
			mockSetup: func(m *MockCrosshairRepository, u *MockUserRepository) {
				u.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Username: "aimlord"}, nil)
			},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCrosshairRepository)
			mockUserRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo, mockUserRepo)

			s := &Server{crosshairRepo: mockRepo, userRepo: mockUserRepo}
			s.crosshairService = service.NewCrosshairService(mockRepo, nil)
			app := newCrosshairTestApp(s, 1)

			req := httptest.NewRequest("POST", "/api/crosshairs/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestDeleteCrosshair(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockSetup      func(*MockCrosshairRepository)
		expectedStatus int
	}{
		{
			name: "Owner Deletes",
			url:  "/api/crosshairs/5",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("GetByID", mock.Anything, uint(5), uint(1)).
					Return(&models.Crosshair{ID: 5, UserID: 1}, nil)
				m.On("Delete", mock.Anything, uint(5)).Return(nil)
			},
			expectedStatus: fiber.StatusNoContent,
		},
		{
			name: "Not The Owner",
			url:  "/api/crosshairs/5",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("GetByID", mock.Anything, uint(5), uint(1)).
					Return(&models.Crosshair{ID: 5, UserID: 2}, nil)
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name: "Missing Crosshair",
			url:  "/api/crosshairs/99",
			mockSetup: func(m *MockCrosshairRepository) {
				m.On("GetByID", mock.Anything, uint(99), uint(1)).
					Return(nil, gorm.ErrRecordNotFound)
			},
			expectedStatus: fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCrosshairRepository)
			tt.mockSetup(mockRepo)

			s := &Server{crosshairRepo: mockRepo}
			s.crosshairService = service.NewCrosshairService(mockRepo, nil)
			app := newCrosshairTestApp(s, 1)

			resp, err := app.Test(httptest.NewRequest("DELETE", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetHeroes(t *testing.T) {
	s := &Server{}
	app := newCrosshairTestApp(s, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/heroes", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
