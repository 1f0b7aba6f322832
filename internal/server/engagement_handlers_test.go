package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"reticle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockEngagementRepository is a mock implementation of repository.EngagementRepository
type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) SetLiked(ctx context.Context, userID, crosshairID uint, liked bool) (bool, int, error) {
	args := m.Called(ctx, userID, crosshairID, liked)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockEngagementRepository) SetFavorited(ctx context.Context, userID, crosshairID uint, favorited bool) (bool, error) {
	args := m.Called(ctx, userID, crosshairID, favorited)
	return args.Bool(0), args.Error(1)
}

func newEngagementTestApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Post("/api/crosshairs/:id/engagement", s.ApplyEngagement)
	return app
}

func TestApplyEngagementHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		mockSetup      func(*MockEngagementRepository)
		expectedStatus int
	}{
		{
			name: "Like",
			url:  "/api/crosshairs/2/engagement",
			body: `{"action":"like"}`,
			mockSetup: func(m *MockEngagementRepository) {
				m.On("SetLiked", mock.Anything, uint(1), uint(2), true).
					Return(true, 5, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Unfavorite",
			url:  "/api/crosshairs/2/engagement",
			body: `{"action":"unfavorite"}`,
			mockSetup: func(m *MockEngagementRepository) {
				m.On("SetFavorited", mock.Anything, uint(1), uint(2), false).
					Return(true, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name:           "Unknown Action",
			url:            "/api/crosshairs/2/engagement",
			body:           `{"action":"boost"}`,
			mockSetup:      func(m *MockEngagementRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Missing Crosshair",
			url:  "/api/crosshairs/99/engagement",
			body: `{"action":"like"}`,
			mockSetup: func(m *MockEngagementRepository) {
				m.On("SetLiked", mock.Anything, uint(1), uint(99), true).
					Return(false, 0, gorm.ErrRecordNotFound)
			},
			expectedStatus: fiber.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			url:            "/api/crosshairs/abc/engagement",
			body:           `{"action":"like"}`,
			mockSetup:      func(m *MockEngagementRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEngagementRepository)
			tt.mockSetup(mockRepo)

			s := &Server{engagementRepo: mockRepo}
			s.engagementService = service.NewEngagementService(mockRepo)
			app := newEngagementTestApp(s)

			req := httptest.NewRequest("POST", tt.url, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestApplyEngagementResponseBody(t *testing.T) {
	mockRepo := new(MockEngagementRepository)
	mockRepo.On("SetLiked", mock.Anything, uint(1), uint(2), true).
		Return(true, 7, nil)

	s := &Server{engagementRepo: mockRepo}
	s.engagementService = service.NewEngagementService(mockRepo)
	app := newEngagementTestApp(s)

	req := httptest.NewRequest("POST", "/api/crosshairs/2/engagement", strings.NewReader(`{"action":"like"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Liked     *bool `json:"liked"`
		Favorited *bool `json:"favorited"`
		Likes     *int  `json:"likeCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Liked)
	assert.True(t, *body.Liked)
	require.NotNil(t, body.Likes)
	assert.Equal(t, 7, *body.Likes)
	assert.Nil(t, body.Favorited)
}
