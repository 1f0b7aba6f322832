package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"reticle/internal/models"
	"reticle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Get("/api/users/me", s.GetMyProfile)
	app.Get("/api/users/me/crosshairs", s.GetMyCrosshairs)
	app.Get("/api/users/me/favorites", s.GetMyFavorites)
	return app
}

func TestGetMyProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "aimlord", Email: "aim@example.com"}, nil)

	s := &Server{userRepo: mockRepo}
	app := newUserTestApp(s)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "aimlord", user.Username)
	mockRepo.AssertExpectations(t)
}

func TestGetMyCrosshairs(t *testing.T) {
	mockRepo := new(MockCrosshairRepository)
	mockRepo.On("GetByUserID", mock.Anything, uint(1), 20, 0, uint(1)).
		Return([]*models.Crosshair{{ID: 1, Name: "dot", UserID: 1}}, nil)

	s := &Server{crosshairRepo: mockRepo}
	s.crosshairService = service.NewCrosshairService(mockRepo, nil)
	app := newUserTestApp(s)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me/crosshairs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Crosshairs []*models.Crosshair `json:"crosshairs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Crosshairs, 1)
	assert.Equal(t, "dot", body.Crosshairs[0].Name)
	mockRepo.AssertExpectations(t)
}

func TestGetMyCrosshairsPaginationClamped(t *testing.T) {
	mockRepo := new(MockCrosshairRepository)
	mockRepo.On("GetByUserID", mock.Anything, uint(1), 100, 0, uint(1)).
		Return([]*models.Crosshair{}, nil)

	s := &Server{crosshairRepo: mockRepo}
	s.crosshairService = service.NewCrosshairService(mockRepo, nil)
	app := newUserTestApp(s)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me/crosshairs?limit=5000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestGetMyFavorites(t *testing.T) {
	mockRepo := new(MockCrosshairRepository)
	mockRepo.On("GetFavorites", mock.Anything, uint(1), 20, 0).
		Return([]*models.Crosshair{{ID: 2, Name: "saved"}}, nil)

	s := &Server{crosshairRepo: mockRepo}
	s.crosshairService = service.NewCrosshairService(mockRepo, nil)
	app := newUserTestApp(s)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me/favorites", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Crosshairs []*models.Crosshair `json:"crosshairs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Crosshairs, 1)
	assert.Equal(t, "saved", body.Crosshairs[0].Name)
	mockRepo.AssertExpectations(t)
}
