package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRouteUseCase is a mock implementation of routes.RouteUseCase
type MockRouteUseCase struct {
	mock.Mock
}

func (m *MockRouteUseCase) List(ctx context.Context) ([]domain.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Route), args.Error(1)
}

func (m *MockRouteUseCase) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockRouteUseCase) BaggageAllowance(class domain.AircraftClass) (policy.BaggageAllowance, bool) {
	args := m.Called(class)
	return args.Get(0).(policy.BaggageAllowance), args.Bool(1)
}

func TestRouteHandler_list(t *testing.T) {
	mockService := &MockRouteUseCase{}
	handler := NewRouteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/routes", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Route{
		{ID: 1, OperatorID: "op-1", FromAirport: "TEB", ToAirport: "VNY"},
	}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TEB")
	mockService.AssertExpectations(t)
}

func TestRouteHandler_get_InvalidID(t *testing.T) {
	mockService := &MockRouteUseCase{}
	handler := NewRouteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/routes/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRouteHandler_get_NotFound(t *testing.T) {
	mockService := &MockRouteUseCase{}
	handler := NewRouteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/routes/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	mockService.On("GetByID", c.Request.Context(), int64(5)).Return(nil, domain.ErrRouteNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteHandler_baggage(t *testing.T) {
	mockService := &MockRouteUseCase{}
	handler := NewRouteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/aircraft/LIGHT/baggage", nil)
	c.Params = gin.Params{{Key: "class", Value: "LIGHT"}}

	mockService.On("BaggageAllowance", domain.AircraftLight).Return(policy.BaggageAllowance{CheckedBags: 4, CargoKg: 100}, true)

	handler.baggage(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"checked_bags":4`)
}

func TestRouteHandler_baggage_UnknownClass(t *testing.T) {
	mockService := &MockRouteUseCase{}
	handler := NewRouteHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/aircraft/BLIMP/baggage", nil)
	c.Params = gin.Params{{Key: "class", Value: "BLIMP"}}

	mockService.On("BaggageAllowance", domain.AircraftClass("BLIMP")).Return(policy.BaggageAllowance{}, false)

	handler.baggage(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
