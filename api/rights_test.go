package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRightsHandler_remaining(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewRightsHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/rights/CUSTOMER/cust-1", nil)
	c.Params = gin.Params{{Key: "role", Value: "CUSTOMER"}, {Key: "actor", Value: "cust-1"}}

	// tier defaults to BASIC when the query param is absent
	mockService.On("RemainingRights", c.Request.Context(), "cust-1", domain.RoleCustomer, domain.TierBasic).Return(7, nil)

	handler.remaining(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining":7`)
	mockService.AssertExpectations(t)
}

func TestRightsHandler_remaining_StandardTier(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewRightsHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/rights/CUSTOMER/cust-1?tier=STANDARD", nil)
	c.Params = gin.Params{{Key: "role", Value: "CUSTOMER"}, {Key: "actor", Value: "cust-1"}}

	mockService.On("RemainingRights", c.Request.Context(), "cust-1", domain.RoleCustomer, domain.TierStandard).Return(0, nil)

	handler.remaining(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining":0`)
	mockService.AssertExpectations(t)
}

func TestRightsHandler_remaining_UnknownTier(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewRightsHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/rights/CUSTOMER/cust-1?tier=PLATINUM", nil)
	c.Params = gin.Params{{Key: "role", Value: "CUSTOMER"}, {Key: "actor", Value: "cust-1"}}

	handler.remaining(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "RemainingRights", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRightsHandler_remaining_UnknownRole(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewRightsHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/rights/PILOT/cust-1", nil)
	c.Params = gin.Params{{Key: "role", Value: "PILOT"}, {Key: "actor", Value: "cust-1"}}

	handler.remaining(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "RemainingRights", mock.Anything, mock.Anything, mock.Anything)
}

func TestRightsHandler_reset(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewRightsHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/admin/rights/OPERATOR/op-1/reset", nil)
	c.Params = gin.Params{{Key: "role", Value: "OPERATOR"}, {Key: "actor", Value: "op-1"}}

	mockService.On("ResetRights", c.Request.Context(), "op-1", domain.RoleOperator).Return(nil)

	handler.reset(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reset":true`)
	mockService.AssertExpectations(t)
}
