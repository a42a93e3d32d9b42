package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/service/routes"
)

type RouteHandler struct {
	service routes.RouteUseCase
}

func NewRouteHandler(service routes.RouteUseCase) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

// RegisterAircraft mounts the baggage allowance lookup.
func (h *RouteHandler) RegisterAircraft(router *gin.RouterGroup) {
	router.GET("/:class/baggage", h.baggage)
}

func (h *RouteHandler) list(c *gin.Context) {
	published, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, published)
}

func (h *RouteHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	route, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (h *RouteHandler) baggage(c *gin.Context) {
	class := domain.AircraftClass(c.Param("class"))
	allowance, ok := h.service.BaggageAllowance(class)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown aircraft class"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"aircraft_class": class,
		"checked_bags":   allowance.CheckedBags,
		"cargo_kg":       allowance.CargoKg,
	})
}
