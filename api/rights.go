package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/service/booking"
)

type RightsHandler struct {
	service booking.BookingUseCase
}

func NewRightsHandler(service booking.BookingUseCase) *RightsHandler {
	return &RightsHandler{service: service}
}

func (h *RightsHandler) Register(router *gin.RouterGroup) {
	router.GET("/:role/:actor", h.remaining)
}

// RegisterAdmin mounts the administrative reset, the only way an exhausted
// actor regains rights.
func (h *RightsHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/:role/:actor/reset", h.reset)
}

func parseRole(raw string) (domain.ActorRole, bool) {
	switch domain.ActorRole(raw) {
	case domain.RoleCustomer, domain.RoleOperator:
		return domain.ActorRole(raw), true
	}
	return "", false
}

func parseTier(raw string) (domain.MembershipTier, bool) {
	if raw == "" {
		return domain.TierBasic, true
	}
	switch domain.MembershipTier(raw) {
	case domain.TierStandard, domain.TierBasic, domain.TierPremium:
		return domain.MembershipTier(raw), true
	}
	return "", false
}

func (h *RightsHandler) remaining(c *gin.Context) {
	role, ok := parseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	tier, ok := parseTier(c.Query("tier"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown membership tier"})
		return
	}

	remaining, err := h.service.RemainingRights(c.Request.Context(), c.Param("actor"), role, tier)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"actor_id":  c.Param("actor"),
		"role":      role,
		"remaining": remaining,
	})
}

func (h *RightsHandler) reset(c *gin.Context) {
	role, ok := parseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	if err := h.service.ResetRights(c.Request.Context(), c.Param("actor"), role); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"actor_id": c.Param("actor"),
		"role":     role,
		"reset":    true,
	})
}
