package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type offerResponse struct {
	ID         string `json:"id"`
	OperatorID string `json:"operator_id"`
	PriceCents int64  `json:"price_cents"`
	Aircraft   string `json:"aircraft"`
	Message    string `json:"message,omitempty"`
	OfferedAt  string `json:"offered_at"`
}

type discountResponse struct {
	Percentage   int64  `json:"percentage"`
	AmountCents  int64  `json:"amount_cents"`
	CappedReason string `json:"capped_reason,omitempty"`
}

type cancellationResponse struct {
	InitiatedBy  string `json:"initiated_by"`
	AtTime       string `json:"at_time"`
	PenaltyCents int64  `json:"penalty_cents"`
	RefundCents  int64  `json:"refund_cents"`
}

type bookingResponse struct {
	ID              string                `json:"id"`
	Type            string                `json:"type"`
	CustomerID      string                `json:"customer_id"`
	OperatorID      string                `json:"operator_id,omitempty"`
	FromAirport     string                `json:"from_airport"`
	ToAirport       string                `json:"to_airport"`
	DepartureTime   string                `json:"departure_time"`
	TripType        string                `json:"trip_type"`
	PassengerCount  int                   `json:"passenger_count"`
	BasePriceCents  int64                 `json:"base_price_cents"`
	FinalPriceCents int64                 `json:"final_price_cents"`
	MembershipTier  string                `json:"membership_tier"`
	State           string                `json:"state"`
	Offers          []offerResponse       `json:"offers"`
	Discount        *discountResponse     `json:"discount,omitempty"`
	Cancellation    *cancellationResponse `json:"cancellation,omitempty"`
}

type cancelBookingRequest struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorRole string `json:"actor_role" binding:"required"`
}

type cancelBookingResponse struct {
	Booking      bookingResponse `json:"booking"`
	PenaltyCents int64           `json:"penalty_cents"`
	RefundCents  int64           `json:"refund_cents"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/:id", h.get)
	router.POST("/:id/offers", h.submitOffer)
	router.POST("/:id/select", h.selectOffer)
	router.POST("/:id/payment", h.initiatePayment)
	router.POST("/:id/payment/confirm", h.confirmPayment)
	router.POST("/:id/cancel", h.cancel)
}

func (h *BookingHandler) submit(c *gin.Context) {
	var req booking.SubmitBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.SubmitBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) submitOffer(c *gin.Context) {
	var req booking.OfferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.SubmitOffer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

type selectOfferRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

func (h *BookingHandler) selectOffer(c *gin.Context) {
	var req selectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.SelectOffer(c.Request.Context(), c.Param("id"), req.OfferID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) initiatePayment(c *gin.Context) {
	updated, err := h.service.InitiatePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) confirmPayment(c *gin.Context) {
	updated, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), booking.CancelInput{
		BookingID: c.Param("id"),
		ActorID:   req.ActorID,
		ActorRole: domain.ActorRole(req.ActorRole),
		Now:       time.Now(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelBookingResponse{
		Booking:      toBookingResponse(result.Booking),
		PenaltyCents: result.PenaltyCents,
		RefundCents:  result.RefundCents,
	})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID,
		Type:            string(b.Type),
		CustomerID:      b.CustomerID,
		OperatorID:      b.OperatorID,
		FromAirport:     b.FromAirport,
		ToAirport:       b.ToAirport,
		DepartureTime:   b.DepartureTime.Format(time.RFC3339),
		TripType:        string(b.TripType),
		PassengerCount:  b.PassengerCount,
		BasePriceCents:  b.BasePriceCents,
		FinalPriceCents: b.FinalPriceCents(),
		MembershipTier:  string(b.MembershipTier),
		State:           string(b.State),
		Offers:          make([]offerResponse, 0, len(b.Offers)),
	}
	for _, o := range b.Offers {
		resp.Offers = append(resp.Offers, offerResponse{
			ID:         o.ID,
			OperatorID: o.OperatorID,
			PriceCents: o.PriceCents,
			Aircraft:   o.Aircraft,
			Message:    o.Message,
			OfferedAt:  o.OfferedAt.Format(time.RFC3339),
		})
	}
	if b.Discount != nil {
		resp.Discount = &discountResponse{
			Percentage:   b.Discount.Percentage,
			AmountCents:  b.Discount.AmountCents,
			CappedReason: b.Discount.CappedReason,
		}
	}
	if b.Cancellation != nil {
		resp.Cancellation = &cancellationResponse{
			InitiatedBy:  string(b.Cancellation.InitiatedBy),
			AtTime:       b.Cancellation.AtTime.Format(time.RFC3339),
			PenaltyCents: b.Cancellation.PenaltyCents,
			RefundCents:  b.Cancellation.RefundCents,
		}
	}
	return resp
}
