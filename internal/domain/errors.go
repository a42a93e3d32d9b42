package domain

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrRightsExhausted   = errors.New("no cancellation rights remaining")
	ErrNoOffersAvailable = errors.New("no offers available")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrRouteNotFound     = errors.New("route not found")
	ErrBookingLocked     = errors.New("booking is being updated by another request")
)
