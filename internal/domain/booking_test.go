package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_HappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  BookingState
	}{
		{EventOfferSubmitted, StateAwaitingOffers},
		{EventOfferSubmitted, StateAwaitingOffers},
		{EventOfferSelected, StateOfferSelected},
		{EventPaymentInitiated, StatePendingPayment},
		{EventPaymentConfirmed, StateConfirmed},
		{EventFlightCompleted, StateCompleted},
	}

	state := StateSubmitted
	for _, step := range steps {
		next, err := Next(state, step.event)
		require.NoError(t, err)
		assert.Equal(t, step.want, next)
		state = next
	}
	assert.True(t, state.Terminal())
}

func TestNext_RouteBookingSkipsBroadcast(t *testing.T) {
	next, err := Next(StateSubmitted, EventOfferSelected)
	require.NoError(t, err)
	assert.Equal(t, StateOfferSelected, next)
}

func TestNext_CancelFromEveryNonTerminalState(t *testing.T) {
	for _, state := range []BookingState{StateSubmitted, StateAwaitingOffers, StateOfferSelected, StatePendingPayment, StateConfirmed} {
		next, err := Next(state, EventCancelRequested)
		require.NoErrorf(t, err, "state %s", state)
		assert.Equal(t, StateCancelled, next)
	}
}

// Terminal states absorb every event, including cancellation.
func TestNext_TerminalStatesAbsorb(t *testing.T) {
	events := []Event{EventOfferSubmitted, EventOfferSelected, EventPaymentInitiated, EventPaymentConfirmed, EventFlightCompleted, EventCancelRequested}

	for _, state := range []BookingState{StateCompleted, StateCancelled} {
		for _, ev := range events {
			next, err := Next(state, ev)
			assert.ErrorIsf(t, err, ErrInvalidTransition, "state %s event %s", state, ev)
			assert.Equal(t, state, next)
		}
	}
}

// Once a booking leaves Submitted no event ever leads back to it.
func TestNext_SubmittedNeverRevisited(t *testing.T) {
	events := []Event{EventOfferSubmitted, EventOfferSelected, EventPaymentInitiated, EventPaymentConfirmed, EventFlightCompleted, EventCancelRequested}
	states := []BookingState{StateAwaitingOffers, StateOfferSelected, StatePendingPayment, StateConfirmed, StateCompleted, StateCancelled}

	for _, state := range states {
		for _, ev := range events {
			next, err := Next(state, ev)
			if err == nil {
				assert.NotEqual(t, StateSubmitted, next)
			}
		}
	}
}

func TestNext_OutOfOrderEvents(t *testing.T) {
	tests := []struct {
		state BookingState
		event Event
	}{
		{StateSubmitted, EventPaymentInitiated},
		{StateSubmitted, EventPaymentConfirmed},
		{StateSubmitted, EventFlightCompleted},
		{StateAwaitingOffers, EventPaymentConfirmed},
		{StateOfferSelected, EventOfferSelected},
		{StateOfferSelected, EventPaymentConfirmed},
		{StatePendingPayment, EventOfferSubmitted},
		{StateConfirmed, EventPaymentInitiated},
	}

	for _, tt := range tests {
		next, err := Next(tt.state, tt.event)
		assert.ErrorIsf(t, err, ErrInvalidTransition, "state %s event %s", tt.state, tt.event)
		assert.Equal(t, tt.state, next)
	}
}

func TestBooking_FinalPriceCents(t *testing.T) {
	b := &Booking{BasePriceCents: 2_000_000}
	assert.Equal(t, int64(2_000_000), b.FinalPriceCents())

	b.Discount = &Discount{Percentage: 5, AmountCents: 100_000}
	assert.Equal(t, int64(1_900_000), b.FinalPriceCents())
}

func TestBooking_OfferByID(t *testing.T) {
	b := &Booking{Offers: []Offer{{ID: "a"}, {ID: "b"}}}

	assert.Equal(t, "b", b.OfferByID("b").ID)
	assert.Nil(t, b.OfferByID("missing"))
}
