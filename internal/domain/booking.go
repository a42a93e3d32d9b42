package domain

import "time"

type BookingType string

const (
	BookingTypeRoute         BookingType = "ROUTE_BOOKING"
	BookingTypeFlightRequest BookingType = "FLIGHT_REQUEST"
)

type TripType string

const (
	TripTypeOneWay    TripType = "ONE_WAY"
	TripTypeRoundTrip TripType = "ROUND_TRIP"
)

type MembershipTier string

const (
	TierStandard MembershipTier = "STANDARD"
	TierBasic    MembershipTier = "BASIC"
	TierPremium  MembershipTier = "PREMIUM"
)

type ActorRole string

const (
	RoleCustomer ActorRole = "CUSTOMER"
	RoleOperator ActorRole = "OPERATOR"
)

type BookingState string

const (
	StateSubmitted      BookingState = "SUBMITTED"
	StateAwaitingOffers BookingState = "AWAITING_OFFERS"
	StateOfferSelected  BookingState = "OFFER_SELECTED"
	StatePendingPayment BookingState = "PENDING_PAYMENT"
	StateConfirmed      BookingState = "CONFIRMED"
	StateCompleted      BookingState = "COMPLETED"
	StateCancelled      BookingState = "CANCELLED"
)

// Terminal reports whether the state has no outgoing transitions.
func (s BookingState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

type Event string

const (
	EventOfferSubmitted   Event = "OFFER_SUBMITTED"
	EventOfferSelected    Event = "OFFER_SELECTED"
	EventPaymentInitiated Event = "PAYMENT_INITIATED"
	EventPaymentConfirmed Event = "PAYMENT_CONFIRMED"
	EventFlightCompleted  Event = "FLIGHT_COMPLETED"
	EventCancelRequested  Event = "CANCEL_REQUESTED"
)

// transitions is the single authority over legal state changes. Cancellation
// is handled in Next directly because it is legal from every non-terminal state.
var transitions = map[BookingState]map[Event]BookingState{
	StateSubmitted: {
		EventOfferSubmitted: StateAwaitingOffers,
		// route bookings carry exactly one implicit offer and skip the broadcast phase
		EventOfferSelected: StateOfferSelected,
	},
	StateAwaitingOffers: {
		EventOfferSubmitted: StateAwaitingOffers,
		EventOfferSelected:  StateOfferSelected,
	},
	StateOfferSelected: {
		EventPaymentInitiated: StatePendingPayment,
	},
	StatePendingPayment: {
		EventPaymentConfirmed: StateConfirmed,
	},
	StateConfirmed: {
		EventFlightCompleted: StateCompleted,
	},
}

// Next returns the state reached from s by ev, or ErrInvalidTransition.
// Terminal states absorb every event.
func Next(s BookingState, ev Event) (BookingState, error) {
	if s.Terminal() {
		return s, ErrInvalidTransition
	}
	if ev == EventCancelRequested {
		return StateCancelled, nil
	}
	next, ok := transitions[s][ev]
	if !ok {
		return s, ErrInvalidTransition
	}
	return next, nil
}

// Offer is a competing quote from an operator, owned by exactly one booking.
type Offer struct {
	ID         string
	OperatorID string
	PriceCents int64
	Aircraft   string
	Message    string
	OfferedAt  time.Time
}

type Discount struct {
	Percentage   int64
	AmountCents  int64
	CappedReason string
}

type Cancellation struct {
	InitiatedBy  ActorRole
	AtTime       time.Time
	PenaltyCents int64
	RefundCents  int64
}

type Booking struct {
	ID             string
	Type           BookingType
	CustomerID     string
	OperatorID     string
	FromAirport    string
	ToAirport      string
	DepartureTime  time.Time
	ReturnTime     *time.Time
	TripType       TripType
	PassengerCount int
	BasePriceCents int64
	MembershipTier MembershipTier
	State          BookingState
	Offers         []Offer
	Discount       *Discount
	Cancellation   *Cancellation
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FinalPriceCents is the base price less any applied discount.
func (b *Booking) FinalPriceCents() int64 {
	if b.Discount != nil {
		return b.BasePriceCents - b.Discount.AmountCents
	}
	return b.BasePriceCents
}

// OfferByID returns the offer with the given id, or nil.
func (b *Booking) OfferByID(id string) *Offer {
	for i := range b.Offers {
		if b.Offers[i].ID == id {
			return &b.Offers[i]
		}
	}
	return nil
}
