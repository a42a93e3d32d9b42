package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/mvolosh/jetcharter/internal/kafka"
	"github.com/mvolosh/jetcharter/internal/policy"
	"github.com/mvolosh/jetcharter/internal/repository"
	"github.com/mvolosh/jetcharter/internal/rights"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error)
	SubmitOffer(ctx context.Context, bookingID string, input OfferInput) (*domain.Booking, error)
	SelectOffer(ctx context.Context, bookingID, offerID string) (*domain.Booking, error)
	InitiatePayment(ctx context.Context, bookingID string) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, input CancelInput) (*CancelResult, error)
	CompletePastDepartures(ctx context.Context, now time.Time) ([]domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	RemainingRights(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (int, error)
	ResetRights(ctx context.Context, actorID string, role domain.ActorRole) error
}

// Cache is the optional cross-process lock provider. A nil cache degrades to
// in-process serialization only.
type Cache interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, bookingID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	routes             repository.RouteRepository
	ledger             rights.Ledger
	usage              rights.DiscountUsage
	rates              policy.RateTable
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration

	// one mutex per in-flight booking id; transitions for a booking never
	// interleave, and an entry is dropped once its last holder releases it
	locksMu sync.Mutex
	locks   map[string]*bookingLock
}

type bookingLock struct {
	mu   sync.Mutex
	refs int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	routes repository.RouteRepository,
	ledger rights.Ledger,
	usage rights.DiscountUsage,
	rates policy.RateTable,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		routes:       routes,
		ledger:       ledger,
		usage:        usage,
		rates:        rates,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		lockTTL:      30 * time.Second,
		locks:        make(map[string]*bookingLock),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type SubmitBookingInput struct {
	Type           domain.BookingType    `json:"type"`
	CustomerID     string                `json:"customer_id"`
	RouteID        int64                 `json:"route_id"`
	FromAirport    string                `json:"from_airport"`
	ToAirport      string                `json:"to_airport"`
	DepartureTime  time.Time             `json:"departure_time"`
	ReturnTime     *time.Time            `json:"return_time"`
	TripType       domain.TripType       `json:"trip_type"`
	PassengerCount int                   `json:"passenger_count"`
	BasePriceCents int64                 `json:"base_price_cents"`
	MembershipTier domain.MembershipTier `json:"membership_tier"`
}

type OfferInput struct {
	OperatorID string `json:"operator_id"`
	PriceCents int64  `json:"price_cents"`
	Aircraft   string `json:"aircraft"`
	Message    string `json:"message"`
}

type CancelInput struct {
	BookingID string
	ActorID   string
	ActorRole domain.ActorRole
	Now       time.Time
}

type CancelResult struct {
	Booking      *domain.Booking
	PenaltyCents int64
	RefundCents  int64
}

func (s *BookingService) SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error) {
	if input.CustomerID == "" {
		return nil, errors.New("customer id is required")
	}
	if input.PassengerCount <= 0 {
		return nil, errors.New("passenger count must be positive")
	}
	switch input.MembershipTier {
	case domain.TierStandard, domain.TierBasic, domain.TierPremium:
	default:
		return nil, errors.New("unknown membership tier")
	}

	booking := &domain.Booking{
		ID:             uuid.NewString(),
		Type:           input.Type,
		CustomerID:     input.CustomerID,
		TripType:       input.TripType,
		ReturnTime:     input.ReturnTime,
		PassengerCount: input.PassengerCount,
		MembershipTier: input.MembershipTier,
		State:          domain.StateSubmitted,
	}
	if booking.TripType == "" {
		booking.TripType = domain.TripTypeOneWay
	}

	switch input.Type {
	case domain.BookingTypeRoute:
		route, err := s.routes.GetByID(ctx, input.RouteID)
		if err != nil {
			return nil, err
		}
		booking.OperatorID = route.OperatorID
		booking.FromAirport = route.FromAirport
		booking.ToAirport = route.ToAirport
		booking.DepartureTime = route.DepartureTime
		booking.BasePriceCents = route.PriceCents
		booking.Offers = []domain.Offer{{
			ID:         uuid.NewString(),
			OperatorID: route.OperatorID,
			PriceCents: route.PriceCents,
			Aircraft:   route.Aircraft,
			Message:    "published route fare",
			OfferedAt:  time.Now(),
		}}

		discount, err := s.reserveDiscount(ctx, booking.CustomerID, booking.OperatorID, booking.MembershipTier, booking.BasePriceCents)
		if err != nil {
			return nil, err
		}
		booking.Discount = discount

		// the advertised route is the single implicit offer, so the booking
		// skips the broadcast phase
		next, err := domain.Next(booking.State, domain.EventOfferSelected)
		if err != nil {
			return nil, err
		}
		booking.State = next
	case domain.BookingTypeFlightRequest:
		if input.FromAirport == "" || input.ToAirport == "" {
			return nil, errors.New("route endpoints are required")
		}
		if input.DepartureTime.IsZero() {
			return nil, errors.New("departure time is required")
		}
		if input.BasePriceCents <= 0 {
			return nil, errors.New("base price must be positive")
		}
		booking.FromAirport = input.FromAirport
		booking.ToAirport = input.ToAirport
		booking.DepartureTime = input.DepartureTime
		booking.BasePriceCents = input.BasePriceCents
	default:
		return nil, errors.New("unknown booking type")
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.releaseDiscount(ctx, booking)
		return nil, err
	}

	s.publish(ctx, "booking_submitted", booking, nil)
	return booking, nil
}

func (s *BookingService) SubmitOffer(ctx context.Context, bookingID string, input OfferInput) (*domain.Booking, error) {
	if input.OperatorID == "" {
		return nil, errors.New("operator id is required")
	}
	if input.PriceCents <= 0 {
		return nil, errors.New("offer price must be positive")
	}

	unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Type != domain.BookingTypeFlightRequest {
		// route bookings are pre-matched and take no competing offers
		return nil, domain.ErrInvalidTransition
	}

	next, err := domain.Next(booking.State, domain.EventOfferSubmitted)
	if err != nil {
		return nil, err
	}

	offer := domain.Offer{
		ID:         uuid.NewString(),
		OperatorID: input.OperatorID,
		PriceCents: input.PriceCents,
		Aircraft:   input.Aircraft,
		Message:    input.Message,
		OfferedAt:  time.Now(),
	}
	if err := s.bookings.AddOffer(ctx, bookingID, &offer, next); err != nil {
		return nil, err
	}
	booking.Offers = append(booking.Offers, offer)
	booking.State = next

	s.publish(ctx, "offer_submitted", booking, nil)
	return booking, nil
}

func (s *BookingService) SelectOffer(ctx context.Context, bookingID, offerID string) (*domain.Booking, error) {
	unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.State == domain.StateSubmitted && len(booking.Offers) == 0 {
		return nil, domain.ErrNoOffersAvailable
	}

	next, err := domain.Next(booking.State, domain.EventOfferSelected)
	if err != nil {
		return nil, err
	}

	offer := booking.OfferByID(offerID)
	if offer == nil {
		return nil, domain.ErrOfferNotFound
	}

	booking.OperatorID = offer.OperatorID
	booking.BasePriceCents = offer.PriceCents

	discount, err := s.reserveDiscount(ctx, booking.CustomerID, booking.OperatorID, booking.MembershipTier, booking.BasePriceCents)
	if err != nil {
		return nil, err
	}
	booking.Discount = discount
	booking.State = next

	if err := s.bookings.Update(ctx, booking); err != nil {
		s.releaseDiscount(ctx, booking)
		return nil, err
	}

	s.publish(ctx, "offer_selected", booking, nil)
	return booking, nil
}

func (s *BookingService) InitiatePayment(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, domain.EventPaymentInitiated, "payment_pending")
}

func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, domain.EventPaymentConfirmed, "booking_confirmed")
}

func (s *BookingService) transition(ctx context.Context, bookingID string, ev domain.Event, eventType string) (*domain.Booking, error) {
	unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next, err := domain.Next(booking.State, ev)
	if err != nil {
		return nil, err
	}
	booking.State = next

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, booking, nil)
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, input CancelInput) (*CancelResult, error) {
	if input.Now.IsZero() {
		input.Now = time.Now()
	}

	unlock, err := s.lockBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	next, err := domain.Next(booking.State, domain.EventCancelRequested)
	if err != nil {
		return nil, err
	}

	quote := s.rates.ComputeCancellation(booking.BasePriceCents, booking.DepartureTime, input.Now, input.ActorRole, booking.MembershipTier)
	if !quote.Allowed {
		return nil, domain.ErrRightsExhausted
	}

	// spend the capped right first: if the actor is out, the booking must not
	// change at all
	if err := s.ledger.Consume(ctx, input.ActorID, input.ActorRole, booking.MembershipTier); err != nil {
		return nil, err
	}

	booking.State = next
	booking.Cancellation = &domain.Cancellation{
		InitiatedBy:  input.ActorRole,
		AtTime:       input.Now,
		PenaltyCents: quote.PenaltyCents,
		RefundCents:  quote.RefundCents,
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		// give the spent right back, the cancellation did not happen
		if rerr := s.ledger.Release(ctx, input.ActorID, input.ActorRole); rerr != nil {
			logrus.WithError(rerr).WithField("actor_id", input.ActorID).Error("failed to release cancellation right after aborted cancel")
		}
		return nil, err
	}

	s.publish(ctx, "booking_cancelled", booking, booking.Cancellation)
	return &CancelResult{
		Booking:      booking,
		PenaltyCents: quote.PenaltyCents,
		RefundCents:  quote.RefundCents,
	}, nil
}

func (s *BookingService) CompletePastDepartures(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteConfirmedBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publish(ctx, "booking_completed", &completed[i], nil)
	}
	return completed, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) RemainingRights(ctx context.Context, actorID string, role domain.ActorRole, tier domain.MembershipTier) (int, error) {
	return s.ledger.Remaining(ctx, actorID, role, tier)
}

func (s *BookingService) ResetRights(ctx context.Context, actorID string, role domain.ActorRole) error {
	if err := s.ledger.Reset(ctx, actorID, role); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"actor_id": actorID, "role": role}).Info("cancellation rights reset")
	return nil
}

// reserveDiscount resolves the membership discount and atomically reserves
// the quota. A capped result applies 0% and reports the cap that was hit.
func (s *BookingService) reserveDiscount(ctx context.Context, customerID, operatorID string, tier domain.MembershipTier, basePriceCents int64) (*domain.Discount, error) {
	if s.rates.DiscountPercent(tier) == 0 {
		return nil, nil
	}
	capped, err := s.usage.TryConsume(ctx, customerID, operatorID)
	if err != nil {
		return nil, err
	}
	if capped != "" {
		return &domain.Discount{CappedReason: capped}, nil
	}
	discount := s.rates.ComputeDiscount(basePriceCents, tier, policy.DiscountUsage{})
	return &discount, nil
}

// releaseDiscount gives a reserved discount quota back when the booking it was
// reserved for failed to persist. Capped reservations never consumed quota.
func (s *BookingService) releaseDiscount(ctx context.Context, booking *domain.Booking) {
	if booking.Discount == nil || booking.Discount.CappedReason != "" {
		return
	}
	if err := s.usage.Release(ctx, booking.CustomerID, booking.OperatorID); err != nil {
		logrus.WithError(err).WithField("customer_id", booking.CustomerID).Error("failed to release discount quota after aborted booking")
	}
}

func (s *BookingService) lockBooking(ctx context.Context, bookingID string) (func(), error) {
	s.locksMu.Lock()
	l, ok := s.locks[bookingID]
	if !ok {
		l = &bookingLock{}
		s.locks[bookingID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	release := func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, bookingID)
		}
		s.locksMu.Unlock()
	}

	l.mu.Lock()

	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, bookingID, s.lockTTL)
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, domain.ErrBookingLocked
		}
	}

	return func() {
		if s.cache != nil {
			_ = s.cache.ReleaseBookingLock(ctx, bookingID)
		}
		release()
	}, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, cancellation *domain.Cancellation) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		BookingType: string(booking.Type),
		CustomerID:  booking.CustomerID,
		OperatorID:  booking.OperatorID,
		State:       string(booking.State),
		PriceCents:  booking.FinalPriceCents(),
		OccurredAt:  time.Now(),
	}
	if cancellation != nil {
		event.PenaltyCents = cancellation.PenaltyCents
		event.RefundCents = cancellation.RefundCents
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"booking_id": booking.ID, "event": eventType}).Warn("failed to publish booking event")
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"booking_id": booking.ID, "event": eventType}).Warn("failed to publish notification event")
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
