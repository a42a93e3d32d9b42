package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvolosh/jetcharter/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	AddOffer(ctx context.Context, bookingID string, offer *domain.Offer, state domain.BookingState) error
	// Update persists the mutable fields of a booking (state, matched
	// operator, price, discount, cancellation) in one statement.
	Update(ctx context.Context, booking *domain.Booking) error
	CompleteConfirmedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, type, customer_id, operator_id, from_airport, to_airport, departure_time, return_time, trip_type,
	passenger_count, base_price_cents, membership_tier, state,
	discount_pct, discount_cents, discount_capped_reason,
	cancelled_by, cancelled_at, penalty_cents, refund_cents, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var discountPct, discountCents *int64
	var cappedReason *string
	if booking.Discount != nil {
		discountPct = &booking.Discount.Percentage
		discountCents = &booking.Discount.AmountCents
		if booking.Discount.CappedReason != "" {
			cappedReason = &booking.Discount.CappedReason
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, type, customer_id, operator_id, from_airport, to_airport,
		departure_time, return_time, trip_type, passenger_count, base_price_cents, membership_tier, state,
		discount_pct, discount_cents, discount_capped_reason)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Type, booking.CustomerID, booking.OperatorID, booking.FromAirport, booking.ToAirport,
		booking.DepartureTime, booking.ReturnTime, booking.TripType, booking.PassengerCount,
		booking.BasePriceCents, booking.MembershipTier, booking.State,
		discountPct, discountCents, cappedReason).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for _, offer := range booking.Offers {
		if _, err := tx.Exec(ctx, `INSERT INTO offers (id, booking_id, operator_id, price_cents, aircraft, message, offered_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			offer.ID, booking.ID, offer.OperatorID, offer.PriceCents, offer.Aircraft, offer.Message, offer.OfferedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, operator_id, price_cents, aircraft, message, offered_at
		FROM offers WHERE booking_id=$1 ORDER BY offered_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.OperatorID, &o.PriceCents, &o.Aircraft, &o.Message, &o.OfferedAt); err != nil {
			return nil, err
		}
		booking.Offers = append(booking.Offers, o)
	}
	return booking, rows.Err()
}

func (r *PGBookingRepository) AddOffer(ctx context.Context, bookingID string, offer *domain.Offer, state domain.BookingState) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO offers (id, booking_id, operator_id, price_cents, aircraft, message, offered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		offer.ID, bookingID, offer.OperatorID, offer.PriceCents, offer.Aircraft, offer.Message, offer.OfferedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET state=$1, updated_at=now() WHERE id=$2`, state, bookingID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	var discountPct, discountCents *int64
	var cappedReason *string
	if booking.Discount != nil {
		discountPct = &booking.Discount.Percentage
		discountCents = &booking.Discount.AmountCents
		if booking.Discount.CappedReason != "" {
			cappedReason = &booking.Discount.CappedReason
		}
	}

	var cancelledBy *string
	var cancelledAt *time.Time
	var penaltyCents, refundCents *int64
	if booking.Cancellation != nil {
		by := string(booking.Cancellation.InitiatedBy)
		cancelledBy = &by
		cancelledAt = &booking.Cancellation.AtTime
		penaltyCents = &booking.Cancellation.PenaltyCents
		refundCents = &booking.Cancellation.RefundCents
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings SET state=$1, operator_id=NULLIF($2, ''), base_price_cents=$3,
		discount_pct=$4, discount_cents=$5, discount_capped_reason=$6,
		cancelled_by=$7, cancelled_at=$8, penalty_cents=$9, refund_cents=$10, updated_at=now()
		WHERE id=$11 RETURNING updated_at`,
		booking.State, booking.OperatorID, booking.BasePriceCents,
		discountPct, discountCents, cappedReason,
		cancelledBy, cancelledAt, penaltyCents, refundCents, booking.ID)
	if err := row.Scan(&booking.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) CompleteConfirmedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET state=$1, updated_at=now()
		WHERE state=$2 AND departure_time <= $3 RETURNING `+bookingColumns,
		domain.StateCompleted, domain.StateConfirmed, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completed []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		completed = append(completed, *b)
	}
	return completed, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var operatorID *string
	var discountPct, discountCents *int64
	var cappedReason *string
	var cancelledBy *string
	var cancelledAt *time.Time
	var penaltyCents, refundCents *int64

	if err := row.Scan(&b.ID, &b.Type, &b.CustomerID, &operatorID, &b.FromAirport, &b.ToAirport,
		&b.DepartureTime, &b.ReturnTime, &b.TripType, &b.PassengerCount, &b.BasePriceCents,
		&b.MembershipTier, &b.State,
		&discountPct, &discountCents, &cappedReason,
		&cancelledBy, &cancelledAt, &penaltyCents, &refundCents, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	if operatorID != nil {
		b.OperatorID = *operatorID
	}
	if discountPct != nil && discountCents != nil {
		b.Discount = &domain.Discount{Percentage: *discountPct, AmountCents: *discountCents}
		if cappedReason != nil {
			b.Discount.CappedReason = *cappedReason
		}
	}
	if cancelledBy != nil && cancelledAt != nil && penaltyCents != nil && refundCents != nil {
		b.Cancellation = &domain.Cancellation{
			InitiatedBy:  domain.ActorRole(*cancelledBy),
			AtTime:       *cancelledAt,
			PenaltyCents: *penaltyCents,
			RefundCents:  *refundCents,
		}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
