package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvolosh/jetcharter/internal/domain"
)

type RouteRepository interface {
	List(ctx context.Context) ([]domain.Route, error)
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
}

type PGRouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) RouteRepository {
	return &PGRouteRepository{db: db}
}

func (r *PGRouteRepository) List(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT id, operator_id, from_airport, to_airport, departure_time, aircraft_class, aircraft, seats, price_cents, created_at, updated_at
		FROM routes ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]domain.Route, 0)
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.OperatorID, &rt.FromAirport, &rt.ToAirport, &rt.DepartureTime, &rt.AircraftClass, &rt.Aircraft, &rt.Seats, &rt.PriceCents, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *PGRouteRepository) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	row := r.db.QueryRow(ctx, `SELECT id, operator_id, from_airport, to_airport, departure_time, aircraft_class, aircraft, seats, price_cents, created_at, updated_at
		FROM routes WHERE id=$1`, id)
	var rt domain.Route
	if err := row.Scan(&rt.ID, &rt.OperatorID, &rt.FromAirport, &rt.ToAirport, &rt.DepartureTime, &rt.AircraftClass, &rt.Aircraft, &rt.Seats, &rt.PriceCents, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return &rt, nil
}

var _ RouteRepository = (*PGRouteRepository)(nil)
