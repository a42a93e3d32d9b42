package domain

import "time"

type AircraftClass string

const (
	AircraftLight     AircraftClass = "LIGHT"
	AircraftMidsize   AircraftClass = "MIDSIZE"
	AircraftHeavy     AircraftClass = "HEAVY"
	AircraftUltraLong AircraftClass = "ULTRA_LONG_RANGE"
)

// Route is a pre-published charter flight with a fixed operator, aircraft and
// price that customers book directly, as opposed to a flight request that is
// broadcast to operators for competing offers.
type Route struct {
	ID            int64
	OperatorID    string
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	AircraftClass AircraftClass
	Aircraft      string
	Seats         int
	PriceCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
