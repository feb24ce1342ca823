package database

import (
	"errors"

	"github.com/lib/pq"
)

// Domain-level conflicts surfaced by repositories. Handlers map these to
// 4xx responses; anything else is a server failure.
var (
	// ErrSeatsTaken is returned when a booking transaction finds one or
	// more requested seats already held by a non-canceled booking for the
	// same bus and travel date. Callers can re-fetch availability and
	// retry with a different seat set.
	ErrSeatsTaken = errors.New("one or more requested seats are no longer available")

	// ErrDuplicatePlate is returned when a bus with the same number plate
	// already exists.
	ErrDuplicatePlate = errors.New("bus with this number plate already exists")

	// ErrRecurringTripExists is returned when a bus already has a
	// recurring trip. A bus carries at most one.
	ErrRecurringTripExists = errors.New("a recurring trip already exists for this bus")

	// ErrBusHasRecurringTrip is returned when deleting a bus that still
	// has a recurring trip attached.
	ErrBusHasRecurringTrip = errors.New("cannot delete bus with an associated recurring trip")
)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505). Pre-insert existence checks race with
// concurrent writers, so repositories also map the constraint error itself.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
