package database

import (
	"github.com/lib/pq"
	"github.com/transitline/bus-booking-backend/internal/models"
)

// SeatRepository handles read access to the per-bus seat templates. Seats
// are written once, inside the bus-creation transaction; nothing mutates
// them afterwards.
type SeatRepository struct {
	db DB
}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository(db DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// GetByBusID retrieves the full seat list of a bus in layout order: lower
// deck before upper, then row, then left before right.
func (r *SeatRepository) GetByBusID(busID string) ([]models.Seat, error) {
	query := `
		SELECT id, bus_id, label, class, deck, row, side, position, price,
		       created_at, updated_at
		FROM seats
		WHERE bus_id = $1
		ORDER BY deck DESC, row, CASE side WHEN 'left' THEN 0 ELSE 1 END, position
	`

	seats := []models.Seat{}
	if err := r.db.Select(&seats, query, busID); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByIDs retrieves specific seats of a bus. Used by booking admission to
// price and validate a requested seat set.
func (r *SeatRepository) GetByIDs(busID string, seatIDs []string) ([]models.Seat, error) {
	query := `
		SELECT id, bus_id, label, class, deck, row, side, position, price,
		       created_at, updated_at
		FROM seats
		WHERE bus_id = $1 AND id = ANY($2)
	`

	seats := []models.Seat{}
	if err := r.db.Select(&seats, query, busID, pq.Array(seatIDs)); err != nil {
		return nil, err
	}
	return seats, nil
}

// CountByBusID returns the persisted seat count for a bus. The availability
// resolver compares this against the configuration's implied total to catch
// data-integrity drift.
func (r *SeatRepository) CountByBusID(busID string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM seats WHERE bus_id = $1`, busID); err != nil {
		return 0, err
	}
	return count, nil
}
