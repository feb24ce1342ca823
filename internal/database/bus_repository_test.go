package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitline/bus-booking-backend/internal/models"
)

func newBusRepoFixture(t *testing.T) (*BusRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewBusRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func seaterPrice(v float64) *float64 {
	return &v
}

func testRepoBus() *models.Bus {
	return &models.Bus{
		OperatorID:    "op-1",
		Name:          "Colombo Express",
		NumberPlate:   "WP-NA-1234",
		RouteFrom:     "Colombo",
		RouteTo:       "Jaffna",
		Configuration: models.AllSeaterOnly,
		ACType:        models.ACTypeAC,
		PriceSeater:   seaterPrice(1500),
		SeatCount:     28,
	}
}

func TestCreateWithSeats(t *testing.T) {
	repo, mock := newBusRepoFixture(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO buses").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO seats").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO seats").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	bus := testRepoBus()
	seats := []models.Seat{
		{Label: "L1", Class: models.ClassSeater, Deck: models.DeckLower, Row: 1, Side: models.SideLeft, Position: 1, Price: 1500},
		{Label: "L2", Class: models.ClassSeater, Deck: models.DeckLower, Row: 1, Side: models.SideLeft, Position: 2, Price: 1500},
	}

	err := repo.CreateWithSeats(bus, seats)
	require.NoError(t, err)

	assert.NotEmpty(t, bus.ID)
	assert.Equal(t, bus.ID, seats[0].BusID)
	assert.Equal(t, bus.ID, seats[1].BusID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeatsDuplicatePlate(t *testing.T) {
	repo, mock := newBusRepoFixture(t)

	// A racing registration committed the same plate between the handler's
	// pre-check and this insert; the constraint violation surfaces as the
	// duplicate-plate conflict, not a generic failure.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO buses").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "buses_number_plate_key"})
	mock.ExpectRollback()

	err := repo.CreateWithSeats(testRepoBus(), []models.Seat{
		{Label: "L1", Class: models.ClassSeater, Deck: models.DeckLower, Row: 1, Side: models.SideLeft, Position: 1, Price: 1500},
	})
	assert.ErrorIs(t, err, ErrDuplicatePlate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
