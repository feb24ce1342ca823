package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
)

func newTripGeneratorFixture(t *testing.T, daysAhead int) (*TripGeneratorService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	pg := &database.PostgresDB{DB: sqlxDB}

	log := logrus.New()
	log.SetOutput(io.Discard)

	recurringTripRepo := database.NewRecurringTripRepository(pg)
	tripRepo := database.NewTripRepository(pg)
	return NewTripGeneratorService(recurringTripRepo, tripRepo, daysAhead, log), mock
}

// everyDaySchedule operates all seven days so the assertions do not
// depend on which weekday the test runs.
func everyDaySchedule() *models.RecurringTrip {
	trip := &models.RecurringTrip{
		ID:            "rt-1",
		BusID:         "bus-1",
		OperatorID:    "op-1",
		DepartureTime: "21:30",
		ArrivalTime:   "05:45",
	}
	trip.SetDays([]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"})
	return trip
}

func TestGenerateForSchedule(t *testing.T) {
	service, mock := newTripGeneratorFixture(t, 3)

	now := time.Now()
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO trips").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	}

	generated, err := service.GenerateForSchedule(everyDaySchedule())
	require.NoError(t, err)
	assert.Equal(t, 3, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateForScheduleSkipsExisting(t *testing.T) {
	service, mock := newTripGeneratorFixture(t, 2)

	now := time.Now()
	// Day one is already materialized, day two is not.
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	generated, err := service.GenerateForSchedule(everyDaySchedule())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateForScheduleNoOperatingDays(t *testing.T) {
	service, mock := newTripGeneratorFixture(t, 7)

	schedule := everyDaySchedule()
	schedule.DaysOfWeek = ""

	generated, err := service.GenerateForSchedule(schedule)
	require.NoError(t, err)
	assert.Equal(t, 0, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateUpcoming(t *testing.T) {
	service, mock := newTripGeneratorFixture(t, 1)

	now := time.Now()
	scheduleRows := sqlmock.NewRows([]string{
		"id", "bus_id", "operator_id", "departure_time", "arrival_time",
		"days_of_week", "created_at", "updated_at",
	}).
		AddRow("rt-1", "bus-1", "op-1", "21:30", "05:45", "Sun,Mon,Tue,Wed,Thu,Fri,Sat", now, now).
		AddRow("rt-2", "bus-2", "op-1", "08:00", "16:00", "Sun,Mon,Tue,Wed,Thu,Fri,Sat", now, now)

	mock.ExpectQuery("SELECT (.+) FROM recurring_trips").WillReturnRows(scheduleRows)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO trips").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	}

	generated, err := service.GenerateUpcoming()
	require.NoError(t, err)
	assert.Equal(t, 2, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupOldTrips(t *testing.T) {
	service, mock := newTripGeneratorFixture(t, 7)

	mock.ExpectExec("DELETE FROM trips").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := service.CleanupOldTrips()
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
