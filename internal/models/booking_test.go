package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateBookingRequest() CreateBookingRequest {
	return CreateBookingRequest{
		BusID:   "bus-1",
		Date:    "2026-09-01",
		SeatIDs: []string{"seat-1", "seat-2"},
		Passengers: []PassengerInput{
			{Name: "Amara Silva", Gender: "female", Age: 31},
			{Name: "Kasun Perera", Gender: "male", Age: 28},
		},
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	req := validCreateBookingRequest()
	assert.NoError(t, req.Validate())
}

func TestCreateBookingRequestParseDate(t *testing.T) {
	req := validCreateBookingRequest()
	date, err := req.ParseDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), date)

	req.Date = "01/09/2026"
	_, err = req.ParseDate()
	assert.Error(t, err)
}

func TestCreateBookingRequestDuplicateSeats(t *testing.T) {
	req := validCreateBookingRequest()
	req.SeatIDs = []string{"seat-1", "seat-1"}
	assert.Error(t, req.Validate())
}

func TestCreateBookingRequestPassengerSeatMismatch(t *testing.T) {
	req := validCreateBookingRequest()
	req.Passengers = req.Passengers[:1]
	assert.Error(t, req.Validate())
}

func TestCreateBookingRequestEmptySeats(t *testing.T) {
	req := validCreateBookingRequest()
	req.SeatIDs = nil
	req.Passengers = nil
	assert.Error(t, req.Validate())
}

func TestCreateBookingRequestPassengerFields(t *testing.T) {
	req := validCreateBookingRequest()
	req.Passengers[0].Name = "  "
	assert.Error(t, req.Validate())

	req = validCreateBookingRequest()
	req.Passengers[0].Gender = "unknown"
	assert.Error(t, req.Validate())

	req = validCreateBookingRequest()
	req.Passengers[0].Gender = "Other"
	assert.NoError(t, req.Validate(), "gender check is case-insensitive")

	req = validCreateBookingRequest()
	req.Passengers[1].Age = 0
	assert.Error(t, req.Validate())

	req = validCreateBookingRequest()
	req.Passengers[1].Age = 130
	assert.Error(t, req.Validate())
}
