package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitline/bus-booking-backend/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func testBus(cfg models.BusConfiguration) *models.Bus {
	return &models.Bus{
		ID:            "bus-1",
		Configuration: cfg,
		PriceSeater:   floatPtr(1500),
		PriceSleeper:  floatPtr(2500),
	}
}

func TestGenerateAllSeaterOnly(t *testing.T) {
	service := NewSeatLayoutService()

	seats, err := service.Generate(testBus(models.AllSeaterOnly))
	require.NoError(t, err)
	require.Len(t, seats, 28)

	for i, seat := range seats {
		assert.Equal(t, "bus-1", seat.BusID)
		assert.Equal(t, models.ClassSeater, seat.Class)
		assert.Equal(t, models.DeckLower, seat.Deck)
		assert.Equal(t, 1500.0, seat.Price)
		assert.Equal(t, fmt.Sprintf("L%d", i+1), seat.Label)
	}

	// Seven rows of four, left pair before right pair
	for row := 1; row <= 7; row++ {
		rowSeats := seats[(row-1)*4 : row*4]
		assert.Equal(t, models.SideLeft, rowSeats[0].Side)
		assert.Equal(t, 1, rowSeats[0].Position)
		assert.Equal(t, models.SideLeft, rowSeats[1].Side)
		assert.Equal(t, 2, rowSeats[1].Position)
		assert.Equal(t, models.SideRight, rowSeats[2].Side)
		assert.Equal(t, 1, rowSeats[2].Position)
		assert.Equal(t, models.SideRight, rowSeats[3].Side)
		assert.Equal(t, 2, rowSeats[3].Position)
		for _, seat := range rowSeats {
			assert.Equal(t, row, seat.Row)
		}
	}
}

func TestGenerateSleeperUpperSeaterLower(t *testing.T) {
	service := NewSeatLayoutService()

	seats, err := service.Generate(testBus(models.SleeperUpperSeaterLower))
	require.NoError(t, err)
	require.Len(t, seats, 42)

	lower := seats[:28]
	upper := seats[28:]

	for i, seat := range lower {
		assert.Equal(t, models.DeckLower, seat.Deck)
		assert.Equal(t, models.ClassSeater, seat.Class)
		assert.Equal(t, 1500.0, seat.Price)
		assert.Equal(t, fmt.Sprintf("L%d", i+1), seat.Label)
	}
	for i, seat := range upper {
		assert.Equal(t, models.DeckUpper, seat.Deck)
		assert.Equal(t, models.ClassSleeper, seat.Class)
		assert.Equal(t, 2500.0, seat.Price)
		assert.Equal(t, fmt.Sprintf("U%d", i+1), seat.Label)
	}
}

func TestGenerateSleeperUpperSleeperLower(t *testing.T) {
	service := NewSeatLayoutService()

	seats, err := service.Generate(testBus(models.SleeperUpperSleeperLower))
	require.NoError(t, err)
	require.Len(t, seats, 28)

	lower := seats[:14]
	upper := seats[14:]

	// Label counters run per deck, both starting at one
	assert.Equal(t, "L1", lower[0].Label)
	assert.Equal(t, "L14", lower[13].Label)
	assert.Equal(t, "U1", upper[0].Label)
	assert.Equal(t, "U14", upper[13].Label)

	for _, deck := range [][]models.Seat{lower, upper} {
		perRowLeft := map[int]int{}
		perRowRight := map[int]int{}
		for _, seat := range deck {
			assert.Equal(t, models.ClassSleeper, seat.Class)
			assert.Equal(t, 2500.0, seat.Price)
			if seat.Side == models.SideLeft {
				perRowLeft[seat.Row]++
			} else {
				perRowRight[seat.Row]++
			}
		}

		// Rows one through four carry one left and two right berths;
		// the last row has right berths only.
		for row := 1; row <= 4; row++ {
			assert.Equal(t, 1, perRowLeft[row], "row %d left", row)
			assert.Equal(t, 2, perRowRight[row], "row %d right", row)
		}
		assert.Equal(t, 0, perRowLeft[5])
		assert.Equal(t, 2, perRowRight[5])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	service := NewSeatLayoutService()

	first, err := service.Generate(testBus(models.SleeperUpperSeaterLower))
	require.NoError(t, err)
	second, err := service.Generate(testBus(models.SleeperUpperSeaterLower))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateUnknownConfiguration(t *testing.T) {
	service := NewSeatLayoutService()

	_, err := service.Generate(testBus(models.BusConfiguration("48_double_decker")))
	assert.Error(t, err)
}

func TestBuildSeatMap(t *testing.T) {
	service := NewSeatLayoutService()
	bus := testBus(models.SleeperUpperSeaterLower)

	seats, err := service.Generate(bus)
	require.NoError(t, err)
	for i := range seats {
		seats[i].ID = fmt.Sprintf("seat-%d", i)
	}

	booked := map[string]bool{
		seats[0].ID:  true, // L1
		seats[30].ID: true, // U3
	}

	seatMap := service.BuildSeatMap(bus, seats, booked, "2026-09-01")

	assert.Equal(t, "bus-1", seatMap.BusID)
	assert.Equal(t, "2026-09-01", seatMap.Date)
	assert.Equal(t, 42, seatMap.TotalSeats)
	assert.Equal(t, 40, seatMap.AvailableSeats)

	require.Len(t, seatMap.Decks, 2)
	assert.Equal(t, models.DeckLower, seatMap.Decks[0].Deck)
	assert.Equal(t, models.ClassSeater, seatMap.Decks[0].Class)
	assert.Equal(t, models.DeckUpper, seatMap.Decks[1].Deck)
	assert.Equal(t, models.ClassSleeper, seatMap.Decks[1].Class)

	assert.Len(t, seatMap.Decks[0].Rows, 7)
	assert.Len(t, seatMap.Decks[1].Rows, 5)

	// L1 is the first left seat of the first lower row
	firstRow := seatMap.Decks[0].Rows[0]
	require.Len(t, firstRow.Left, 2)
	require.Len(t, firstRow.Right, 2)
	assert.Equal(t, "L1", firstRow.Left[0].Label)
	assert.Equal(t, models.SeatBooked, firstRow.Left[0].Status)
	assert.Equal(t, models.SeatAvailable, firstRow.Left[1].Status)

	// Sleeper rows: one left berth, two right; last row right only
	upperFirst := seatMap.Decks[1].Rows[0]
	assert.Len(t, upperFirst.Left, 1)
	assert.Len(t, upperFirst.Right, 2)
	upperLast := seatMap.Decks[1].Rows[4]
	assert.Len(t, upperLast.Left, 0)
	assert.Len(t, upperLast.Right, 2)
}

func TestBuildSeatMapUpperDeckStoredFirst(t *testing.T) {
	service := NewSeatLayoutService()
	bus := testBus(models.SleeperUpperSleeperLower)

	seats, err := service.Generate(bus)
	require.NoError(t, err)

	// Feed the seats upper deck first; the chart still renders lower first.
	reversed := append([]models.Seat{}, seats[14:]...)
	reversed = append(reversed, seats[:14]...)

	seatMap := service.BuildSeatMap(bus, reversed, nil, "2026-09-01")
	require.Len(t, seatMap.Decks, 2)
	assert.Equal(t, models.DeckLower, seatMap.Decks[0].Deck)
	assert.Equal(t, models.DeckUpper, seatMap.Decks[1].Deck)
}
