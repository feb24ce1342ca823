package services

import (
	"fmt"

	"github.com/transitline/bus-booking-backend/internal/models"
)

// Seater decks seat four across, two on each side of the aisle.
// Sleeper decks carry 14 berths over five rows: rows one through four
// hold one berth left and two right, the last row holds two right only.
const (
	seaterRowWidth  = 2
	sleeperRowCount = 5
)

// SeatLayoutService generates the per-bus seat chart implied by a bus
// configuration. Generation is deterministic: the same configuration
// always yields the same labels, decks, rows, sides and positions.
type SeatLayoutService struct{}

// NewSeatLayoutService creates a new seat layout service
func NewSeatLayoutService() *SeatLayoutService {
	return &SeatLayoutService{}
}

// Generate builds the full seat template set for a bus. The caller has
// already validated the configuration and class prices; an unknown
// configuration here is a programming error, not user input.
func (s *SeatLayoutService) Generate(bus *models.Bus) ([]models.Seat, error) {
	plans := bus.Configuration.DeckPlans()
	if plans == nil {
		return nil, fmt.Errorf("unknown bus configuration: %s", bus.Configuration)
	}

	var seats []models.Seat
	for _, plan := range plans {
		price := bus.ClassPrice(plan.Class)

		var deckSeats []models.Seat
		switch plan.Class {
		case models.ClassSeater:
			deckSeats = s.generateSeaterDeck(plan)
		case models.ClassSleeper:
			deckSeats = s.generateSleeperDeck(plan)
		}

		for i := range deckSeats {
			deckSeats[i].BusID = bus.ID
			deckSeats[i].Price = price
		}
		seats = append(seats, deckSeats...)
	}

	return seats, nil
}

// generateSeaterDeck lays out a seater deck in rows of four, two left
// and two right. Labels number row-major, left pair before right pair,
// with a counter local to the deck.
func (s *SeatLayoutService) generateSeaterDeck(plan models.DeckPlan) []models.Seat {
	prefix := deckPrefix(plan.Deck)
	rows := plan.Count / (seaterRowWidth * 2)

	var seats []models.Seat
	counter := 0
	for row := 1; row <= rows; row++ {
		for _, side := range []models.SeatSide{models.SideLeft, models.SideRight} {
			for pos := 1; pos <= seaterRowWidth; pos++ {
				counter++
				seats = append(seats, models.Seat{
					Label:    fmt.Sprintf("%s%d", prefix, counter),
					Class:    plan.Class,
					Deck:     plan.Deck,
					Row:      row,
					Side:     side,
					Position: pos,
				})
			}
		}
	}
	return seats
}

// generateSleeperDeck lays out a 14-berth sleeper deck. The single berth
// on the left of rows one through four is the lower aisle-side berth;
// the fifth row has no left berth at all.
func (s *SeatLayoutService) generateSleeperDeck(plan models.DeckPlan) []models.Seat {
	prefix := deckPrefix(plan.Deck)

	var seats []models.Seat
	counter := 0
	for row := 1; row <= sleeperRowCount; row++ {
		if row < sleeperRowCount {
			counter++
			seats = append(seats, models.Seat{
				Label:    fmt.Sprintf("%s%d", prefix, counter),
				Class:    plan.Class,
				Deck:     plan.Deck,
				Row:      row,
				Side:     models.SideLeft,
				Position: 1,
			})
		}
		for pos := 1; pos <= 2; pos++ {
			counter++
			seats = append(seats, models.Seat{
				Label:    fmt.Sprintf("%s%d", prefix, counter),
				Class:    plan.Class,
				Deck:     plan.Deck,
				Row:      row,
				Side:     models.SideRight,
				Position: pos,
			})
		}
	}
	return seats
}

// BuildSeatMap groups a bus's seats into a renderable per-deck chart,
// marking each seat against the set of seat IDs booked for the travel
// date. Decks come out lower first, rows in order, left before right.
func (s *SeatLayoutService) BuildSeatMap(bus *models.Bus, seats []models.Seat, booked map[string]bool, date string) *models.SeatMap {
	type deckKey struct {
		deck  models.Deck
		class models.SeatClass
	}

	deckOrder := []deckKey{}
	rowsByDeck := map[deckKey]map[int]*models.SeatMapRow{}
	available := 0

	for _, seat := range seats {
		status := models.SeatAvailable
		if booked[seat.ID] {
			status = models.SeatBooked
		} else {
			available++
		}

		key := deckKey{deck: seat.Deck, class: seat.Class}
		if rowsByDeck[key] == nil {
			rowsByDeck[key] = map[int]*models.SeatMapRow{}
			deckOrder = append(deckOrder, key)
		}
		row := rowsByDeck[key][seat.Row]
		if row == nil {
			row = &models.SeatMapRow{Row: seat.Row, Left: []models.SeatWithStatus{}, Right: []models.SeatWithStatus{}}
			rowsByDeck[key][seat.Row] = row
		}

		withStatus := models.SeatWithStatus{Seat: seat, Status: status}
		if seat.Side == models.SideLeft {
			row.Left = append(row.Left, withStatus)
		} else {
			row.Right = append(row.Right, withStatus)
		}
	}

	// Lower deck renders before upper regardless of storage order.
	orderedDecks := make([]deckKey, 0, len(deckOrder))
	for _, key := range deckOrder {
		if key.deck == models.DeckLower {
			orderedDecks = append(orderedDecks, key)
		}
	}
	for _, key := range deckOrder {
		if key.deck == models.DeckUpper {
			orderedDecks = append(orderedDecks, key)
		}
	}

	seatMap := &models.SeatMap{
		BusID:          bus.ID,
		Date:           date,
		TotalSeats:     len(seats),
		AvailableSeats: available,
		Decks:          []models.SeatMapDeck{},
	}

	for _, key := range orderedDecks {
		rows := rowsByDeck[key]
		maxRow := 0
		for rowNum := range rows {
			if rowNum > maxRow {
				maxRow = rowNum
			}
		}

		deck := models.SeatMapDeck{Deck: key.deck, Class: key.class, Rows: []models.SeatMapRow{}}
		for rowNum := 1; rowNum <= maxRow; rowNum++ {
			if row := rows[rowNum]; row != nil {
				deck.Rows = append(deck.Rows, *row)
			}
		}
		seatMap.Decks = append(seatMap.Decks, deck)
	}

	return seatMap
}

func deckPrefix(deck models.Deck) string {
	if deck == models.DeckUpper {
		return "U"
	}
	return "L"
}
