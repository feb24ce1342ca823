package models

import (
	"time"
)

// SeatClass represents the seat category, which determines layout shape
// and which bus class price applies.
type SeatClass string

const (
	ClassSeater  SeatClass = "seater"
	ClassSleeper SeatClass = "sleeper"
)

// Deck represents the physical seating level of a bus
type Deck string

const (
	DeckUpper Deck = "upper"
	DeckLower Deck = "lower"
)

// SeatSide represents which side of the aisle a seat sits on
type SeatSide string

const (
	SideLeft  SeatSide = "left"
	SideRight SeatSide = "right"
)

// SeatStatus is the per-date derived availability of a seat. It is never
// stored on the seat row; the availability resolver recomputes it against
// the booked_seats rows for the requested travel date.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
)

// Seat is the per-bus seat template generated once at bus creation.
type Seat struct {
	ID        string    `json:"id" db:"id"`
	BusID     string    `json:"bus_id" db:"bus_id"`
	Label     string    `json:"label" db:"label"`
	Class     SeatClass `json:"class" db:"class"`
	Deck      Deck      `json:"deck" db:"deck"`
	Row       int       `json:"row" db:"row"`
	Side      SeatSide  `json:"side" db:"side"`
	Position  int       `json:"position" db:"position"`
	Price     float64   `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SeatWithStatus is a seat template joined with its availability for one
// requested travel date, shaped for direct rendering.
type SeatWithStatus struct {
	Seat
	Status SeatStatus `json:"status"`
}

// SeatMapRow groups the seats of one physical row into left and right
// column groups for rendering.
type SeatMapRow struct {
	Row   int              `json:"row"`
	Left  []SeatWithStatus `json:"left"`
	Right []SeatWithStatus `json:"right"`
}

// SeatMapDeck is the full chart of one deck.
type SeatMapDeck struct {
	Deck  Deck         `json:"deck"`
	Class SeatClass    `json:"class"`
	Rows  []SeatMapRow `json:"rows"`
}

// SeatMap is the per-date seating chart of a bus.
type SeatMap struct {
	BusID          string        `json:"bus_id"`
	Date           string        `json:"date"`
	TotalSeats     int           `json:"total_seats"`
	AvailableSeats int           `json:"available_seats"`
	Decks          []SeatMapDeck `json:"decks"`
}
