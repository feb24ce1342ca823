package models

import "time"

// Trip is a concrete dated instance of a recurring trip, materialized by
// the trip generator for the booking window.
type Trip struct {
	ID            string    `json:"id" db:"id"`
	BusID         string    `json:"bus_id" db:"bus_id"`
	TravelDate    time.Time `json:"travel_date" db:"travel_date"`
	DepartureTime string    `json:"departure_time" db:"departure_time"`
	ArrivalTime   string    `json:"arrival_time" db:"arrival_time"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
