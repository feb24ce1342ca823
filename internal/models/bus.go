package models

import (
	"errors"
	"strings"
	"time"
)

// BusConfiguration is the closed set of supported seat layouts.
// The wire values match what operators submit from the bus form.
type BusConfiguration string

const (
	AllSeaterOnly            BusConfiguration = "28_seater_only"
	SleeperUpperSeaterLower  BusConfiguration = "14_sleeper_upper_28_seater_lower"
	SleeperUpperSleeperLower BusConfiguration = "14_sleeper_upper_14_sleeper_lower"
)

// ACType represents whether a bus is air-conditioned
type ACType string

const (
	ACTypeAC    ACType = "AC"
	ACTypeNonAC ACType = "Non-AC"
)

// DeckPlan describes one deck implied by a configuration.
type DeckPlan struct {
	Deck  Deck
	Class SeatClass
	Count int
}

// Valid reports whether the configuration is one of the closed set.
func (c BusConfiguration) Valid() bool {
	switch c {
	case AllSeaterOnly, SleeperUpperSeaterLower, SleeperUpperSleeperLower:
		return true
	}
	return false
}

// DeckPlans returns the per-deck seat counts and classes implied by the
// configuration, lower deck first.
func (c BusConfiguration) DeckPlans() []DeckPlan {
	switch c {
	case AllSeaterOnly:
		return []DeckPlan{
			{Deck: DeckLower, Class: ClassSeater, Count: 28},
		}
	case SleeperUpperSeaterLower:
		return []DeckPlan{
			{Deck: DeckLower, Class: ClassSeater, Count: 28},
			{Deck: DeckUpper, Class: ClassSleeper, Count: 14},
		}
	case SleeperUpperSleeperLower:
		return []DeckPlan{
			{Deck: DeckLower, Class: ClassSleeper, Count: 14},
			{Deck: DeckUpper, Class: ClassSleeper, Count: 14},
		}
	}
	return nil
}

// TotalSeats returns the seat count implied by the configuration.
func (c BusConfiguration) TotalSeats() int {
	total := 0
	for _, plan := range c.DeckPlans() {
		total += plan.Count
	}
	return total
}

// HasClass reports whether any deck of the configuration carries the class.
func (c BusConfiguration) HasClass(class SeatClass) bool {
	for _, plan := range c.DeckPlans() {
		if plan.Class == class {
			return true
		}
	}
	return false
}

// Bus represents a bus registered by an operator
type Bus struct {
	ID            string           `json:"id" db:"id"`
	OperatorID    string           `json:"operator_id" db:"operator_id"`
	Name          string           `json:"name" db:"name"`
	NumberPlate   string           `json:"number_plate" db:"number_plate"`
	RouteFrom     string           `json:"route_from" db:"route_from"`
	RouteTo       string           `json:"route_to" db:"route_to"`
	Configuration BusConfiguration `json:"configuration" db:"configuration"`
	ACType        ACType           `json:"ac_type" db:"ac_type"`
	PriceSeater   *float64         `json:"price_seater,omitempty" db:"price_seater"`
	PriceSleeper  *float64         `json:"price_sleeper,omitempty" db:"price_sleeper"`
	SeatCount     int              `json:"seat_count" db:"seat_count"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// ClassPrice returns the bus's base price for a seat class.
func (b *Bus) ClassPrice(class SeatClass) float64 {
	switch class {
	case ClassSeater:
		if b.PriceSeater != nil {
			return *b.PriceSeater
		}
	case ClassSleeper:
		if b.PriceSleeper != nil {
			return *b.PriceSleeper
		}
	}
	return 0
}

// CreateBusRequest represents the request to register a new bus
type CreateBusRequest struct {
	Name          string   `json:"name" binding:"required"`
	NumberPlate   string   `json:"number_plate" binding:"required"`
	RouteFrom     string   `json:"route_from" binding:"required"`
	RouteTo       string   `json:"route_to" binding:"required"`
	Configuration string   `json:"configuration" binding:"required"`
	ACType        string   `json:"ac_type" binding:"required"`
	PriceSeater   *float64 `json:"price_seater,omitempty"`
	PriceSleeper  *float64 `json:"price_sleeper,omitempty"`
}

// Validate validates the CreateBusRequest. Class prices are required and
// must be positive for every class the configuration carries; this is a
// precondition of seat generation, never checked inside the generator.
func (r *CreateBusRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.NumberPlate) == "" {
		return errors.New("number_plate is required")
	}
	if strings.TrimSpace(r.RouteFrom) == "" || strings.TrimSpace(r.RouteTo) == "" {
		return errors.New("route_from and route_to are required")
	}

	cfg := BusConfiguration(r.Configuration)
	if !cfg.Valid() {
		return errors.New("invalid configuration: must be 28_seater_only, 14_sleeper_upper_28_seater_lower, or 14_sleeper_upper_14_sleeper_lower")
	}

	ac := ACType(r.ACType)
	if ac != ACTypeAC && ac != ACTypeNonAC {
		return errors.New("ac_type must be AC or Non-AC")
	}

	if cfg.HasClass(ClassSeater) {
		if r.PriceSeater == nil || *r.PriceSeater <= 0 {
			return errors.New("price_seater must be a positive number for configurations with seater seats")
		}
	}
	if cfg.HasClass(ClassSleeper) {
		if r.PriceSleeper == nil || *r.PriceSleeper <= 0 {
			return errors.New("price_sleeper must be a positive number for configurations with sleeper seats")
		}
	}

	return nil
}

// UpdateBusRequest represents the request to update bus information.
// Configuration and number plate are immutable after creation; seats are
// generated once and never regenerated.
type UpdateBusRequest struct {
	Name         *string  `json:"name,omitempty"`
	RouteFrom    *string  `json:"route_from,omitempty"`
	RouteTo      *string  `json:"route_to,omitempty"`
	ACType       *string  `json:"ac_type,omitempty"`
	PriceSeater  *float64 `json:"price_seater,omitempty"`
	PriceSleeper *float64 `json:"price_sleeper,omitempty"`
}

// Validate validates the UpdateBusRequest
func (r *UpdateBusRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if r.ACType != nil {
		ac := ACType(*r.ACType)
		if ac != ACTypeAC && ac != ACTypeNonAC {
			return errors.New("ac_type must be AC or Non-AC")
		}
	}
	if r.PriceSeater != nil && *r.PriceSeater <= 0 {
		return errors.New("price_seater must be a positive number")
	}
	if r.PriceSleeper != nil && *r.PriceSleeper <= 0 {
		return errors.New("price_sleeper must be a positive number")
	}
	return nil
}
