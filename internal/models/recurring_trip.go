package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekday codes accepted in a recurring trip's days_of_week set, in
// calendar order. These match time.Time.Weekday().String()[:3].
var WeekdayCodes = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RecurringTrip is a weekly schedule template for a bus. A bus has at most
// one recurring trip; concrete dated trips are materialized from it by the
// trip generator.
type RecurringTrip struct {
	ID            string    `json:"id" db:"id"`
	BusID         string    `json:"bus_id" db:"bus_id"`
	OperatorID    string    `json:"operator_id" db:"operator_id"`
	DepartureTime string    `json:"departure_time" db:"departure_time"` // HH:MM
	ArrivalTime   string    `json:"arrival_time" db:"arrival_time"`     // HH:MM
	DaysOfWeek    string    `json:"days_of_week" db:"days_of_week"`     // comma-separated codes, e.g. "Mon,Wed,Fri"
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Days parses the comma-separated days_of_week string into a slice.
func (t *RecurringTrip) Days() []string {
	if t.DaysOfWeek == "" {
		return nil
	}
	parts := strings.Split(t.DaysOfWeek, ",")
	days := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			days = append(days, p)
		}
	}
	return days
}

// SetDays stores a slice of weekday codes as the comma-separated form.
func (t *RecurringTrip) SetDays(days []string) {
	t.DaysOfWeek = strings.Join(days, ",")
}

// OperatesOn reports whether the trip runs on the given calendar date's
// weekday.
func (t *RecurringTrip) OperatesOn(date time.Time) bool {
	code := date.Weekday().String()[:3]
	for _, day := range t.Days() {
		if day == code {
			return true
		}
	}
	return false
}

// CreateRecurringTripRequest represents the request to create a weekly
// schedule for a bus.
type CreateRecurringTripRequest struct {
	BusID         string   `json:"bus_id" binding:"required"`
	DepartureTime string   `json:"departure_time" binding:"required"`
	ArrivalTime   string   `json:"arrival_time" binding:"required"`
	DaysOfWeek    []string `json:"days_of_week" binding:"required,min=1"`
}

// Validate validates the CreateRecurringTripRequest
func (r *CreateRecurringTripRequest) Validate() error {
	if err := validateTimeOfDay(r.DepartureTime, "departure_time"); err != nil {
		return err
	}
	if err := validateTimeOfDay(r.ArrivalTime, "arrival_time"); err != nil {
		return err
	}
	if len(r.DaysOfWeek) == 0 {
		return errors.New("days_of_week must contain at least one day")
	}
	seen := make(map[string]bool, len(r.DaysOfWeek))
	for _, day := range r.DaysOfWeek {
		if !validWeekdayCode(day) {
			return fmt.Errorf("invalid weekday code %q: must be one of %s", day, strings.Join(WeekdayCodes, ", "))
		}
		if seen[day] {
			return fmt.Errorf("duplicate weekday code %q", day)
		}
		seen[day] = true
	}
	return nil
}

// UpdateRecurringTripRequest represents the request to update a schedule
type UpdateRecurringTripRequest struct {
	DepartureTime *string  `json:"departure_time,omitempty"`
	ArrivalTime   *string  `json:"arrival_time,omitempty"`
	DaysOfWeek    []string `json:"days_of_week,omitempty"`
}

// Validate validates the UpdateRecurringTripRequest
func (r *UpdateRecurringTripRequest) Validate() error {
	if r.DepartureTime != nil {
		if err := validateTimeOfDay(*r.DepartureTime, "departure_time"); err != nil {
			return err
		}
	}
	if r.ArrivalTime != nil {
		if err := validateTimeOfDay(*r.ArrivalTime, "arrival_time"); err != nil {
			return err
		}
	}
	for _, day := range r.DaysOfWeek {
		if !validWeekdayCode(day) {
			return fmt.Errorf("invalid weekday code %q", day)
		}
	}
	return nil
}

func validateTimeOfDay(value, field string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		if _, err := time.Parse("15:04:05", value); err != nil {
			return fmt.Errorf("%s must be in HH:MM or HH:MM:SS format", field)
		}
	}
	return nil
}

func validWeekdayCode(code string) bool {
	for _, c := range WeekdayCodes {
		if c == code {
			return true
		}
	}
	return false
}
