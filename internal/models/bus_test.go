package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestBusConfigurationValid(t *testing.T) {
	assert.True(t, AllSeaterOnly.Valid())
	assert.True(t, SleeperUpperSeaterLower.Valid())
	assert.True(t, SleeperUpperSleeperLower.Valid())

	assert.False(t, BusConfiguration("").Valid())
	assert.False(t, BusConfiguration("56_seater").Valid())
	assert.False(t, BusConfiguration("28_SEATER_ONLY").Valid())
}

func TestBusConfigurationDeckPlans(t *testing.T) {
	plans := AllSeaterOnly.DeckPlans()
	require.Len(t, plans, 1)
	assert.Equal(t, DeckLower, plans[0].Deck)
	assert.Equal(t, ClassSeater, plans[0].Class)
	assert.Equal(t, 28, plans[0].Count)

	plans = SleeperUpperSeaterLower.DeckPlans()
	require.Len(t, plans, 2)
	assert.Equal(t, DeckLower, plans[0].Deck)
	assert.Equal(t, ClassSeater, plans[0].Class)
	assert.Equal(t, 28, plans[0].Count)
	assert.Equal(t, DeckUpper, plans[1].Deck)
	assert.Equal(t, ClassSleeper, plans[1].Class)
	assert.Equal(t, 14, plans[1].Count)

	plans = SleeperUpperSleeperLower.DeckPlans()
	require.Len(t, plans, 2)
	assert.Equal(t, ClassSleeper, plans[0].Class)
	assert.Equal(t, ClassSleeper, plans[1].Class)

	assert.Nil(t, BusConfiguration("bogus").DeckPlans())
}

func TestBusConfigurationTotalSeats(t *testing.T) {
	assert.Equal(t, 28, AllSeaterOnly.TotalSeats())
	assert.Equal(t, 42, SleeperUpperSeaterLower.TotalSeats())
	assert.Equal(t, 28, SleeperUpperSleeperLower.TotalSeats())
	assert.Equal(t, 0, BusConfiguration("bogus").TotalSeats())
}

func TestBusClassPrice(t *testing.T) {
	bus := &Bus{PriceSeater: floatPtr(1500), PriceSleeper: floatPtr(2500)}
	assert.Equal(t, 1500.0, bus.ClassPrice(ClassSeater))
	assert.Equal(t, 2500.0, bus.ClassPrice(ClassSleeper))

	empty := &Bus{}
	assert.Equal(t, 0.0, empty.ClassPrice(ClassSeater))
}

func validCreateBusRequest() CreateBusRequest {
	return CreateBusRequest{
		Name:          "Night Rider",
		NumberPlate:   "NA-1234",
		RouteFrom:     "Colombo",
		RouteTo:       "Jaffna",
		Configuration: string(SleeperUpperSeaterLower),
		ACType:        "AC",
		PriceSeater:   floatPtr(1500),
		PriceSleeper:  floatPtr(2500),
	}
}

func TestCreateBusRequestValidate(t *testing.T) {
	req := validCreateBusRequest()
	assert.NoError(t, req.Validate())
}

func TestCreateBusRequestInvalidConfiguration(t *testing.T) {
	req := validCreateBusRequest()
	req.Configuration = "32_seater"
	assert.Error(t, req.Validate())
}

func TestCreateBusRequestPricesFollowConfiguration(t *testing.T) {
	// A mixed bus needs both class prices
	req := validCreateBusRequest()
	req.PriceSleeper = nil
	assert.Error(t, req.Validate())

	req = validCreateBusRequest()
	req.PriceSeater = floatPtr(0)
	assert.Error(t, req.Validate())

	// An all-seater bus needs no sleeper price
	req = validCreateBusRequest()
	req.Configuration = string(AllSeaterOnly)
	req.PriceSleeper = nil
	assert.NoError(t, req.Validate())

	// An all-sleeper bus needs no seater price
	req = validCreateBusRequest()
	req.Configuration = string(SleeperUpperSleeperLower)
	req.PriceSeater = nil
	assert.NoError(t, req.Validate())
}

func TestCreateBusRequestACType(t *testing.T) {
	req := validCreateBusRequest()
	req.ACType = "Non-AC"
	assert.NoError(t, req.Validate())

	req.ACType = "semi-ac"
	assert.Error(t, req.Validate())
}

func TestUpdateBusRequestValidate(t *testing.T) {
	name := "Day Express"
	req := UpdateBusRequest{Name: &name, PriceSeater: floatPtr(1800)}
	assert.NoError(t, req.Validate())

	empty := ""
	req = UpdateBusRequest{Name: &empty}
	assert.Error(t, req.Validate())

	req = UpdateBusRequest{PriceSleeper: floatPtr(-1)}
	assert.Error(t, req.Validate())
}
