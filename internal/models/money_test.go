package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.RequireFromString("12.5"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "12.50 EUR", m.String())

	_, err = NewMoney(decimal.RequireFromString("1"), "eur")
	assert.ErrorIs(t, err, custom_err.ErrInvalidInput)

	_, err = NewMoney(decimal.RequireFromString("-1"), "EUR")
	assert.ErrorIs(t, err, custom_err.ErrInvalidInput)
}

func TestCodes(t *testing.T) {
	assert.True(t, IsCurrencyCode("USD"))
	assert.False(t, IsCurrencyCode("US"))
	assert.False(t, IsCurrencyCode("U5D"))
	assert.True(t, IsCountryCode("PH"))
	assert.False(t, IsCountryCode("ph"))
	assert.False(t, IsCountryCode("PHL"))
}

func TestCorridor(t *testing.T) {
	c, err := NewCorridor("US", "PH")
	require.NoError(t, err)
	assert.Equal(t, "US_PH", c.ID())
	assert.Equal(t, "US → PH", c.String())

	_, err = NewCorridor("US", "PHL")
	var ve *custom_err.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dest_country", ve.Field)
}

func TestParseDeliveryMethod(t *testing.T) {
	m, err := ParseDeliveryMethod(" cash_pickup")
	require.NoError(t, err)
	assert.Equal(t, DeliveryCashPickup, m)

	_, err = ParseDeliveryMethod("DRONE")
	assert.ErrorIs(t, err, custom_err.ErrInvalidInput)
}
