package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEffectiveDate(t *testing.T) {
	parsed := ParseEffectiveDate("2024-03-01")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *parsed)

	assert.Nil(t, ParseEffectiveDate(""))
	assert.Nil(t, ParseEffectiveDate("03/01/2024"))
	assert.Nil(t, ParseEffectiveDate("not a date"))
}

func TestFormatEffectiveDateRoundTrip(t *testing.T) {
	parsed := ParseEffectiveDate("2024-01-15")
	assert.Equal(t, "2024-01-15", FormatEffectiveDate(parsed))
	assert.Equal(t, "", FormatEffectiveDate(nil))
}

func TestGenerateETagIsStable(t *testing.T) {
	payload := map[string]string{"managementFee": "1.75%"}

	first, err := GenerateETag(payload)
	require.NoError(t, err)
	second, err := GenerateETag(payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed, err := GenerateETag(map[string]string{"managementFee": "2.00%"})
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.75, RoundFloat(1.7500000000000002, 4))
	assert.Equal(t, 1.6667, RoundFloat(5.0/3.0, 4))
	assert.Equal(t, -0.25, RoundFloat(-0.25, 4))
}
