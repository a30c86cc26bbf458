package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate(" 2024-04-01 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", FormatDate(d))
	assert.Equal(t, IST.String(), d.Location().String())

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("01/04/2024")
	assert.Error(t, err)
}

func TestDateOnlyUsesISTDay(t *testing.T) {
	// 20:00 UTC on 31 March is already 1 April in India
	utc := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-04-01", FormatDate(DateOnly(utc)))
	assert.True(t, SameDay(utc, time.Date(2024, 4, 1, 9, 0, 0, 0, IST)))
}
