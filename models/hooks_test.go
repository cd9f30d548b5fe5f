package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFindNormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 1, 10, 5, 30, 0, 0, ist)

	b := Booking{CheckInDate: in, CheckOutDate: in.AddDate(0, 0, 2)}
	require.NoError(t, b.AfterFind(nil))
	assert.Equal(t, time.UTC, b.CheckInDate.Location())
	assert.Equal(t, "2024-01-10", b.CheckInDate.Format(DateLayout))
	assert.Equal(t, time.UTC, b.CheckOutDate.Location())

	start := in
	r := BookingRoom{ExtraBedStartDate: &start}
	require.NoError(t, r.AfterFind(nil))
	assert.Equal(t, time.UTC, r.ExtraBedStartDate.Location())
	assert.Equal(t, ist, start.Location(), "the original value is not mutated")

	var none BookingRoom
	require.NoError(t, none.AfterFind(nil))
	assert.Nil(t, none.ExtraBedStartDate)

	ev := BanquetBooking{EventDate: in}
	require.NoError(t, ev.AfterFind(nil))
	assert.True(t, ev.EventDate.Equal(in))
	assert.Equal(t, time.UTC, ev.EventDate.Location())
}
