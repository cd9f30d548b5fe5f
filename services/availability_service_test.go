package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/apperror"
	"hotel-pms/models"
)

func TestAvailabilityRequiresDates(t *testing.T) {
	f := newFixture(t)
	cases := [][2]string{
		{"", "2024-01-12"},
		{"2024-01-10", ""},
		{"10/01/2024", "2024-01-12"},
		{"2024-01-12", "2024-01-12"},
		{"2024-01-12", "2024-01-10"},
	}
	for _, c := range cases {
		_, err := f.availability.AvailableRooms(f.ctx, c[0], c[1])
		requireKind(t, apperror.KindValidation, err)
	}
}

func TestAvailabilityGroupsAndIsStable(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, 4242, "999", "100")
	f.book(t, "2024-01-10", "2024-01-12", "102")

	first, err := f.availability.AvailableRooms(f.ctx, "2024-01-11", "2024-01-13")
	require.NoError(t, err)
	second, err := f.availability.AvailableRooms(f.ctx, "2024-01-11", "2024-01-13")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "DELUXE", first[0].CategoryName)
	assert.Equal(t, "SUITE", first[1].CategoryName)
	assert.Equal(t, models.UncategorizedCategoryName, first[2].CategoryName)
	assert.Equal(t, []string{"101", "201", "999"}, roomNumbersOf(first))
	for _, g := range first {
		for _, r := range g.Rooms {
			assert.Equal(t, models.RoomAvailable, r.Status)
		}
	}
}

func TestAvailabilityIgnoresClosedBookings(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")
	_, err := f.bookings.DeleteBooking(f.ctx, b.ID, admin)
	require.NoError(t, err)

	groups, err := f.availability.AvailableRooms(f.ctx, "2024-01-10", "2024-01-12")
	require.NoError(t, err)
	assert.Contains(t, roomNumbersOf(groups), "101")
}
