package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/apperror"
	"hotel-pms/models"
)

func TestExtendBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")

	got, err := f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{
		ExtendedCheckOut: mustDate("2024-01-14"),
		Reason:           "late flight",
		AdditionalAmount: dec("3000"),
		PaymentMode:      "card",
	}, staff)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Days)
	assert.Equal(t, mustDate("2024-01-14"), got.CheckOutDate)
	assertMoney(t, "7200", got.Rate)
	assertMoney(t, "7200", got.BalanceAmount)
	require.Len(t, got.ExtensionHistory, 1)
	assert.Equal(t, mustDate("2024-01-12"), got.ExtensionHistory[0].PreviousCheckOut)

	// a zero amount still never lowers the total
	got, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-15")}, staff)
	require.NoError(t, err)
	assertMoney(t, "7200", got.Rate)

	_, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-13")}, staff)
	requireKind(t, apperror.KindValidation, err)

	_, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-20"), AdditionalAmount: dec("-10")}, staff)
	requireKind(t, apperror.KindValidation, err)
}

func TestExtendBookingConflict(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")
	other := f.book(t, "2024-01-13", "2024-01-15", "102")

	// move the later stay onto 101 so both bookings share the room
	require.NoError(t, f.store.Rooms().SetStatus(f.ctx, "101", models.RoomAvailable))
	_, err := f.bookings.UpdateBooking(f.ctx, other.ID, UpdateBookingInput{RoomNumbers: []string{"101"}}, staff)
	require.NoError(t, err)

	// ending on the day the other stay starts does not clash
	_, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-13")}, staff)
	require.NoError(t, err)

	_, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-14")}, staff)
	requireKind(t, apperror.KindConflict, err)
	ae, _ := apperror.As(err)
	assert.NotNil(t, ae.Details)

	stored, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, mustDate("2024-01-13"), stored.CheckOutDate)
}

func TestExtendClosedBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")
	_, err := f.bookings.DeleteBooking(f.ctx, b.ID, admin)
	require.NoError(t, err)

	_, err = f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{ExtendedCheckOut: mustDate("2024-01-14")}, staff)
	requireKind(t, apperror.KindBusinessRule, err)
}

func TestAmendBookingPricingAndLimit(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")

	got, err := f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-14")}, staff)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Days)
	assertMoney(t, "8000", got.TaxableAmount)
	assertMoney(t, "8400", got.Rate)
	assertMoney(t, "0", got.AmendmentHistory[0].AmendmentFee)

	// second amendment carries the fee
	got, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-15")}, staff)
	require.NoError(t, err)
	assertMoney(t, "10500", got.TaxableAmount)
	assertMoney(t, "262.5", got.CGSTAmount)
	assertMoney(t, "11025", got.Rate)
	assertMoney(t, "500", got.AmendmentHistory[1].AmendmentFee)

	// shortening the stay reduces the taxable amount
	got, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-13")}, staff)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Days)
	assertMoney(t, "7000", got.TaxableAmount)
	assertMoney(t, "-4000", got.AmendmentHistory[2].RateAdjustment)
	assertMoney(t, "7350", got.Rate)

	_, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-14")}, staff)
	requireKind(t, apperror.KindLimitExceeded, err)

	stored, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, stored.AmendmentHistory, MaxAmendments)
}

func TestAmendBookingNoticeWindow(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")

	f.bookings.Now = func() time.Time { return time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC) }
	_, err := f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-14")}, staff)
	require.NoError(t, err)

	f.bookings.Now = func() time.Time { return time.Date(2024, 1, 13, 0, 0, 1, 0, time.UTC) }
	_, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-15")}, staff)
	requireKind(t, apperror.KindLimitExceeded, err)
}

func TestAmendBookingRejects(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")

	_, err := f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-10")}, staff)
	requireKind(t, apperror.KindValidation, err)

	other := f.book(t, "2024-01-13", "2024-01-15", "102")
	require.NoError(t, f.store.Rooms().SetStatus(f.ctx, "101", models.RoomAvailable))
	_, err = f.bookings.UpdateBooking(f.ctx, other.ID, UpdateBookingInput{RoomNumbers: []string{"101"}}, staff)
	require.NoError(t, err)

	_, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-14")}, staff)
	requireKind(t, apperror.KindConflict, err)

	_, err = f.bookings.DeleteBooking(f.ctx, b.ID, admin)
	require.NoError(t, err)
	_, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-11")}, staff)
	requireKind(t, apperror.KindBusinessRule, err)
}

func TestExtensionChargeSurvivesUpdates(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")
	_, err := f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{
		ExtendedCheckOut: mustDate("2024-01-14"),
		AdditionalAmount: dec("3000"),
	}, staff)
	require.NoError(t, err)

	name := "Asha R."
	got, err := f.bookings.UpdateBooking(f.ctx, b.ID, UpdateBookingInput{GuestName: &name}, staff)
	require.NoError(t, err)
	assertMoney(t, "7200", got.Rate)
	assertMoney(t, "7200", got.BalanceAmount)

	stored, err := f.bookings.GetBooking(f.ctx, b.ID)
	require.NoError(t, err)
	assertMoney(t, "7200", stored.Rate)

	// re-taxing only touches the taxed part: 4000 + 240 + 100, plus the 3000
	cgst := dec("6")
	got, err = f.bookings.UpdateBooking(f.ctx, b.ID, UpdateBookingInput{CGSTPercent: &cgst}, staff)
	require.NoError(t, err)
	assertMoney(t, "4340", got.TaxableAmount.Add(got.CGSTAmount).Add(got.SGSTAmount))
	assertMoney(t, "7340", got.Rate)
	assertMoney(t, "3000", ExtensionCharges(got.ExtensionHistory))
}

func TestAmendAfterExtensionKeepsCharge(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")
	extended, err := f.bookings.ExtendBooking(f.ctx, b.ID, ExtendBookingInput{
		ExtendedCheckOut: mustDate("2024-01-14"),
		AdditionalAmount: dec("3000"),
	}, staff)
	require.NoError(t, err)
	assertMoney(t, "7200", extended.Rate)

	// one more night through the taxable base: 6000 taxed is 6300, plus 3000
	got, err := f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-15")}, staff)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Days)
	assertMoney(t, "6000", got.TaxableAmount)
	assertMoney(t, "9300", got.Rate)
	assertMoney(t, "9300", got.BalanceAmount)
	assert.True(t, got.Rate.GreaterThan(extended.Rate))

	// pulling check-out back into the extended nights never goes below the
	// extension charge
	got, err = f.bookings.AmendBookingStay(f.ctx, b.ID, AmendBookingInput{NewCheckOutDate: mustDate("2024-01-11")}, staff)
	require.NoError(t, err)
	assert.False(t, got.TaxableAmount.IsNegative())
	assertMoney(t, "3000", got.Rate)
}

func TestCancelThroughUpdateDeactivates(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "2024-01-10", "2024-01-12", "101")

	cancelled := models.StatusCancelled
	got, err := f.bookings.UpdateBooking(f.ctx, b.ID, UpdateBookingInput{Status: &cancelled}, staff)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, "101"))

	active, err := f.bookings.ListBookings(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
}
