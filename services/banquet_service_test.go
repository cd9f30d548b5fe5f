package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/apperror"
	"hotel-pms/models"
)

func newBanquet(t *testing.T, f *fixture) *models.BanquetBooking {
	t.Helper()
	b, err := f.banquets.Create(f.ctx, BanquetInput{
		GuestName:       ptr("Mehta Wedding"),
		EventDate:       ptr(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)),
		HallName:        ptr("Crystal"),
		Pax:             ptr(100),
		MenuItems:       []string{"paneer tikka", "dal makhani"},
		RatePerPlate:    ptr(dec("800")),
		AdvancePayments: []models.AdvancePayment{{Amount: dec("20000"), Mode: "cheque"}},
	}, staff)
	require.NoError(t, err)
	return b
}

func TestBanquetCreatePricing(t *testing.T) {
	f := newFixture(t)
	b := newBanquet(t, f)

	assert.True(t, strings.HasPrefix(b.ReferenceNumber, "BQT-"))
	assertMoney(t, "80000", b.TaxableAmount)
	assertMoney(t, "2000", b.CGSTAmount)
	assertMoney(t, "84000", b.Total)
	assertMoney(t, "64000", b.BalanceAmount)

	_, err := f.banquets.Create(f.ctx, BanquetInput{GuestName: ptr("x"), EventDate: ptr(time.Now()), Pax: ptr(0), RatePerPlate: ptr(dec("1"))}, staff)
	requireKind(t, apperror.KindValidation, err)
}

func TestBanquetStaffMenuEditCap(t *testing.T) {
	f := newFixture(t)
	b := newBanquet(t, f)

	for i, menu := range [][]string{{"soup"}, {"soup", "salad"}} {
		got, err := f.banquets.Update(f.ctx, b.ID, BanquetInput{MenuItems: menu}, staff)
		require.NoError(t, err)
		assert.Equal(t, i+1, got.MenuEditCount)
	}

	_, err := f.banquets.Update(f.ctx, b.ID, BanquetInput{MenuItems: []string{"biryani"}}, staff)
	requireKind(t, apperror.KindForbidden, err)

	// unchanged menu and other fields are still editable by staff
	got, err := f.banquets.Update(f.ctx, b.ID, BanquetInput{MenuItems: []string{"soup", "salad"}, Pax: ptr(120)}, staff)
	require.NoError(t, err)
	assertMoney(t, "96000", got.TaxableAmount)

	got, err = f.banquets.Update(f.ctx, b.ID, BanquetInput{MenuItems: []string{"biryani"}}, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"biryani"}, []string(got.MenuItems))
	assert.Equal(t, models.MaxStaffMenuEdits, got.MenuEditCount)
}
