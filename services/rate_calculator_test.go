package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"hotel-pms/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustDate(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeTaxDefaultRates(t *testing.T) {
	tax := ComputeTax(dec("1000"), ResolveTaxRate(decimal.Zero), ResolveTaxRate(decimal.Zero))
	assertMoney(t, "25", tax.CGSTAmount)
	assertMoney(t, "25", tax.SGSTAmount)
	assertMoney(t, "1050", tax.Total)
}

func TestResolveTaxRate(t *testing.T) {
	assertMoney(t, "0.06", ResolveTaxRate(dec("6")))
	assertMoney(t, "0.025", ResolveTaxRate(dec("-1")))
	assertMoney(t, "0.025", ResolveTaxRate(decimal.Zero))
}

func TestComputeTaxRoundsToPaisa(t *testing.T) {
	// 333.33 * 0.025 = 8.33325
	tax := ComputeTax(dec("333.33"), DefaultTaxRate, DefaultTaxRate)
	assertMoney(t, "8.33", tax.CGSTAmount)
	assertMoney(t, "349.99", tax.Total)

	// 0.2 * 0.025 = 0.005 rounds half up
	tax = ComputeTax(dec("0.2"), DefaultTaxRate, DefaultTaxRate)
	assertMoney(t, "0.01", tax.CGSTAmount)
}

func TestExtraBedTotal(t *testing.T) {
	in, out := mustDate("2024-01-10"), mustDate("2024-01-13")
	late := mustDate("2024-01-12")
	afterOut := mustDate("2024-01-20")

	rooms := []models.BookingRoom{
		{RoomNumber: "101", ExtraBed: true},                          // 3 nights
		{RoomNumber: "102", ExtraBed: true, ExtraBedStartDate: &late}, // 1 night
		{RoomNumber: "103", ExtraBed: false},
		{RoomNumber: "104", ExtraBed: true, ExtraBedStartDate: &afterOut}, // clamped to 0
	}
	assert.Equal(t, 3, ExtraBedNights(rooms[0], in, out))
	assert.Equal(t, 1, ExtraBedNights(rooms[1], in, out))
	assert.Equal(t, 0, ExtraBedNights(rooms[2], in, out))
	assert.Equal(t, 0, ExtraBedNights(rooms[3], in, out))
	assertMoney(t, "2000", ExtraBedTotal(rooms, dec("500"), in, out))
}

func TestRoomCharges(t *testing.T) {
	rooms := []models.BookingRoom{{DailyRate: dec("2000")}, {DailyRate: dec("1500.50")}}
	assertMoney(t, "7001", RoomCharges(rooms, 2))
}

func TestComputeAmendment(t *testing.T) {
	b := &models.Booking{
		Days:           2,
		TaxableAmount:  dec("4000"),
		CGSTRate:       DefaultTaxRate,
		SGSTRate:       DefaultTaxRate,
		ExtraBedCharge: dec("300"),
		Rooms: []models.BookingRoom{
			{RoomNumber: "101", DailyRate: dec("2000"), ExtraBed: true},
		},
	}

	first := ComputeAmendment(b, 3)
	assert.Equal(t, 1, first.DeltaDays)
	assertMoney(t, "2000", first.RateAdjustment)
	assertMoney(t, "300", first.ExtraBedAdjustment)
	assertMoney(t, "0", first.AmendmentFee)
	assertMoney(t, "6300", first.TaxableAmount)
	assertMoney(t, "6615", first.Tax.Total)

	b.AmendmentHistory = append(b.AmendmentHistory, models.AmendmentRecord{})
	second := ComputeAmendment(b, 3)
	assertMoney(t, "500", second.AmendmentFee)
	assertMoney(t, "6800", second.TaxableAmount)

	shorter := ComputeAmendment(b, 1)
	assert.Equal(t, -1, shorter.DeltaDays)
	assertMoney(t, "-2000", shorter.RateAdjustment)
	assertMoney(t, "-300", shorter.ExtraBedAdjustment)
}

func TestBalanceDue(t *testing.T) {
	payments := []models.AdvancePayment{{Amount: dec("500")}, {Amount: dec("250.25")}}
	assertMoney(t, "299.75", BalanceDue(dec("1050"), payments))
	assertMoney(t, "0", BalanceDue(dec("700"), payments))
}
