package services

import (
	"time"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
)

var (
	// DefaultTaxRate applies to CGST and SGST alike when no custom rate is given.
	DefaultTaxRate = decimal.RequireFromString("0.025")
	// AmendmentFee is charged on every amendment after the first.
	AmendmentFee = decimal.NewFromInt(500)

	hundred = decimal.NewFromInt(100)
)

// ResolveTaxRate turns a percentage (6 means 6%) into a fraction, falling
// back to the default rate when percent is not positive.
func ResolveTaxRate(percent decimal.Decimal) decimal.Decimal {
	if percent.IsPositive() {
		return percent.Div(hundred)
	}
	return DefaultTaxRate
}

type TaxBreakdown struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGSTAmount    decimal.Decimal `json:"cgstAmount"`
	SGSTAmount    decimal.Decimal `json:"sgstAmount"`
	Total         decimal.Decimal `json:"total"`
}

func ComputeTax(taxable, cgstRate, sgstRate decimal.Decimal) TaxBreakdown {
	taxable = models.RoundMoney(taxable)
	cgst := models.RoundMoney(taxable.Mul(cgstRate))
	sgst := models.RoundMoney(taxable.Mul(sgstRate))
	return TaxBreakdown{
		TaxableAmount: taxable,
		CGSTAmount:    cgst,
		SGSTAmount:    sgst,
		Total:         taxable.Add(cgst).Add(sgst),
	}
}

// ExtraBedNights counts nights from the extra bed's start (check-in when
// unset) to check-out, never below zero.
func ExtraBedNights(room models.BookingRoom, checkIn, checkOut time.Time) int {
	if !room.ExtraBed {
		return 0
	}
	start := checkIn
	if room.ExtraBedStartDate != nil {
		start = *room.ExtraBedStartDate
	}
	return max(0, models.NightsBetween(start, checkOut))
}

func ExtraBedTotal(rooms []models.BookingRoom, charge decimal.Decimal, checkIn, checkOut time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rooms {
		nights := ExtraBedNights(r, checkIn, checkOut)
		total = total.Add(charge.Mul(decimal.NewFromInt(int64(nights))))
	}
	return models.RoundMoney(total)
}

// DailyRateSum is what one night of the booking's rooms costs.
func DailyRateSum(rooms []models.BookingRoom) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rooms {
		sum = sum.Add(r.DailyRate)
	}
	return sum
}

func RoomCharges(rooms []models.BookingRoom, days int) decimal.Decimal {
	return models.RoundMoney(DailyRateSum(rooms).Mul(decimal.NewFromInt(int64(days))))
}

type AmendmentAdjustment struct {
	DeltaDays          int
	RateAdjustment     decimal.Decimal
	ExtraBedAdjustment decimal.Decimal
	AmendmentFee       decimal.Decimal
	TaxableAmount      decimal.Decimal
	Tax                TaxBreakdown
}

// ComputeAmendment prices a change of stay length to newDays using the
// booking's own rooms, charges and tax rates.
func ComputeAmendment(b *models.Booking, newDays int) AmendmentAdjustment {
	delta := newDays - b.Days
	deltaDec := decimal.NewFromInt(int64(delta))

	extraBedRooms := 0
	for _, r := range b.Rooms {
		if r.ExtraBed {
			extraBedRooms++
		}
	}

	adj := AmendmentAdjustment{
		DeltaDays:          delta,
		RateAdjustment:     models.RoundMoney(DailyRateSum(b.Rooms).Mul(deltaDec)),
		ExtraBedAdjustment: models.RoundMoney(b.ExtraBedCharge.Mul(deltaDec).Mul(decimal.NewFromInt(int64(extraBedRooms)))),
		AmendmentFee:       decimal.Zero,
	}
	if len(b.AmendmentHistory) >= 1 {
		adj.AmendmentFee = AmendmentFee
	}
	adj.TaxableAmount = b.TaxableAmount.Add(adj.RateAdjustment).Add(adj.ExtraBedAdjustment).Add(adj.AmendmentFee)
	// shortening into nights paid by an extension can undercut the base
	if adj.TaxableAmount.IsNegative() {
		adj.TaxableAmount = decimal.Zero
	}
	adj.Tax = ComputeTax(adj.TaxableAmount, b.CGSTRate, b.SGSTRate)
	return adj
}

// BalanceDue is total minus advances, floored at zero.
func BalanceDue(total decimal.Decimal, payments []models.AdvancePayment) decimal.Decimal {
	balance := total.Sub(models.SumPayments(payments))
	if balance.IsNegative() {
		return decimal.Zero
	}
	return models.RoundMoney(balance)
}

// ExtensionCharges sums the flat amounts added by stay extensions. They sit
// on top of the taxed total and are never taxed themselves.
func ExtensionCharges(history []models.ExtensionRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range history {
		sum = sum.Add(e.AdditionalAmount)
	}
	return models.RoundMoney(sum)
}

// settleRate sets Rate to taxTotal plus every extension charge and refreshes
// the balance. All repricing goes through here.
func settleRate(b *models.Booking, taxTotal decimal.Decimal) {
	b.Rate = models.RoundMoney(taxTotal.Add(ExtensionCharges(b.ExtensionHistory)))
	b.RecomputeBalance()
}

// taxedTotal is what the booking's stored tax breakdown adds up to.
func taxedTotal(b *models.Booking) decimal.Decimal {
	return b.TaxableAmount.Add(b.CGSTAmount).Add(b.SGSTAmount)
}

// applyTax refreshes tax amounts, rate and balance from TaxableAmount and the
// booking's tax rates.
func applyTax(b *models.Booking) {
	tax := ComputeTax(b.TaxableAmount, b.CGSTRate, b.SGSTRate)
	b.TaxableAmount = tax.TaxableAmount
	b.CGSTAmount = tax.CGSTAmount
	b.SGSTAmount = tax.SGSTAmount
	settleRate(b, tax.Total)
}
