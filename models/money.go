package models

import "github.com/shopspring/decimal"

func init() {
	// amounts go out as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds to paisa, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SumPayments adds up advance payment amounts.
func SumPayments(payments []AdvancePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return RoundMoney(total)
}
