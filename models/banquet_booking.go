package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MaxStaffMenuEdits is how many times non-admin staff may change a banquet menu.
const MaxStaffMenuEdits = 2

type BanquetBooking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReferenceNumber string    `gorm:"column:reference_number;size:20;uniqueIndex" json:"referenceNumber"`
	GuestName       string    `gorm:"column:guest_name;size:150" json:"guestName"`
	ContactNumber   string    `gorm:"column:contact_number;size:30" json:"contactNumber"`
	EventDate       time.Time `gorm:"column:event_date;type:date;index" json:"eventDate"`
	HallName        string    `gorm:"column:hall_name;size:100" json:"hallName"`
	Pax             int       `gorm:"column:pax" json:"pax"`

	MenuItems     datatypes.JSONSlice[string] `gorm:"column:menu_items" json:"menuItems"`
	MenuEditCount int                         `gorm:"column:menu_edit_count;default:0" json:"menuEditCount"`

	RatePerPlate  decimal.Decimal `gorm:"column:rate_per_plate;type:decimal(12,2)" json:"ratePerPlate"`
	TaxableAmount decimal.Decimal `gorm:"column:taxable_amount;type:decimal(12,2)" json:"taxableAmount"`
	CGSTRate      decimal.Decimal `gorm:"column:cgst_rate;type:decimal(6,4)" json:"cgstRate"`
	SGSTRate      decimal.Decimal `gorm:"column:sgst_rate;type:decimal(6,4)" json:"sgstRate"`
	CGSTAmount    decimal.Decimal `gorm:"column:cgst_amount;type:decimal(12,2)" json:"cgstAmount"`
	SGSTAmount    decimal.Decimal `gorm:"column:sgst_amount;type:decimal(12,2)" json:"sgstAmount"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(12,2)" json:"total"`

	AdvancePayments    datatypes.JSONSlice[AdvancePayment] `gorm:"column:advance_payments" json:"advancePayments"`
	TotalAdvanceAmount decimal.Decimal                     `gorm:"column:total_advance_amount;type:decimal(12,2)" json:"totalAdvanceAmount"`
	BalanceAmount      decimal.Decimal                     `gorm:"column:balance_amount;type:decimal(12,2)" json:"balanceAmount"`

	IsActive  bool   `gorm:"column:is_active;index;default:true" json:"isActive"`
	CreatedBy string `gorm:"column:created_by;size:64" json:"createdBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *BanquetBooking) RecomputeBalance() {
	b.TotalAdvanceAmount = SumPayments(b.AdvancePayments)
	balance := b.Total.Sub(b.TotalAdvanceAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	b.BalanceAmount = RoundMoney(balance)
}
