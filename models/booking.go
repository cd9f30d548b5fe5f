package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GuestDetails is stored inline on the booking row.
type GuestDetails struct {
	GuestName     string `gorm:"column:guest_name;size:150" json:"guestName"`
	ContactNumber string `gorm:"column:contact_number;size:30" json:"contactNumber"`
	Email         string `gorm:"column:email;size:150" json:"email"`
	Address       string `gorm:"column:address;type:text" json:"address"`
	IDProofType   string `gorm:"column:id_proof_type;size:50" json:"idProofType"`
	IDProofNumber string `gorm:"column:id_proof_number;size:80" json:"idProofNumber"`
	CompanyName   string `gorm:"column:company_name;size:150" json:"companyName"`
	GSTNumber     string `gorm:"column:gst_number;size:30" json:"gstNumber"`
	Adults        int    `gorm:"column:adults;default:1" json:"adults"`
	Children      int    `gorm:"column:children;default:0" json:"children"`
	Notes         string `gorm:"column:notes;type:text" json:"notes"`
}

type StatusChange struct {
	Status    BookingStatus `json:"status"`
	ChangedAt time.Time     `json:"changedAt"`
	ChangedBy string        `json:"changedBy,omitempty"`
}

type AdvancePayment struct {
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

type ExtensionRecord struct {
	PreviousCheckOut time.Time       `json:"previousCheckOut"`
	NewCheckOut      time.Time       `json:"newCheckOut"`
	Reason           string          `json:"reason"`
	AdditionalAmount decimal.Decimal `json:"additionalAmount"`
	PaymentMode      string          `json:"paymentMode,omitempty"`
	ApprovedBy       string          `json:"approvedBy,omitempty"`
	ExtendedAt       time.Time       `json:"extendedAt"`
}

type AmendmentRecord struct {
	PreviousCheckOut   time.Time       `json:"previousCheckOut"`
	NewCheckOut        time.Time       `json:"newCheckOut"`
	PreviousDays       int             `json:"previousDays"`
	NewDays            int             `json:"newDays"`
	RateAdjustment     decimal.Decimal `json:"rateAdjustment"`
	ExtraBedAdjustment decimal.Decimal `json:"extraBedAdjustment"`
	AmendmentFee       decimal.Decimal `json:"amendmentFee"`
	Reason             string          `json:"reason"`
	AmendedBy          string          `json:"amendedBy,omitempty"`
	AmendedAt          time.Time       `json:"amendedAt"`
}

type Booking struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	GRCNumber  string        `gorm:"column:grc_number;size:20;uniqueIndex" json:"grcNumber"`
	CategoryID uint          `gorm:"column:category_id;index" json:"categoryId"`
	Rooms      []BookingRoom `gorm:"foreignKey:BookingID" json:"rooms"`

	CheckInDate  time.Time `gorm:"column:check_in_date;type:date;index" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date;type:date;index" json:"checkOutDate"`
	Days         int       `gorm:"column:days" json:"days"`

	GuestDetails `gorm:"embedded"`

	TaxableAmount  decimal.Decimal `gorm:"column:taxable_amount;type:decimal(12,2)" json:"taxableAmount"`
	CGSTRate       decimal.Decimal `gorm:"column:cgst_rate;type:decimal(6,4)" json:"cgstRate"`
	SGSTRate       decimal.Decimal `gorm:"column:sgst_rate;type:decimal(6,4)" json:"sgstRate"`
	CGSTAmount     decimal.Decimal `gorm:"column:cgst_amount;type:decimal(12,2)" json:"cgstAmount"`
	SGSTAmount     decimal.Decimal `gorm:"column:sgst_amount;type:decimal(12,2)" json:"sgstAmount"`
	ExtraBedCharge decimal.Decimal `gorm:"column:extra_bed_charge;type:decimal(12,2)" json:"extraBedCharge"`
	ExtraBedTotal  decimal.Decimal `gorm:"column:extra_bed_total;type:decimal(12,2)" json:"extraBedTotal"`
	Rate           decimal.Decimal `gorm:"column:rate;type:decimal(12,2)" json:"rate"`

	AdvancePayments    datatypes.JSONSlice[AdvancePayment] `gorm:"column:advance_payments" json:"advancePayments"`
	TotalAdvanceAmount decimal.Decimal                     `gorm:"column:total_advance_amount;type:decimal(12,2)" json:"totalAdvanceAmount"`
	BalanceAmount      decimal.Decimal                     `gorm:"column:balance_amount;type:decimal(12,2)" json:"balanceAmount"`

	Status   BookingStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	IsActive bool          `gorm:"column:is_active;index;default:true" json:"isActive"`

	StatusHistory    datatypes.JSONSlice[StatusChange]    `gorm:"column:status_history" json:"statusHistory"`
	ExtensionHistory datatypes.JSONSlice[ExtensionRecord] `gorm:"column:extension_history" json:"extensionHistory"`
	AmendmentHistory datatypes.JSONSlice[AmendmentRecord] `gorm:"column:amendment_history" json:"amendmentHistory"`

	CreatedBy    string `gorm:"column:created_by;size:64" json:"createdBy,omitempty"`
	CategoryName string `gorm:"-" json:"categoryName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomNumbers lists the booked rooms in booking order.
func (b *Booking) RoomNumbers() []string {
	out := make([]string, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		out = append(out, r.RoomNumber)
	}
	return out
}

func (b *Booking) HasRoom(number string) bool {
	for _, r := range b.Rooms {
		if r.RoomNumber == number {
			return true
		}
	}
	return false
}

// HoldsRooms reports whether the booking blocks its rooms for its dates.
func (b *Booking) HoldsRooms() bool {
	return b.IsActive && b.Status.IsOpen()
}

// RecomputeBalance refreshes the advance total and the balance due.
func (b *Booking) RecomputeBalance() {
	b.TotalAdvanceAmount = SumPayments(b.AdvancePayments)
	balance := b.Rate.Sub(b.TotalAdvanceAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	b.BalanceAmount = RoundMoney(balance)
}

// MarshalJSON adds the legacy comma-joined roomNumber next to the room list.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	numbers := b.RoomNumbers()
	return json.Marshal(struct {
		plain
		RoomNumber  string   `json:"roomNumber"`
		RoomNumbers []string `json:"roomNumbers"`
	}{plain(b), strings.Join(numbers, ","), numbers})
}
