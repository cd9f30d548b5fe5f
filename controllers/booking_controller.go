package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type selectedRoomRequest struct {
	RoomNumber        string          `json:"roomNumber" binding:"required"`
	CustomRate        decimal.Decimal `json:"customRate"`
	ExtraBed          bool            `json:"extraBed"`
	ExtraBedStartDate string          `json:"extraBedStartDate" binding:"omitempty,isodate"`
}

type paymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode" binding:"required"`
	Date      string          `json:"date" binding:"omitempty,isodate"`
	Reference string          `json:"reference"`
}

func (p paymentRequest) payment() (models.AdvancePayment, error) {
	out := models.AdvancePayment{Amount: p.Amount, Mode: p.Mode, Reference: p.Reference}
	d, err := parseDateField(p.Date)
	if err != nil {
		return out, err
	}
	if d != nil {
		out.Date = *d
	}
	return out, nil
}

func payments(reqs []paymentRequest) ([]models.AdvancePayment, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]models.AdvancePayment, 0, len(reqs))
	for _, r := range reqs {
		p, err := r.payment()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type createBookingRequest struct {
	CategoryID    uint                  `json:"categoryId" binding:"required"`
	SelectedRooms []selectedRoomRequest `json:"selectedRooms" binding:"omitempty,dive"`
	Count         int                   `json:"count" binding:"omitempty,min=1"`
	CheckInDate   string                `json:"checkInDate" binding:"required,isodate"`
	CheckOutDate  string                `json:"checkOutDate" binding:"required,isodate"`

	models.GuestDetails

	TaxableAmount   decimal.Decimal  `json:"taxableAmount"`
	CGSTPercent     decimal.Decimal  `json:"cgstRate"`
	SGSTPercent     decimal.Decimal  `json:"sgstRate"`
	ExtraBedCharge  decimal.Decimal  `json:"extraBedCharge"`
	AdvancePayments []paymentRequest `json:"advancePayments" binding:"omitempty,dive"`
}

func (r createBookingRequest) input() (services.CreateBookingInput, error) {
	in := services.CreateBookingInput{
		CategoryID:     r.CategoryID,
		Count:          r.Count,
		Guest:          r.GuestDetails,
		TaxableAmount:  r.TaxableAmount,
		CGSTPercent:    r.CGSTPercent,
		SGSTPercent:    r.SGSTPercent,
		ExtraBedCharge: r.ExtraBedCharge,
	}
	var err error
	if in.CheckInDate, err = models.ParseDate(r.CheckInDate); err != nil {
		return in, err
	}
	if in.CheckOutDate, err = models.ParseDate(r.CheckOutDate); err != nil {
		return in, err
	}
	for _, sr := range r.SelectedRooms {
		start, err := parseDateField(sr.ExtraBedStartDate)
		if err != nil {
			return in, err
		}
		in.SelectedRooms = append(in.SelectedRooms, services.SelectedRoom{
			RoomNumber:        sr.RoomNumber,
			CustomRate:        sr.CustomRate,
			ExtraBed:          sr.ExtraBed,
			ExtraBedStartDate: start,
		})
	}
	in.AdvancePayments, err = payments(r.AdvancePayments)
	return in, err
}

type updateBookingRequest struct {
	GuestName     *string `json:"guestName"`
	ContactNumber *string `json:"contactNumber"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	IDProofType   *string `json:"idProofType"`
	IDProofNumber *string `json:"idProofNumber"`
	CompanyName   *string `json:"companyName"`
	GSTNumber     *string `json:"gstNumber"`
	Notes         *string `json:"notes"`
	Adults        *int    `json:"adults" binding:"omitempty,min=0"`
	Children      *int    `json:"children" binding:"omitempty,min=0"`

	RoomNumbers    []string         `json:"roomNumbers"`
	TaxableAmount  *decimal.Decimal `json:"taxableAmount"`
	ExtraBedCharge *decimal.Decimal `json:"extraBedCharge"`
	CGSTPercent    *decimal.Decimal `json:"cgstRate"`
	SGSTPercent    *decimal.Decimal `json:"sgstRate"`

	Status        *models.BookingStatus `json:"status"`
	StatusHistory []models.StatusChange `json:"statusHistory"`
}

func (r updateBookingRequest) input() services.UpdateBookingInput {
	return services.UpdateBookingInput{
		GuestName:      r.GuestName,
		ContactNumber:  r.ContactNumber,
		Email:          r.Email,
		Address:        r.Address,
		IDProofType:    r.IDProofType,
		IDProofNumber:  r.IDProofNumber,
		CompanyName:    r.CompanyName,
		GSTNumber:      r.GSTNumber,
		Notes:          r.Notes,
		Adults:         r.Adults,
		Children:       r.Children,
		RoomNumbers:    r.RoomNumbers,
		TaxableAmount:  r.TaxableAmount,
		ExtraBedCharge: r.ExtraBedCharge,
		CGSTPercent:    r.CGSTPercent,
		SGSTPercent:    r.SGSTPercent,
		Status:         r.Status,
		StatusHistory:  r.StatusHistory,
	}
}

type extendBookingRequest struct {
	ExtendedCheckOut string          `json:"extendedCheckOut" binding:"required,isodate"`
	Reason           string          `json:"reason"`
	AdditionalAmount decimal.Decimal `json:"additionalAmount"`
	PaymentMode      string          `json:"paymentMode"`
	ApprovedBy       string          `json:"approvedBy"`
}

type amendBookingRequest struct {
	NewCheckOutDate string `json:"newCheckOutDate" binding:"required,isodate"`
	Reason          string `json:"reason"`
}

type BookingController struct {
	Svc *services.BookingService
	Log *logrus.Logger
}

func NewBookingController(svc *services.BookingService, log *logrus.Logger) *BookingController {
	return &BookingController{Svc: svc, Log: log}
}

// CreateBooking handles POST /bookings/book.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondBindError(c, err)
		return
	}
	booking, err := bc.Svc.CreateBooking(c.Request.Context(), in, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booked": []*models.Booking{booking}})
}

// GetBookings handles GET /bookings/all; ?all=true includes cancelled ones.
func (bc *BookingController) GetBookings(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	list, err := bc.Svc.ListBookings(c.Request.Context(), all)
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	booking, err := bc.Svc.UpdateBooking(c.Request.Context(), id, req.input(), actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CheckIn(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	booking, err := bc.Svc.CheckIn(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) CheckoutBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	res, err := bc.Svc.CheckoutBooking(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// DeleteBooking handles DELETE /bookings/unbook/:bookingId (soft).
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	res, err := bc.Svc.DeleteBooking(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

func (bc *BookingController) PermanentlyDeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	if err := bc.Svc.PermanentlyDeleteBooking(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func (bc *BookingController) ExtendBooking(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	var req extendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	newOut, err := models.ParseDate(req.ExtendedCheckOut)
	if err != nil {
		respondBindError(c, err)
		return
	}
	booking, err := bc.Svc.ExtendBooking(c.Request.Context(), id, services.ExtendBookingInput{
		ExtendedCheckOut: newOut,
		Reason:           req.Reason,
		AdditionalAmount: req.AdditionalAmount,
		PaymentMode:      req.PaymentMode,
		ApprovedBy:       req.ApprovedBy,
	}, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) AmendBookingStay(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	var req amendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	newOut, err := models.ParseDate(req.NewCheckOutDate)
	if err != nil {
		respondBindError(c, err)
		return
	}
	booking, err := bc.Svc.AmendBookingStay(c.Request.Context(), id, services.AmendBookingInput{
		NewCheckOutDate: newOut,
		Reason:          req.Reason,
	}, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (bc *BookingController) AddAdvancePayment(c *gin.Context) {
	id, ok := paramID(c, "bookingId")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := req.payment()
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	booking, err := bc.Svc.AddAdvancePayment(c.Request.Context(), id, p, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

