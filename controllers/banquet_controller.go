package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type banquetRequest struct {
	GuestName       *string          `json:"guestName"`
	ContactNumber   *string          `json:"contactNumber"`
	EventDate       string           `json:"eventDate" binding:"omitempty,isodate"`
	HallName        *string          `json:"hallName"`
	Pax             *int             `json:"pax"`
	MenuItems       []string         `json:"menuItems"`
	RatePerPlate    *decimal.Decimal `json:"ratePerPlate"`
	CGSTPercent     *decimal.Decimal `json:"cgstRate"`
	SGSTPercent     *decimal.Decimal `json:"sgstRate"`
	AdvancePayments []paymentRequest `json:"advancePayments" binding:"omitempty,dive"`
}

func (r banquetRequest) input() (services.BanquetInput, error) {
	in := services.BanquetInput{
		GuestName:     r.GuestName,
		ContactNumber: r.ContactNumber,
		HallName:      r.HallName,
		Pax:           r.Pax,
		MenuItems:     r.MenuItems,
		RatePerPlate:  r.RatePerPlate,
		CGSTPercent:   r.CGSTPercent,
		SGSTPercent:   r.SGSTPercent,
	}
	var err error
	if in.EventDate, err = parseDateField(r.EventDate); err != nil {
		return in, err
	}
	in.AdvancePayments, err = payments(r.AdvancePayments)
	return in, err
}

type BanquetController struct {
	Svc *services.BanquetService
	Log *logrus.Logger
}

func NewBanquetController(svc *services.BanquetService, log *logrus.Logger) *BanquetController {
	return &BanquetController{Svc: svc, Log: log}
}

func (bc *BanquetController) bind(c *gin.Context) (services.BanquetInput, bool) {
	var req banquetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return services.BanquetInput{}, false
	}
	in, err := req.input()
	if err != nil {
		respondError(c, bc.Log, err)
		return in, false
	}
	return in, true
}

func (bc *BanquetController) CreateBanquet(c *gin.Context) {
	in, ok := bc.bind(c)
	if !ok {
		return
	}
	b, err := bc.Svc.Create(c.Request.Context(), in, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, b)
}

func (bc *BanquetController) GetBanquets(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	list, err := bc.Svc.List(c.Request.Context(), all)
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (bc *BanquetController) GetBanquet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := bc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (bc *BanquetController) UpdateBanquet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, ok := bc.bind(c)
	if !ok {
		return
	}
	b, err := bc.Svc.Update(c.Request.Context(), id, in, actorFrom(c))
	if err != nil {
		respondError(c, bc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}
