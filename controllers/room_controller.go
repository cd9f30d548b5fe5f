package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type roomRequest struct {
	CategoryID  *uint            `json:"categoryId"`
	RoomNumber  *string          `json:"roomNumber"`
	Price       *decimal.Decimal `json:"price"`
	ExtraBed    *bool            `json:"extraBed"`
	Floor       *string          `json:"floor"`
	Description *string          `json:"description"`
}

func (r roomRequest) input() services.RoomInput {
	return services.RoomInput{
		CategoryID:  r.CategoryID,
		RoomNumber:  r.RoomNumber,
		Price:       r.Price,
		ExtraBed:    r.ExtraBed,
		Floor:       r.Floor,
		Description: r.Description,
	}
}

type roomStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available maintenance"`
}

type availabilityQuery struct {
	CheckInDate  string `form:"checkInDate"`
	CheckOutDate string `form:"checkOutDate"`
}

type RoomController struct {
	Rooms        *services.RoomService
	Availability *services.AvailabilityService
	Reconcile    *services.ReconcileService
	Log          *logrus.Logger
}

func NewRoomController(rooms *services.RoomService, availability *services.AvailabilityService, reconcile *services.ReconcileService, log *logrus.Logger) *RoomController {
	return &RoomController{Rooms: rooms, Availability: availability, Reconcile: reconcile, Log: log}
}

// GetRooms lists rooms, optionally filtered by ?categoryId= and a
// comma-separated ?status=.
func (rc *RoomController) GetRooms(c *gin.Context) {
	var filter repository.RoomFilter
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid categoryId")
			return
		}
		filter.CategoryID = uint(id)
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, models.RoomStatus(strings.ToLower(s)))
			}
		}
	}

	rooms, err := rc.Rooms.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := rc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.Rooms.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.Rooms.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req roomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.Rooms.SetStatus(c.Request.Context(), id, models.RoomStatus(req.Status))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// GetAvailableRooms answers GET /rooms/available?checkInDate=&checkOutDate=.
func (rc *RoomController) GetAvailableRooms(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	groups, err := rc.Availability.AvailableRooms(c.Request.Context(), q.CheckInDate, q.CheckOutDate)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, groups)
}

func (rc *RoomController) ReconcileRooms(c *gin.Context) {
	fixed, err := rc.Reconcile.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	if fixed == nil {
		fixed = []string{}
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"released": fixed, "count": len(fixed)})
}
