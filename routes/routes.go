package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
	"hotel-pms/services"
)

type Controllers struct {
	Categories *controllers.CategoryController
	Rooms      *controllers.RoomController
	Bookings   *controllers.BookingController
	Banquets   *controllers.BanquetController
}

type Options struct {
	JWTSecret   string
	CORSOrigins []string
	Log         *logrus.Logger
}

// SetupRouter wires middleware and every route.
func SetupRouter(ctl Controllers, opts Options) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(opts.Log))

	allowCredentials := true
	for _, origin := range opts.CORSOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(opts.JWTSecret)
	adminOnly := middleware.RequireRole(services.RoleAdmin)

	api := r.Group("/api")
	{
		// public
		api.GET("/categories", ctl.Categories.GetCategories)
		api.GET("/rooms", ctl.Rooms.GetRooms)
		// must stay before /rooms/:id
		api.GET("/rooms/available", ctl.Rooms.GetAvailableRooms)

		categories := api.Group("/categories", auth)
		{
			categories.GET("/:id", ctl.Categories.GetCategory)
			categories.POST("", adminOnly, ctl.Categories.CreateCategory)
			categories.PUT("/:id", adminOnly, ctl.Categories.UpdateCategory)
			categories.DELETE("/:id", adminOnly, ctl.Categories.DeleteCategory)
		}

		rooms := api.Group("/rooms", auth)
		{
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.POST("", adminOnly, ctl.Rooms.CreateRoom)
			rooms.POST("/reconcile", adminOnly, ctl.Rooms.ReconcileRooms)
			rooms.PUT("/:id", adminOnly, ctl.Rooms.UpdateRoom)
			rooms.PATCH("/:id/status", adminOnly, ctl.Rooms.UpdateRoomStatus)
			rooms.DELETE("/:id", adminOnly, ctl.Rooms.DeleteRoom)
		}

		bookings := api.Group("/bookings", auth)
		{
			bookings.POST("/book", ctl.Bookings.CreateBooking)
			bookings.GET("/all", ctl.Bookings.GetBookings)
			bookings.GET("/:id", ctl.Bookings.GetBooking)
			bookings.PUT("/:id", ctl.Bookings.UpdateBooking)
			bookings.POST("/checkin/:bookingId", ctl.Bookings.CheckIn)
			bookings.POST("/checkout/:bookingId", ctl.Bookings.CheckoutBooking)
			bookings.POST("/extend/:bookingId", ctl.Bookings.ExtendBooking)
			bookings.POST("/amend/:bookingId", ctl.Bookings.AmendBookingStay)
			bookings.POST("/payments/:bookingId", ctl.Bookings.AddAdvancePayment)
			bookings.DELETE("/unbook/:bookingId", adminOnly, ctl.Bookings.DeleteBooking)
			bookings.DELETE("/permanent/:bookingId", adminOnly, ctl.Bookings.PermanentlyDeleteBooking)
		}

		banquets := api.Group("/banquets", auth)
		{
			banquets.POST("", ctl.Banquets.CreateBanquet)
			banquets.GET("", ctl.Banquets.GetBanquets)
			banquets.GET("/:id", ctl.Banquets.GetBanquet)
			banquets.PUT("/:id", ctl.Banquets.UpdateBanquet)
		}
	}

	return r, nil
}
