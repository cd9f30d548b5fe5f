package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hotel-pms/cache"
	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/jobs"
	"hotel-pms/queue"
	"hotel-pms/routes"
	"hotel-pms/services"
)

func main() {
	envLoaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if !envLoaded {
		log.Info(".env not found; using process environment")
	}
	gin.SetMode(cfg.GinMode)

	store, err := config.OpenStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init failed")
	}
	log.WithField("driver", cfg.DBDriver).Info("store ready")

	// Redis and RabbitMQ are optional: without them availability is always
	// computed and events are dropped.
	var availability cache.AvailabilityCache = cache.NopCache{}
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		if redisClient, err = config.NewRedisClient(cfg); err != nil {
			log.WithError(err).Warn("redis unavailable; availability cache disabled")
			redisClient = nil
		} else {
			availability = cache.NewRedisAvailabilityCache(redisClient, cfg.CacheTTL, log)
			log.WithField("addr", cfg.RedisAddr).Info("availability cache enabled")
		}
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.RabbitMQURL, queue.DefaultExchange, queue.DefaultQueue, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable; events disabled")
		} else {
			events = pub
			log.Info("event publishing enabled")
		}
	}

	categoryService := services.NewCategoryService(store, availability, log)
	roomService := services.NewRoomService(store, availability, log)
	availabilityService := services.NewAvailabilityService(store, availability, log)
	reconcileService := services.NewReconcileService(store, availability, events, log)
	bookingService := services.NewBookingService(store, availability, events, log)
	banquetService := services.NewBanquetService(store, events, log)

	router, err := routes.SetupRouter(routes.Controllers{
		Categories: controllers.NewCategoryController(categoryService, log),
		Rooms:      controllers.NewRoomController(roomService, availabilityService, reconcileService, log),
		Bookings:   controllers.NewBookingController(bookingService, log),
		Banquets:   controllers.NewBanquetController(banquetService, log),
	}, routes.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})
	if err != nil {
		log.WithError(err).Fatal("router setup failed")
	}

	scheduler, err := jobs.NewScheduler(cfg.ReconcileCron, reconcileService, time.Minute, log)
	if err != nil {
		log.WithError(err).Fatal("scheduler setup failed")
	}
	scheduler.Start()

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	scheduler.Stop(ctx)
	shutdown(log, "event publisher", events.Close)
	if redisClient != nil {
		shutdown(log, "redis", redisClient.Close)
	}
	shutdown(log, "store", store.Close)

	log.Info("server stopped")
}

func shutdown(log *logrus.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.WithError(err).WithField("component", name).Warn("close failed")
	}
}
