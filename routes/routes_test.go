package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/cache"
	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
	"hotel-pms/services"
)

const secret = "routes-test-secret"

type api struct {
	t      *testing.T
	engine *gin.Engine
	store  repository.Store
	staff  string
	admin  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := config.ConnectDatabase(&config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
		GinMode:    "release",
	}, log)
	require.NoError(t, err)
	store := repository.NewGormStore(db, 0)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	cat := models.Category{Name: "DELUXE", Price: decimal.NewFromInt(2000)}
	require.NoError(t, store.Categories().Create(ctx, &cat))
	for _, n := range []string{"101", "102"} {
		room := models.Room{CategoryID: cat.ID, RoomNumber: n, Price: decimal.NewFromInt(2000), Status: models.RoomAvailable}
		require.NoError(t, store.Rooms().Create(ctx, &room))
	}

	var c cache.AvailabilityCache = cache.NopCache{}
	var events queue.Publisher = queue.NopPublisher{}
	bookings := services.NewBookingService(store, c, events, log)
	// keeps the amendment notice window open for the dates used below
	bookings.Now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	engine, err := SetupRouter(Controllers{
		Categories: controllers.NewCategoryController(services.NewCategoryService(store, c, log), log),
		Rooms: controllers.NewRoomController(
			services.NewRoomService(store, c, log),
			services.NewAvailabilityService(store, c, log),
			services.NewReconcileService(store, c, events, log),
			log,
		),
		Bookings: controllers.NewBookingController(bookings, log),
		Banquets: controllers.NewBanquetController(services.NewBanquetService(store, events, log), log),
	}, Options{JWTSecret: secret, CORSOrigins: []string{"*"}, Log: log})
	require.NoError(t, err)

	return &api{
		t:      t,
		engine: engine,
		store:  store,
		staff:  token(t, "desk-1", services.RoleStaff),
		admin:  token(t, "gm", services.RoleAdmin),
	}
}

func token(t *testing.T, user, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func (a *api) do(method, path, tok string, body any) (int, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (a *api) book(room, in, out string) map[string]any {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/bookings/book", a.staff, map[string]any{
		"categoryId":    1,
		"selectedRooms": []map[string]any{{"roomNumber": room}},
		"checkInDate":   in,
		"checkOutDate":  out,
		"guestName":     "Asha Rao",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	booked := body["booked"].([]any)
	require.Len(a.t, booked, 1)
	return booked[0].(map[string]any)
}

func TestHealthAndPublicRoutes(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = a.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, _ = a.do(http.MethodGet, "/api/rooms/available?checkInDate=2024-01-10", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodGet, "/api/bookings/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	b := a.book("101", "2024-01-10", "2024-01-12")

	assert.Equal(t, "101", b["roomNumber"])
	assert.Equal(t, []any{"101"}, b["roomNumbers"])
	assert.Equal(t, 4200.0, b["rate"])
	assert.Equal(t, "Booked", b["status"])
	id := int(b["id"].(float64))

	code, body := a.do(http.MethodGet, "/api/rooms/available?checkInDate=2024-01-10&checkOutDate=2024-01-12", "", nil)
	require.Equal(t, http.StatusOK, code)
	groups := body["data"].([]any)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].(map[string]any)["rooms"], 1)

	code, _ = a.do(http.MethodPost, "/api/bookings/checkout/"+itoa(id), a.staff, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodPost, "/api/bookings/checkin/"+itoa(id), a.staff, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, "/api/bookings/checkout/"+itoa(id), a.staff, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 1.0, data["roomsReleased"])
	assert.Equal(t, 1.0, data["totalRooms"])

	code, _ = a.do(http.MethodGet, "/api/bookings/999", a.staff, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateBookingRejections(t *testing.T) {
	a := newAPI(t)
	a.book("101", "2024-01-10", "2024-01-12")

	code, _ := a.do(http.MethodPost, "/api/bookings/book", a.staff, map[string]any{
		"categoryId":    1,
		"selectedRooms": []map[string]any{{"roomNumber": "101"}},
		"checkInDate":   "2024-01-11",
		"checkOutDate":  "2024-01-13",
		"guestName":     "Late Guest",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body := a.do(http.MethodPost, "/api/bookings/book", a.staff, map[string]any{
		"categoryId":   1,
		"count":        1,
		"checkInDate":  "10/01/2024",
		"checkOutDate": "2024-01-13",
		"guestName":    "Bad Date",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = a.do(http.MethodPost, "/api/bookings/book", a.staff, map[string]any{
		"categoryId":   1,
		"count":        5,
		"checkInDate":  "2024-01-10",
		"checkOutDate": "2024-01-13",
		"guestName":    "Big Group",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	a := newAPI(t)
	b := a.book("101", "2024-01-10", "2024-01-12")
	id := itoa(int(b["id"].(float64)))

	code, _ := a.do(http.MethodDelete, "/api/bookings/unbook/"+id, a.staff, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := a.do(http.MethodDelete, "/api/bookings/unbook/"+id, a.admin, nil)
	require.Equal(t, http.StatusOK, code)
	booking := body["data"].(map[string]any)["booking"].(map[string]any)
	assert.Equal(t, "Cancelled", booking["status"])
	assert.Equal(t, false, booking["isActive"])

	code, _ = a.do(http.MethodPost, "/api/rooms", a.staff, map[string]any{"categoryId": 1, "roomNumber": "103", "price": 2000})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPost, "/api/rooms", a.admin, map[string]any{"categoryId": 1, "roomNumber": "103", "price": 2000})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, "/api/rooms", a.admin, map[string]any{"categoryId": 1, "roomNumber": "103", "price": 2000})
	assert.Equal(t, http.StatusConflict, code)

	code, body = a.do(http.MethodPost, "/api/rooms/reconcile", a.admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["data"].(map[string]any)["count"])
}

func TestAmendLimitOverHTTP(t *testing.T) {
	a := newAPI(t)
	b := a.book("101", "2024-01-10", "2024-01-12")
	path := "/api/bookings/amend/" + itoa(int(b["id"].(float64)))

	for _, out := range []string{"2024-01-13", "2024-01-14", "2024-01-15"} {
		code, body := a.do(http.MethodPost, path, a.staff, map[string]any{"newCheckOutDate": out})
		require.Equal(t, http.StatusOK, code, body)
	}
	code, body := a.do(http.MethodPost, path, a.staff, map[string]any{"newCheckOutDate": "2024-01-16"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "amended 3 times")
}

func TestBanquetMenuCapOverHTTP(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodPost, "/api/banquets", a.staff, map[string]any{
		"guestName":    "Mehta Wedding",
		"eventDate":    "2024-02-14",
		"pax":          50,
		"ratePerPlate": 600,
		"menuItems":    []string{"soup"},
	})
	require.Equal(t, http.StatusCreated, code, body)
	path := "/api/banquets/" + itoa(int(body["data"].(map[string]any)["id"].(float64)))

	for _, menu := range [][]string{{"salad"}, {"pasta"}} {
		code, _ = a.do(http.MethodPut, path, a.staff, map[string]any{"menuItems": menu})
		require.Equal(t, http.StatusOK, code)
	}
	code, _ = a.do(http.MethodPut, path, a.staff, map[string]any{"menuItems": []string{"cake"}})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPut, path, a.admin, map[string]any{"menuItems": []string{"cake"}})
	assert.Equal(t, http.StatusOK, code)
}

func itoa(n int) string { return strconv.Itoa(n) }
