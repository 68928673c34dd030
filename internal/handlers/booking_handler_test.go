package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/middleware"
	"github.com/nepstays/stays-backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDatabase adapts a sqlmock connection to the database.DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&strings.Builder{})
	return logger
}

func setupBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mockDB := &mockDatabase{db: db}
	bookingRepo := database.NewBookingRepository(mockDB)
	propertyRepo := database.NewPropertyRepository(mockDB)
	handler := NewBookingHandler(
		bookingRepo, propertyRepo,
		services.NewBookingService(bookingRepo, propertyRepo),
		testLogger(),
	)
	return handler, mock, func() { db.Close() }
}

// authedContext creates a Gin context carrying an authenticated user,
// simulating AuthMiddleware
func authedContext(userID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.UserContextKey, middleware.UserContext{
		UserID: userID,
		Email:  "asha@example.com",
		Role:   "user",
	})
	return c, w
}

func jsonRequest(c *gin.Context, method string, body interface{}) {
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(method, "/", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
}

func bookingRow(bookingID, userID, propertyID uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "property_id", "check_in", "check_out",
		"guests", "total_price", "status", "created_at", "updated_at",
	}).AddRow(
		bookingID, userID, propertyID, now, now.Add(48*time.Hour),
		2, 7000.0, status, now, now,
	)
}

func testPropertyRow(propertyID uuid.UUID, pricePerNight float64, maxGuests int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "destination_id", "name", "description", "location",
		"price_per_night", "images", "amenities", "rating", "review_count",
		"beds", "baths", "max_guests", "type", "is_featured", "created_at",
		"destination_name",
	}).AddRow(
		propertyID, uuid.New(), "Lakeside Retreat", "A quiet stay", "Pokhara",
		pricePerNight, []byte("{}"), []byte("{}"), 4.5, 12,
		2, 1, maxGuests, "Homestay", false, time.Now(),
		"Pokhara",
	)
}

func TestGetBooking_OwnedByAnotherUser(t *testing.T) {
	handler, mock, cleanup := setupBookingHandler(t)
	defer cleanup()

	bookingID := uuid.New()
	ownerID := uuid.New()
	requesterID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(bookingID).
		WillReturnRows(bookingRow(bookingID, ownerID, uuid.New(), "pending"))

	c, w := authedContext(requesterID)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_NotFound(t *testing.T) {
	handler, mock, cleanup := setupBookingHandler(t)
	defer cleanup()

	bookingID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(bookingID).
		WillReturnError(sql.ErrNoRows)

	c, w := authedContext(uuid.New())
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailability(t *testing.T) {
	propertyID := uuid.New()

	t.Run("Available", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnRows(testPropertyRow(propertyID, 3500, 4))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		c, w := authedContext(uuid.New())
		jsonRequest(c, http.MethodPost, gin.H{
			"propertyId": propertyID.String(),
			"checkIn":    "2025-03-10",
			"checkOut":   "2025-03-12",
		})

		handler.CheckAvailability(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isAvailable":true`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Blocked", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnRows(testPropertyRow(propertyID, 3500, 4))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		c, w := authedContext(uuid.New())
		jsonRequest(c, http.MethodPost, gin.H{
			"propertyId": propertyID.String(),
			"checkIn":    "2025-03-10",
			"checkOut":   "2025-03-12",
		})

		handler.CheckAvailability(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isAvailable":false`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Range", func(t *testing.T) {
		handler, _, cleanup := setupBookingHandler(t)
		defer cleanup()

		c, w := authedContext(uuid.New())
		jsonRequest(c, http.MethodPost, gin.H{
			"propertyId": propertyID.String(),
			"checkIn":    "2025-03-12",
			"checkOut":   "2025-03-10",
		})

		handler.CheckAvailability(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateBooking(t *testing.T) {
	propertyID := uuid.New()
	userID := uuid.New()

	body := gin.H{
		"property":   propertyID.String(),
		"checkIn":    "2025-03-10",
		"checkOut":   "2025-03-12",
		"guests":     2,
		"totalPrice": 7000,
	}

	t.Run("Success", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnRows(testPropertyRow(propertyID, 3500, 4))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		c, w := authedContext(userID)
		jsonRequest(c, http.MethodPost, body)

		handler.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Date Conflict", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnRows(testPropertyRow(propertyID, 3500, 4))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(sql.ErrNoRows)

		c, w := authedContext(userID)
		jsonRequest(c, http.MethodPost, body)

		handler.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Too Many Guests", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnRows(testPropertyRow(propertyID, 3500, 1))

		c, w := authedContext(userID)
		jsonRequest(c, http.MethodPost, body)

		handler.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Property Missing", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM properties p`).
			WithArgs(propertyID).
			WillReturnError(sql.ErrNoRows)

		c, w := authedContext(userID)
		jsonRequest(c, http.MethodPost, body)

		handler.Create(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelBooking(t *testing.T) {
	bookingID := uuid.New()
	userID := uuid.New()

	t.Run("Pending Booking Cancelled", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, userID, uuid.New(), "pending"))
		mock.ExpectExec(`UPDATE bookings SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, w := authedContext(userID)
		c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
		c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)

		handler.Cancel(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		handler, mock, cleanup := setupBookingHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, userID, uuid.New(), "cancelled"))

		c, w := authedContext(userID)
		c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
		c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)

		handler.Cancel(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingStatus_IllegalTransition(t *testing.T) {
	handler, mock, cleanup := setupBookingHandler(t)
	defer cleanup()

	bookingID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(bookingID).
		WillReturnRows(bookingRow(bookingID, userID, uuid.New(), "cancelled"))

	c, w := authedContext(userID)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	jsonRequest(c, http.MethodPut, gin.H{"status": "confirmed"})

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
