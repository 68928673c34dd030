package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/middleware"
	"github.com/nepstays/stays-backend/internal/models"
	"github.com/nepstays/stays-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles booking lifecycle operations
type BookingHandler struct {
	bookingRepo    *database.BookingRepository
	propertyRepo   *database.PropertyRepository
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingRepo *database.BookingRepository,
	propertyRepo *database.PropertyRepository,
	bookingService *services.BookingService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingRepo:    bookingRepo,
		propertyRepo:   propertyRepo,
		bookingService: bookingService,
		logger:         logger,
	}
}

// CheckAvailability reports whether a property is free for a date range
// POST /api/bookings/check-availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req models.DateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	propertyID, checkIn, checkOut, err := req.Parse()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.propertyRepo.GetByID(propertyID); err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	available, err := h.bookingService.CheckAvailability(propertyID, checkIn, checkOut)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{"isAvailable": available})
}

// CalculatePrice quotes the total price for a stay
// POST /api/bookings/calculate-price
func (h *BookingHandler) CalculatePrice(c *gin.Context) {
	var req models.DateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	propertyID, checkIn, checkOut, err := req.Parse()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.bookingService.CalculatePrice(propertyID, checkIn, checkOut)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, quote)
}

// Create books a property for the authenticated user. Conflicting dates are
// rejected with 409, whether the conflict existed up front or the insert
// lost a race against a concurrent booking.
// POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	propertyID, checkIn, checkOut, err := req.Parse()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	property, err := h.propertyRepo.GetByID(propertyID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Guests > property.MaxGuests {
		respondError(c, http.StatusBadRequest, "Guest count exceeds property capacity")
		return
	}

	booking := &models.Booking{
		UserID:     userCtx.UserID,
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		TotalPrice: req.TotalPrice,
		Status:     models.BookingStatusPending,
	}

	err = h.bookingRepo.Create(booking)
	if err == database.ErrDateConflict {
		respondError(c, http.StatusConflict, "Property is not available for the selected dates")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"property_id": booking.PropertyID,
		"user_id":     booking.UserID,
	}).Info("Booking created")

	respondData(c, http.StatusCreated, booking)
}

// List returns the authenticated user's bookings, newest first
// GET /api/bookings
func (h *BookingHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookings, err := h.bookingRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(bookings), bookings)
}

// Get returns one of the authenticated user's bookings
// GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, booking)
}

// UpdateStatus moves a booking through its status machine. Illegal
// transitions are rejected with 400.
// PUT /api/bookings/:id
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := booking.TransitionTo(models.BookingStatus(req.Status)); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bookingRepo.UpdateStatus(booking.ID, booking.Status); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, booking)
}

// Cancel soft-cancels a booking. The row survives for payment history but
// stops blocking the property's availability.
// DELETE /api/bookings/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	if !booking.CanTransitionTo(models.BookingStatusCancelled) {
		respondError(c, http.StatusBadRequest, "Booking is already cancelled")
		return
	}

	if err := h.bookingRepo.Cancel(booking.ID); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithField("booking_id", booking.ID).Info("Booking cancelled")
	respondMessage(c, http.StatusOK, "Booking cancelled")
}

// ownedBooking loads the booking in the :id path segment and checks that it
// belongs to the authenticated user. Writes the error response itself and
// returns ok=false on failure.
func (h *BookingHandler) ownedBooking(c *gin.Context) (*models.Booking, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking id")
		return nil, false
	}

	booking, err := h.bookingRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Booking not found")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	if booking.UserID != userCtx.UserID {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this booking")
		return nil, false
	}
	return booking, true
}
