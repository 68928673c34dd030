package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
)

// BookingService holds availability and pricing logic over the booking and
// property stores
type BookingService struct {
	bookingRepo  *database.BookingRepository
	propertyRepo *database.PropertyRepository
}

// NewBookingService creates a new BookingService
func NewBookingService(bookingRepo *database.BookingRepository, propertyRepo *database.PropertyRepository) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
	}
}

// PriceQuote is the result of a price calculation
type PriceQuote struct {
	BasePrice  float64 `json:"basePrice"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"totalPrice"`
}

// CheckAvailability reports whether the property is free for the requested
// range. A range is unavailable if any non-cancelled booking overlaps it,
// boundaries inclusive.
func (s *BookingService) CheckAvailability(propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	overlap, err := s.bookingRepo.HasOverlap(propertyID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// CalculatePrice computes the night count and total price for a stay.
// Returns the property store's error unchanged when the property is absent.
func (s *BookingService) CalculatePrice(propertyID uuid.UUID, checkIn, checkOut time.Time) (*PriceQuote, error) {
	property, err := s.propertyRepo.GetByID(propertyID)
	if err != nil {
		return nil, err
	}

	nights := Nights(checkIn, checkOut)
	return &PriceQuote{
		BasePrice:  property.PricePerNight,
		Nights:     nights,
		TotalPrice: property.PricePerNight * float64(nights),
	}, nil
}

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}
