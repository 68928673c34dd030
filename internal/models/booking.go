package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the closed set of legal status transitions.
// Anything not listed here is rejected instead of blindly overwritten.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusCancelled: {},
}

// ValidBookingStatus reports whether s is a known booking status
func ValidBookingStatus(s BookingStatus) bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether a booking may move from its current status
// to the target status
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[b.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo applies a status change after checking the transition table
func (b *Booking) TransitionTo(target BookingStatus) error {
	if !ValidBookingStatus(target) {
		return fmt.Errorf("unknown booking status: %s", target)
	}
	if !b.CanTransitionTo(target) {
		return fmt.Errorf("illegal booking status transition: %s -> %s", b.Status, target)
	}
	b.Status = target
	b.UpdatedAt = time.Now()
	return nil
}

// Booking represents a user's reservation of a property for a date range
type Booking struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	UserID     uuid.UUID     `json:"user" db:"user_id"`
	PropertyID uuid.UUID     `json:"property" db:"property_id"`
	CheckIn    time.Time     `json:"checkIn" db:"check_in"`
	CheckOut   time.Time     `json:"checkOut" db:"check_out"`
	Guests     int           `json:"guests" db:"guests"`
	TotalPrice float64       `json:"totalPrice" db:"total_price"`
	Status     BookingStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" db:"updated_at"`
}

// PropertySummary carries the property fields joined into booking listings
type PropertySummary struct {
	ID       uuid.UUID      `json:"id" db:"property_id"`
	Name     string         `json:"name" db:"property_name"`
	Images   pq.StringArray `json:"images" db:"property_images"`
	Location string         `json:"location" db:"property_location"`
	Price    float64        `json:"price" db:"property_price"`
}

// BookingWithProperty is a booking with its property summary joined in
type BookingWithProperty struct {
	Booking
	Property PropertySummary `json:"propertyDetails"`
}

// DateOnly is the wire format for check-in/check-out dates
const DateOnly = "2006-01-02"

// ParseDate parses a date in either date-only or RFC 3339 form
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// DateRangeRequest carries a property and date range, shared by the
// availability and price endpoints
type DateRangeRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
}

// Parse validates and converts the raw request fields
func (r *DateRangeRequest) Parse() (propertyID uuid.UUID, checkIn, checkOut time.Time, err error) {
	propertyID, err = uuid.Parse(r.PropertyID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, errors.New("invalid property id")
	}
	checkIn, err = ParseDate(r.CheckIn)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	checkOut, err = ParseDate(r.CheckOut)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	if !checkOut.After(checkIn) {
		return uuid.Nil, time.Time{}, time.Time{}, errors.New("checkOut must be after checkIn")
	}
	return propertyID, checkIn, checkOut, nil
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	PropertyID string  `json:"property" binding:"required"`
	CheckIn    string  `json:"checkIn" binding:"required"`
	CheckOut   string  `json:"checkOut" binding:"required"`
	Guests     int     `json:"guests" binding:"required,min=1"`
	TotalPrice float64 `json:"totalPrice" binding:"required,gt=0"`
}

// Parse validates and converts the raw request fields
func (r *CreateBookingRequest) Parse() (propertyID uuid.UUID, checkIn, checkOut time.Time, err error) {
	rng := DateRangeRequest{PropertyID: r.PropertyID, CheckIn: r.CheckIn, CheckOut: r.CheckOut}
	return rng.Parse()
}

// UpdateBookingStatusRequest represents the request to update a booking status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
