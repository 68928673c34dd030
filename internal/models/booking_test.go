package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitions(t *testing.T) {
	t.Run("Pending To Confirmed", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		err := b.TransitionTo(BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusConfirmed, b.Status)
	})

	t.Run("Pending To Cancelled", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		err := b.TransitionTo(BookingStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusCancelled, b.Status)
	})

	t.Run("Confirmed To Cancelled", func(t *testing.T) {
		b := &Booking{Status: BookingStatusConfirmed}
		err := b.TransitionTo(BookingStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusCancelled, b.Status)
	})

	t.Run("Confirmed To Pending Rejected", func(t *testing.T) {
		b := &Booking{Status: BookingStatusConfirmed}
		err := b.TransitionTo(BookingStatusPending)
		assert.Error(t, err)
		assert.Equal(t, BookingStatusConfirmed, b.Status)
	})

	t.Run("Cancelled Is Terminal", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCancelled}
		assert.Error(t, b.TransitionTo(BookingStatusPending))
		assert.Error(t, b.TransitionTo(BookingStatusConfirmed))
		assert.Equal(t, BookingStatusCancelled, b.Status)
	})

	t.Run("Unknown Status Rejected", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		err := b.TransitionTo(BookingStatus("refunded"))
		assert.Error(t, err)
		assert.Equal(t, BookingStatusPending, b.Status)
	})
}

func TestValidBookingStatus(t *testing.T) {
	assert.True(t, ValidBookingStatus(BookingStatusPending))
	assert.True(t, ValidBookingStatus(BookingStatusConfirmed))
	assert.True(t, ValidBookingStatus(BookingStatusCancelled))
	assert.False(t, ValidBookingStatus(BookingStatus("archived")))
	assert.False(t, ValidBookingStatus(BookingStatus("")))
}

func TestParseDate(t *testing.T) {
	t.Run("Date Only", func(t *testing.T) {
		d, err := ParseDate("2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("RFC 3339", func(t *testing.T) {
		d, err := ParseDate("2025-03-10T14:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, 14, d.Hour())
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseDate("10/03/2025")
		assert.Error(t, err)
	})
}

func TestDateRangeRequestParse(t *testing.T) {
	propertyID := uuid.New()

	t.Run("Valid Range", func(t *testing.T) {
		req := DateRangeRequest{
			PropertyID: propertyID.String(),
			CheckIn:    "2025-03-10",
			CheckOut:   "2025-03-12",
		}
		id, in, out, err := req.Parse()
		require.NoError(t, err)
		assert.Equal(t, propertyID, id)
		assert.True(t, out.After(in))
	})

	t.Run("Checkout Before Checkin", func(t *testing.T) {
		req := DateRangeRequest{
			PropertyID: propertyID.String(),
			CheckIn:    "2025-03-12",
			CheckOut:   "2025-03-10",
		}
		_, _, _, err := req.Parse()
		assert.Error(t, err)
	})

	t.Run("Same Day Rejected", func(t *testing.T) {
		req := DateRangeRequest{
			PropertyID: propertyID.String(),
			CheckIn:    "2025-03-10",
			CheckOut:   "2025-03-10",
		}
		_, _, _, err := req.Parse()
		assert.Error(t, err)
	})

	t.Run("Bad Property ID", func(t *testing.T) {
		req := DateRangeRequest{
			PropertyID: "not-a-uuid",
			CheckIn:    "2025-03-10",
			CheckOut:   "2025-03-12",
		}
		_, _, _, err := req.Parse()
		assert.Error(t, err)
	})
}
