package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nepstays/stays-backend/internal/models"
)

// ErrDateConflict is returned when a booking insert loses to an overlapping
// non-cancelled booking for the same property.
var ErrDateConflict = errors.New("property is not available for the requested dates")

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking. The insert is guarded by an overlap subquery
// so two concurrent creations for overlapping date ranges cannot both
// succeed: the check and the insert happen in one statement.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, property_id, check_in, check_out, guests, total_price, status)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE property_id = $3
			  AND status != 'cancelled'
			  AND check_in <= $5
			  AND check_out >= $4
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.UserID, booking.PropertyID,
		booking.CheckIn, booking.CheckOut, booking.Guests,
		booking.TotalPrice, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrDateConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// HasOverlap reports whether any non-cancelled booking on the property
// overlaps the requested range. Boundaries are inclusive: a booking ending
// the day another starts counts as a conflict.
func (r *BookingRepository) HasOverlap(propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE property_id = $1
			  AND status != 'cancelled'
			  AND check_in <= $3
			  AND check_out >= $2
		)
	`

	var overlap bool
	err := r.db.QueryRow(query, propertyID, checkIn, checkOut).Scan(&overlap)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return overlap, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, user_id, property_id, check_in, check_out, guests,
		       total_price, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking := &models.Booking{}
	err := r.db.QueryRow(query, bookingID).Scan(
		&booking.ID, &booking.UserID, &booking.PropertyID,
		&booking.CheckIn, &booking.CheckOut, &booking.Guests,
		&booking.TotalPrice, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetByUserID retrieves all bookings for a user, newest first, with the
// property summary joined in
func (r *BookingRepository) GetByUserID(userID uuid.UUID) ([]models.BookingWithProperty, error) {
	query := `
		SELECT b.id, b.user_id, b.property_id, b.check_in, b.check_out,
		       b.guests, b.total_price, b.status, b.created_at, b.updated_at,
		       p.id, p.name, p.images, p.location, p.price_per_night
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.BookingWithProperty{}
	for rows.Next() {
		var b models.BookingWithProperty
		err := rows.Scan(
			&b.ID, &b.UserID, &b.PropertyID, &b.CheckIn, &b.CheckOut,
			&b.Guests, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&b.Property.ID, &b.Property.Name, (*pq.StringArray)(&b.Property.Images),
			&b.Property.Location, &b.Property.Price,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatus writes a new booking status
func (r *BookingRepository) UpdateStatus(bookingID uuid.UUID, status models.BookingStatus) error {
	result, err := r.db.Exec(
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Cancel soft-cancels a booking. The record is kept for payment history;
// cancelled bookings no longer block availability.
func (r *BookingRepository) Cancel(bookingID uuid.UUID) error {
	return r.UpdateStatus(bookingID, models.BookingStatusCancelled)
}

// ConfirmIfPending moves a booking from pending to confirmed. The status
// guard makes concurrent verification callbacks confirm at most once.
func (r *BookingRepository) ConfirmIfPending(bookingID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE bookings SET status = 'confirmed', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		bookingID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Count returns the total number of bookings
func (r *BookingRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&count)
	return count, err
}
