package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PropertyType represents the kind of accommodation
type PropertyType string

const (
	PropertyTypeHotel    PropertyType = "Hotel"
	PropertyTypeResort   PropertyType = "Resort"
	PropertyTypeHomestay PropertyType = "Homestay"
	PropertyTypeVilla    PropertyType = "Villa"
)

// ValidPropertyType reports whether t is a known property type
func ValidPropertyType(t PropertyType) bool {
	switch t {
	case PropertyTypeHotel, PropertyTypeResort, PropertyTypeHomestay, PropertyTypeVilla:
		return true
	}
	return false
}

// Property represents a bookable stay listing
type Property struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	DestinationID uuid.UUID      `json:"destination" db:"destination_id"`
	Name          string         `json:"name" db:"name"`
	Description   string         `json:"description" db:"description"`
	Location      string         `json:"location" db:"location"`
	PricePerNight float64        `json:"price" db:"price_per_night"`
	Images        pq.StringArray `json:"images" db:"images"`
	Amenities     pq.StringArray `json:"amenities" db:"amenities"`
	Rating        float64        `json:"rating" db:"rating"`
	ReviewCount   int            `json:"reviewCount" db:"review_count"`
	Beds          int            `json:"beds" db:"beds"`
	Baths         int            `json:"baths" db:"baths"`
	MaxGuests     int            `json:"maxGuests" db:"max_guests"`
	Type          PropertyType   `json:"type" db:"type"`
	IsFeatured    bool           `json:"isFeatured" db:"is_featured"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`

	// Joined from destinations for list/detail responses, not a column
	DestinationName string `json:"destinationName,omitempty" db:"destination_name"`
}

// CreatePropertyRequest represents the multipart form fields for creating a
// property. Images arrive as separate file parts.
type CreatePropertyRequest struct {
	DestinationID string   `form:"destination" binding:"required"`
	Name          string   `form:"name" binding:"required"`
	Description   string   `form:"description" binding:"required"`
	Location      string   `form:"location" binding:"required"`
	Price         float64  `form:"price" binding:"required,gt=0"`
	Amenities     []string `form:"amenities"`
	Beds          int      `form:"beds" binding:"required,min=1"`
	Baths         int      `form:"baths" binding:"required,min=1"`
	MaxGuests     int      `form:"maxGuests" binding:"required,min=1"`
	Type          string   `form:"type" binding:"required"`
	IsFeatured    bool     `form:"isFeatured"`
}

// Validate validates the create property request
func (r *CreatePropertyRequest) Validate() error {
	if !ValidPropertyType(PropertyType(r.Type)) {
		return errors.New("type must be one of Hotel, Resort, Homestay, Villa")
	}
	return nil
}

// UpdatePropertyRequest represents the fields updatable on a property
type UpdatePropertyRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price"`
	Amenities   []string `json:"amenities"`
	Beds        *int     `json:"beds"`
	Baths       *int     `json:"baths"`
	MaxGuests   *int     `json:"maxGuests"`
	IsFeatured  *bool    `json:"isFeatured"`
}
