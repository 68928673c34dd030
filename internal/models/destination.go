package models

import (
	"time"

	"github.com/google/uuid"
)

// Destination represents a travel destination grouping properties
type Destination struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   NullString `json:"description,omitempty" db:"description"`
	ImageURL      string     `json:"image" db:"image_url"`
	PropertyCount int        `json:"propertyCount" db:"property_count"`
	IsPopular     bool       `json:"isPopular" db:"is_popular"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// CreateDestinationRequest represents the multipart form fields for creating
// a destination. The image arrives as a separate file part.
type CreateDestinationRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	IsPopular   bool   `form:"isPopular"`
}

// UpdateDestinationRequest represents the fields updatable on a destination
type UpdateDestinationRequest struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	IsPopular   *bool  `form:"isPopular"`
}
