package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ExperienceCategory represents the category of an experience
type ExperienceCategory string

const (
	CategoryAdventure   ExperienceCategory = "Adventure"
	CategoryCulinary    ExperienceCategory = "Culinary"
	CategoryCultural    ExperienceCategory = "Cultural"
	CategoryPhotography ExperienceCategory = "Photography"
)

// ValidExperienceCategory reports whether c is a known category
func ValidExperienceCategory(c ExperienceCategory) bool {
	switch c {
	case CategoryAdventure, CategoryCulinary, CategoryCultural, CategoryPhotography:
		return true
	}
	return false
}

// Experience represents a bookable activity
type Experience struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	Title          string             `json:"title" db:"title"`
	Description    string             `json:"description" db:"description"`
	Location       string             `json:"location" db:"location"`
	PricePerPerson float64            `json:"price" db:"price_per_person"`
	ImageURL       string             `json:"image" db:"image_url"`
	Category       ExperienceCategory `json:"category" db:"category"`
	Duration       string             `json:"duration" db:"duration"`
	Rating         float64            `json:"rating" db:"rating"`
	ReviewCount    int                `json:"reviewCount" db:"review_count"`
	MaxGroupSize   int                `json:"maxGroupSize" db:"max_group_size"`
	IsFeatured     bool               `json:"isFeatured" db:"is_featured"`
	CreatedAt      time.Time          `json:"createdAt" db:"created_at"`
}

// CreateExperienceRequest represents the request to create an experience
type CreateExperienceRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description" binding:"required"`
	Location     string  `json:"location" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Image        string  `json:"image" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	Duration     string  `json:"duration" binding:"required"`
	MaxGroupSize int     `json:"maxGroupSize" binding:"required,min=1"`
	IsFeatured   bool    `json:"isFeatured"`
}

// Validate validates the create experience request
func (r *CreateExperienceRequest) Validate() error {
	if !ValidExperienceCategory(ExperienceCategory(r.Category)) {
		return errors.New("category must be one of Adventure, Culinary, Cultural, Photography")
	}
	return nil
}
