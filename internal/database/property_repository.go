package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nepstays/stays-backend/internal/models"
)

// PropertyRepository handles database operations for the properties table
type PropertyRepository struct {
	db DB
}

// NewPropertyRepository creates a new PropertyRepository
func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `
	p.id, p.destination_id, p.name, p.description, p.location,
	p.price_per_night, p.images, p.amenities, p.rating, p.review_count,
	p.beds, p.baths, p.max_guests, p.type, p.is_featured, p.created_at,
	d.name AS destination_name`

// Create inserts a new property and bumps the destination's property count
func (r *PropertyRepository) Create(property *models.Property) error {
	query := `
		INSERT INTO properties (
			id, destination_id, name, description, location, price_per_night,
			images, amenities, beds, baths, max_guests, type, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		property.ID, property.DestinationID, property.Name, property.Description,
		property.Location, property.PricePerNight, property.Images, property.Amenities,
		property.Beds, property.Baths, property.MaxGuests, property.Type, property.IsFeatured,
	).Scan(&property.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	_, err = r.db.Exec(
		`UPDATE destinations SET property_count = property_count + 1 WHERE id = $1`,
		property.DestinationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update destination property count: %w", err)
	}

	return nil
}

// GetByID retrieves a property by ID with its destination name joined in
func (r *PropertyRepository) GetByID(propertyID uuid.UUID) (*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.id = $1
	`

	return r.scanProperty(r.db.QueryRow(query, propertyID))
}

// GetAll retrieves all properties
func (r *PropertyRepository) GetAll() ([]models.Property, error) {
	return r.list(`
		SELECT `+propertyColumns+`
		FROM properties p
		JOIN destinations d ON d.id = p.destination_id
		ORDER BY p.created_at DESC
	`)
}

// GetFeatured retrieves properties flagged as featured
func (r *PropertyRepository) GetFeatured() ([]models.Property, error) {
	return r.list(`
		SELECT `+propertyColumns+`
		FROM properties p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.is_featured = TRUE
		ORDER BY p.created_at DESC
	`)
}

// GetByDestination retrieves properties belonging to a destination
func (r *PropertyRepository) GetByDestination(destinationID uuid.UUID) ([]models.Property, error) {
	return r.list(`
		SELECT `+propertyColumns+`
		FROM properties p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.destination_id = $1
		ORDER BY p.created_at DESC
	`, destinationID)
}

// Update updates a property's mutable fields
func (r *PropertyRepository) Update(property *models.Property) error {
	result, err := r.db.Exec(`
		UPDATE properties
		SET name = $2, description = $3, location = $4, price_per_night = $5,
			amenities = $6, beds = $7, baths = $8, max_guests = $9, is_featured = $10
		WHERE id = $1`,
		property.ID, property.Name, property.Description, property.Location,
		property.PricePerNight, property.Amenities, property.Beds, property.Baths,
		property.MaxGuests, property.IsFeatured,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
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

// Delete removes a property and decrements the destination's property count
func (r *PropertyRepository) Delete(propertyID uuid.UUID) error {
	var destinationID uuid.UUID
	err := r.db.QueryRow(
		`DELETE FROM properties WHERE id = $1 RETURNING destination_id`,
		propertyID,
	).Scan(&destinationID)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	_, err = r.db.Exec(
		`UPDATE destinations SET property_count = GREATEST(property_count - 1, 0) WHERE id = $1`,
		destinationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update destination property count: %w", err)
	}
	return nil
}

// Count returns the total number of properties
func (r *PropertyRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM properties`).Scan(&count)
	return count, err
}

func (r *PropertyRepository) list(query string, args ...interface{}) ([]models.Property, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		property, err := r.scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *property)
	}
	return properties, rows.Err()
}

func (r *PropertyRepository) scanProperty(row scanner) (*models.Property, error) {
	property := &models.Property{}
	err := row.Scan(
		&property.ID, &property.DestinationID, &property.Name, &property.Description,
		&property.Location, &property.PricePerNight,
		(*pq.StringArray)(&property.Images), (*pq.StringArray)(&property.Amenities),
		&property.Rating, &property.ReviewCount, &property.Beds, &property.Baths,
		&property.MaxGuests, &property.Type, &property.IsFeatured, &property.CreatedAt,
		&property.DestinationName,
	)
	if err != nil {
		return nil, err
	}
	return property, nil
}
