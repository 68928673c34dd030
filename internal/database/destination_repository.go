package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/models"
)

// DestinationRepository handles database operations for the destinations table
type DestinationRepository struct {
	db DB
}

// NewDestinationRepository creates a new DestinationRepository
func NewDestinationRepository(db DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

// Create inserts a new destination
func (r *DestinationRepository) Create(destination *models.Destination) error {
	query := `
		INSERT INTO destinations (id, name, description, image_url, is_popular)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if destination.ID == uuid.Nil {
		destination.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		destination.ID, destination.Name, destination.Description,
		destination.ImageURL, destination.IsPopular,
	).Scan(&destination.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	return nil
}

// GetByID retrieves a destination by ID
func (r *DestinationRepository) GetByID(destinationID uuid.UUID) (*models.Destination, error) {
	query := `
		SELECT id, name, description, image_url, property_count, is_popular, created_at
		FROM destinations
		WHERE id = $1
	`

	return r.scanDestination(r.db.QueryRow(query, destinationID))
}

// GetAll retrieves all destinations
func (r *DestinationRepository) GetAll() ([]models.Destination, error) {
	return r.list(`
		SELECT id, name, description, image_url, property_count, is_popular, created_at
		FROM destinations
		ORDER BY name
	`)
}

// GetPopular retrieves destinations flagged as popular
func (r *DestinationRepository) GetPopular() ([]models.Destination, error) {
	return r.list(`
		SELECT id, name, description, image_url, property_count, is_popular, created_at
		FROM destinations
		WHERE is_popular = TRUE
		ORDER BY name
	`)
}

// Update updates a destination's mutable fields
func (r *DestinationRepository) Update(destination *models.Destination) error {
	result, err := r.db.Exec(
		`UPDATE destinations SET name = $2, description = $3, image_url = $4, is_popular = $5 WHERE id = $1`,
		destination.ID, destination.Name, destination.Description,
		destination.ImageURL, destination.IsPopular,
	)
	if err != nil {
		return fmt.Errorf("failed to update destination: %w", err)
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

// Delete removes a destination
func (r *DestinationRepository) Delete(destinationID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM destinations WHERE id = $1`, destinationID)
	if err != nil {
		return fmt.Errorf("failed to delete destination: %w", err)
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

// Count returns the total number of destinations
func (r *DestinationRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM destinations`).Scan(&count)
	return count, err
}

func (r *DestinationRepository) list(query string) ([]models.Destination, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	destinations := []models.Destination{}
	for rows.Next() {
		destination, err := r.scanDestination(rows)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, *destination)
	}
	return destinations, rows.Err()
}

func (r *DestinationRepository) scanDestination(row scanner) (*models.Destination, error) {
	destination := &models.Destination{}
	err := row.Scan(
		&destination.ID, &destination.Name, &destination.Description,
		&destination.ImageURL, &destination.PropertyCount, &destination.IsPopular,
		&destination.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return destination, nil
}
