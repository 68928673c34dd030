package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/models"
)

// ExperienceRepository handles database operations for the experiences table
type ExperienceRepository struct {
	db DB
}

// NewExperienceRepository creates a new ExperienceRepository
func NewExperienceRepository(db DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

const experienceColumns = `
	id, title, description, location, price_per_person, image_url, category,
	duration, rating, review_count, max_group_size, is_featured, created_at`

// Create inserts a new experience
func (r *ExperienceRepository) Create(experience *models.Experience) error {
	query := `
		INSERT INTO experiences (
			id, title, description, location, price_per_person, image_url,
			category, duration, max_group_size, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if experience.ID == uuid.Nil {
		experience.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		experience.ID, experience.Title, experience.Description, experience.Location,
		experience.PricePerPerson, experience.ImageURL, experience.Category,
		experience.Duration, experience.MaxGroupSize, experience.IsFeatured,
	).Scan(&experience.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create experience: %w", err)
	}

	return nil
}

// GetByID retrieves an experience by ID
func (r *ExperienceRepository) GetByID(experienceID uuid.UUID) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`
	return r.scanExperience(r.db.QueryRow(query, experienceID))
}

// GetAll retrieves all experiences
func (r *ExperienceRepository) GetAll() ([]models.Experience, error) {
	return r.list(`SELECT `+experienceColumns+` FROM experiences ORDER BY created_at DESC`)
}

// GetFeatured retrieves experiences flagged as featured
func (r *ExperienceRepository) GetFeatured() ([]models.Experience, error) {
	return r.list(`SELECT ` + experienceColumns + ` FROM experiences WHERE is_featured = TRUE ORDER BY created_at DESC`)
}

// GetByCategory retrieves experiences in a category
func (r *ExperienceRepository) GetByCategory(category models.ExperienceCategory) ([]models.Experience, error) {
	return r.list(`SELECT `+experienceColumns+` FROM experiences WHERE category = $1 ORDER BY created_at DESC`, category)
}

// Update updates an experience's mutable fields
func (r *ExperienceRepository) Update(experience *models.Experience) error {
	result, err := r.db.Exec(`
		UPDATE experiences
		SET title = $2, description = $3, location = $4, price_per_person = $5,
			image_url = $6, category = $7, duration = $8, max_group_size = $9,
			is_featured = $10
		WHERE id = $1`,
		experience.ID, experience.Title, experience.Description, experience.Location,
		experience.PricePerPerson, experience.ImageURL, experience.Category,
		experience.Duration, experience.MaxGroupSize, experience.IsFeatured,
	)
	if err != nil {
		return fmt.Errorf("failed to update experience: %w", err)
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

// Delete removes an experience
func (r *ExperienceRepository) Delete(experienceID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM experiences WHERE id = $1`, experienceID)
	if err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
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

// Count returns the total number of experiences
func (r *ExperienceRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM experiences`).Scan(&count)
	return count, err
}

func (r *ExperienceRepository) list(query string, args ...interface{}) ([]models.Experience, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := []models.Experience{}
	for rows.Next() {
		experience, err := r.scanExperience(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, *experience)
	}
	return experiences, rows.Err()
}

func (r *ExperienceRepository) scanExperience(row scanner) (*models.Experience, error) {
	experience := &models.Experience{}
	err := row.Scan(
		&experience.ID, &experience.Title, &experience.Description, &experience.Location,
		&experience.PricePerPerson, &experience.ImageURL, &experience.Category,
		&experience.Duration, &experience.Rating, &experience.ReviewCount,
		&experience.MaxGroupSize, &experience.IsFeatured, &experience.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return experience, nil
}
