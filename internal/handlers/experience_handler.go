package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ExperienceHandler handles experience catalog operations
type ExperienceHandler struct {
	experienceRepo *database.ExperienceRepository
	logger         *logrus.Logger
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(experienceRepo *database.ExperienceRepository, logger *logrus.Logger) *ExperienceHandler {
	return &ExperienceHandler{
		experienceRepo: experienceRepo,
		logger:         logger,
	}
}

// List returns all experiences, optionally filtered by category
// GET /api/experiences?category=Adventure
func (h *ExperienceHandler) List(c *gin.Context) {
	var (
		experiences []models.Experience
		err         error
	)

	if category := c.Query("category"); category != "" {
		if !models.ValidExperienceCategory(models.ExperienceCategory(category)) {
			respondError(c, http.StatusBadRequest, "Unknown category")
			return
		}
		experiences, err = h.experienceRepo.GetByCategory(models.ExperienceCategory(category))
	} else {
		experiences, err = h.experienceRepo.GetAll()
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(experiences), experiences)
}

// ListFeatured returns experiences flagged as featured
// GET /api/experiences/featured
func (h *ExperienceHandler) ListFeatured(c *gin.Context) {
	experiences, err := h.experienceRepo.GetFeatured()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(experiences), experiences)
}

// Get returns a single experience
// GET /api/experiences/:id
func (h *ExperienceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid experience id")
		return
	}

	experience, err := h.experienceRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Experience not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, experience)
}

// Create adds an experience, admin only
// POST /api/experiences
func (h *ExperienceHandler) Create(c *gin.Context) {
	var req models.CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	experience := &models.Experience{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		PricePerPerson: req.Price,
		ImageURL:       req.Image,
		Category:       models.ExperienceCategory(req.Category),
		Duration:       req.Duration,
		MaxGroupSize:   req.MaxGroupSize,
		IsFeatured:     req.IsFeatured,
	}

	if err := h.experienceRepo.Create(experience); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithField("experience_id", experience.ID).Info("Experience created")
	respondData(c, http.StatusCreated, experience)
}

// Update modifies an experience, admin only
// PUT /api/experiences/:id
func (h *ExperienceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid experience id")
		return
	}

	experience, err := h.experienceRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Experience not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var req models.CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	experience.Title = req.Title
	experience.Description = req.Description
	experience.Location = req.Location
	experience.PricePerPerson = req.Price
	experience.ImageURL = req.Image
	experience.Category = models.ExperienceCategory(req.Category)
	experience.Duration = req.Duration
	experience.MaxGroupSize = req.MaxGroupSize
	experience.IsFeatured = req.IsFeatured

	if err := h.experienceRepo.Update(experience); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, experience)
}

// Delete removes an experience, admin only
// DELETE /api/experiences/:id
func (h *ExperienceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid experience id")
		return
	}

	err = h.experienceRepo.Delete(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Experience not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "Experience deleted")
}
