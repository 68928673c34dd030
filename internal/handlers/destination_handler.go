package handlers

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/models"
	"github.com/nepstays/stays-backend/pkg/upload"
	"github.com/sirupsen/logrus"
)

// DestinationHandler handles destination catalog operations
type DestinationHandler struct {
	destinationRepo *database.DestinationRepository
	propertyRepo    *database.PropertyRepository
	uploader        upload.Uploader
	logger          *logrus.Logger
}

// NewDestinationHandler creates a new DestinationHandler
func NewDestinationHandler(
	destinationRepo *database.DestinationRepository,
	propertyRepo *database.PropertyRepository,
	uploader upload.Uploader,
	logger *logrus.Logger,
) *DestinationHandler {
	return &DestinationHandler{
		destinationRepo: destinationRepo,
		propertyRepo:    propertyRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

// List returns all destinations
// GET /api/destinations
func (h *DestinationHandler) List(c *gin.Context) {
	destinations, err := h.destinationRepo.GetAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(destinations), destinations)
}

// ListPopular returns destinations flagged as popular
// GET /api/destinations/popular
func (h *DestinationHandler) ListPopular(c *gin.Context) {
	destinations, err := h.destinationRepo.GetPopular()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(destinations), destinations)
}

// Get returns a single destination
// GET /api/destinations/:id
func (h *DestinationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid destination id")
		return
	}

	destination, err := h.destinationRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Destination not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, destination)
}

// ListProperties returns the properties belonging to a destination
// GET /api/destinations/:id/properties
func (h *DestinationHandler) ListProperties(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid destination id")
		return
	}

	if _, err := h.destinationRepo.GetByID(id); err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Destination not found")
		return
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	properties, err := h.propertyRepo.GetByDestination(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(properties), properties)
}

// Create adds a destination, admin only
// POST /api/destinations
func (h *DestinationHandler) Create(c *gin.Context) {
	var req models.CreateDestinationRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	imageURL, ok := h.uploadFormImage(c, "image", "destinations")
	if !ok {
		return
	}

	destination := &models.Destination{
		Name:      req.Name,
		ImageURL:  imageURL,
		IsPopular: req.IsPopular,
	}
	if req.Description != "" {
		destination.Description = models.NullString{
			NullString: sql.NullString{String: req.Description, Valid: true},
		}
	}

	if err := h.destinationRepo.Create(destination); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithField("destination_id", destination.ID).Info("Destination created")
	respondData(c, http.StatusCreated, destination)
}

// Update modifies a destination, admin only
// PUT /api/destinations/:id
func (h *DestinationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid destination id")
		return
	}

	destination, err := h.destinationRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Destination not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var req models.UpdateDestinationRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		destination.Name = req.Name
	}
	if req.Description != "" {
		destination.Description = models.NullString{
			NullString: sql.NullString{String: req.Description, Valid: true},
		}
	}
	if req.IsPopular != nil {
		destination.IsPopular = *req.IsPopular
	}

	// Image replacement is optional on update
	if _, err := c.FormFile("image"); err == nil {
		imageURL, ok := h.uploadFormImage(c, "image", "destinations")
		if !ok {
			return
		}
		destination.ImageURL = imageURL
	}

	if err := h.destinationRepo.Update(destination); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, destination)
}

// Delete removes a destination, admin only
// DELETE /api/destinations/:id
func (h *DestinationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid destination id")
		return
	}

	err = h.destinationRepo.Delete(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Destination not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "Destination deleted")
}

// uploadFormImage reads one multipart file part and pushes it to the image
// store. Writes the error response itself and returns ok=false on failure.
func (h *DestinationHandler) uploadFormImage(c *gin.Context, field, folder string) (string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Please upload an image")
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return "", false
	}

	imageURL, err := h.uploader.Upload(data, folder+"/"+uuid.NewString())
	if err != nil {
		h.logger.WithError(err).Error("Image upload failed")
		respondError(c, http.StatusInternalServerError, "Image upload failed")
		return "", false
	}
	return imageURL, true
}
