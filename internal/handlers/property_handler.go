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

// PropertyHandler handles property catalog operations
type PropertyHandler struct {
	propertyRepo    *database.PropertyRepository
	destinationRepo *database.DestinationRepository
	uploader        upload.Uploader
	logger          *logrus.Logger
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(
	propertyRepo *database.PropertyRepository,
	destinationRepo *database.DestinationRepository,
	uploader upload.Uploader,
	logger *logrus.Logger,
) *PropertyHandler {
	return &PropertyHandler{
		propertyRepo:    propertyRepo,
		destinationRepo: destinationRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

// List returns all properties
// GET /api/properties
func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.propertyRepo.GetAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(properties), properties)
}

// ListFeatured returns properties flagged as featured
// GET /api/properties/featured
func (h *PropertyHandler) ListFeatured(c *gin.Context) {
	properties, err := h.propertyRepo.GetFeatured()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondList(c, len(properties), properties)
}

// Get returns a single property
// GET /api/properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	property, err := h.propertyRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, property)
}

// Create adds a property, admin only
// POST /api/properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req models.CreatePropertyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid destination id")
		return
	}

	if _, err := h.destinationRepo.GetByID(destinationID); err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Destination not found")
		return
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	images, ok := h.uploadFormImages(c, "images")
	if !ok {
		return
	}

	property := &models.Property{
		DestinationID: destinationID,
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.Price,
		Images:        images,
		Amenities:     req.Amenities,
		Beds:          req.Beds,
		Baths:         req.Baths,
		MaxGuests:     req.MaxGuests,
		Type:          models.PropertyType(req.Type),
		IsFeatured:    req.IsFeatured,
	}

	if err := h.propertyRepo.Create(property); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"property_id":    property.ID,
		"destination_id": property.DestinationID,
	}).Info("Property created")

	respondData(c, http.StatusCreated, property)
}

// Update modifies a property, admin only
// PUT /api/properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	property, err := h.propertyRepo.GetByID(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		property.Name = req.Name
	}
	if req.Description != "" {
		property.Description = req.Description
	}
	if req.Location != "" {
		property.Location = req.Location
	}
	if req.Price != nil {
		property.PricePerNight = *req.Price
	}
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}
	if req.Beds != nil {
		property.Beds = *req.Beds
	}
	if req.Baths != nil {
		property.Baths = *req.Baths
	}
	if req.MaxGuests != nil {
		property.MaxGuests = *req.MaxGuests
	}
	if req.IsFeatured != nil {
		property.IsFeatured = *req.IsFeatured
	}

	if err := h.propertyRepo.Update(property); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(c, http.StatusOK, property)
}

// Delete removes a property, admin only
// DELETE /api/properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	err = h.propertyRepo.Delete(id)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "Property deleted")
}

// uploadFormImages reads every file under the named multipart field and
// pushes each to the image store. Writes the error response itself and
// returns ok=false on failure.
func (h *PropertyHandler) uploadFormImages(c *gin.Context, field string) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Please upload at least one image")
		return nil, false
	}

	files := form.File[field]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "Please upload at least one image")
		return nil, false
	}

	urls := make([]string, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
			return nil, false
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
			return nil, false
		}

		imageURL, err := h.uploader.Upload(data, "properties/"+uuid.NewString())
		if err != nil {
			h.logger.WithError(err).Error("Image upload failed")
			respondError(c, http.StatusInternalServerError, "Image upload failed")
			return nil, false
		}
		urls = append(urls, imageURL)
	}
	return urls, true
}
