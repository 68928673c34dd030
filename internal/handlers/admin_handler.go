package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nepstays/stays-backend/internal/database"
)

// AdminHandler handles the admin dashboard endpoints
type AdminHandler struct {
	userRepo        *database.UserRepository
	destinationRepo *database.DestinationRepository
	propertyRepo    *database.PropertyRepository
	experienceRepo  *database.ExperienceRepository
	bookingRepo     *database.BookingRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userRepo *database.UserRepository,
	destinationRepo *database.DestinationRepository,
	propertyRepo *database.PropertyRepository,
	experienceRepo *database.ExperienceRepository,
	bookingRepo *database.BookingRepository,
) *AdminHandler {
	return &AdminHandler{
		userRepo:        userRepo,
		destinationRepo: destinationRepo,
		propertyRepo:    propertyRepo,
		experienceRepo:  experienceRepo,
		bookingRepo:     bookingRepo,
	}
}

// Stats returns entity counts for the admin dashboard
// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	users, err := h.userRepo.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	destinations, err := h.destinationRepo.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	properties, err := h.propertyRepo.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	experiences, err := h.experienceRepo.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	bookings, err := h.bookingRepo.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"users":        users,
		"destinations": destinations,
		"properties":   properties,
		"experiences":  experiences,
		"bookings":     bookings,
	})
}
