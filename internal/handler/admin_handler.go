package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/platform/auth"
	"github.com/eventra/service-event-creation/internal/platform/middleware"
	"github.com/eventra/service-event-creation/internal/platform/response"
)

// AdminHandler handles operator requests. Releasing a booking here does the same as an
// event.cancelled message, for when the lifecycle topic was missed.
type AdminHandler struct {
	service *application.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.EventService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.DELETE("/events/:id/venue-booking", h.ReleaseVenueBooking)
	}
}

// ReleaseVenueBooking handles DELETE /api/v1/admin/events/:id/venue-booking.
func (h *AdminHandler) ReleaseVenueBooking(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}

	if err := h.service.ReleaseVenueBooking(c.Request.Context(), eventID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"event_id": eventID})
}
