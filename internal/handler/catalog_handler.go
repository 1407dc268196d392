package handler

import (
	"net/http"
	"strconv"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/platform/auth"
	"github.com/eventra/service-event-creation/internal/platform/middleware"
	"github.com/eventra/service-event-creation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves the read-only lookups the wizard forms need, plus created events.
type CatalogHandler struct {
	service *application.EventService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.EventService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalogue, venue and event routes on the given router group.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	catalog := r.Group("/api/v1/catalog")
	catalog.Use(authMW)
	{
		catalog.GET("/genres", h.ListGenres)
		catalog.GET("/states", h.ListStates)
		catalog.GET("/states/:state/cities", h.ListCities)
	}

	venues := r.Group("/api/v1/venues")
	venues.Use(authMW)
	{
		venues.GET("", h.ListVenues)
		venues.GET("/:id", h.GetVenue)
	}

	events := r.Group("/api/v1/events")
	events.Use(authMW)
	{
		events.GET("/mine", middleware.RequireRole(auth.RoleOrganizer), h.ListMyEvents)
		events.GET("/:id", h.GetEvent)
	}
}

// ListGenres handles GET /api/v1/catalog/genres.
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	response.Success(c, draft.Genres)
}

// ListStates handles GET /api/v1/catalog/states.
func (h *CatalogHandler) ListStates(c *gin.Context) {
	response.Success(c, draft.States())
}

// ListCities handles GET /api/v1/catalog/states/:state/cities.
func (h *CatalogHandler) ListCities(c *gin.Context) {
	state := c.Param("state")
	if !draft.IsState(state) {
		response.Fail(c, http.StatusNotFound, "NOT_FOUND", "unknown state")
		return
	}
	response.Success(c, draft.Cities(state))
}

// ListVenues handles GET /api/v1/venues?state=&city=.
func (h *CatalogHandler) ListVenues(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := venue.Filter{State: c.Query("state"), City: c.Query("city")}

	result, err := h.service.ListVenues(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetVenue handles GET /api/v1/venues/:id.
func (h *CatalogHandler) GetVenue(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid venue ID")
		return
	}

	result, err := h.service.GetVenue(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMyEvents handles GET /api/v1/events/mine.
func (h *CatalogHandler) ListMyEvents(c *gin.Context) {
	organizerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListOrganizerEvents(c.Request.Context(), organizerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetEvent handles GET /api/v1/events/:id.
func (h *CatalogHandler) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}

	result, err := h.service.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
