package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/platform/auth"
	"github.com/eventra/service-event-creation/internal/platform/middleware"
	"github.com/eventra/service-event-creation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// imageField is the multipart form field carrying the event image.
const imageField = "image"

// WizardHandler handles HTTP requests for the event creation wizard.
type WizardHandler struct {
	service *application.WizardService
	// maxUploadBytes caps the multipart body read for an image upload.
	maxUploadBytes int64
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(service *application.WizardService, maxImageBytes int64) *WizardHandler {
	return &WizardHandler{service: service, maxUploadBytes: maxImageBytes}
}

// RegisterRoutes registers all wizard routes on the given router group.
func (h *WizardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	sessions := r.Group("/api/v1/wizard/sessions")
	sessions.Use(authMW, middleware.RequireRole(auth.RoleOrganizer))
	{
		sessions.POST("", h.OpenSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PATCH("/:id/draft", h.UpdateDraft)
		sessions.PUT("/:id/image", h.SetImage)
		sessions.POST("/:id/advance", h.action(h.service.Advance))
		sessions.POST("/:id/back", h.action(h.service.Back))
		sessions.POST("/:id/availability", h.CheckAvailability)
		sessions.POST("/:id/payment", h.action(h.service.Pay))
		sessions.POST("/:id/submit", h.Submit)
		sessions.DELETE("/:id", h.action(h.service.Abandon))
	}
}

// OpenSession handles POST /api/v1/wizard/sessions.
func (h *WizardHandler) OpenSession(c *gin.Context) {
	organizerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.OpenSession(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetSession handles GET /api/v1/wizard/sessions/:id.
func (h *WizardHandler) GetSession(c *gin.Context) {
	sessionID, organizerID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.GetSession(c.Request.Context(), sessionID, organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateDraft handles PATCH /api/v1/wizard/sessions/:id/draft.
func (h *WizardHandler) UpdateDraft(c *gin.Context) {
	sessionID, organizerID, ok := sessionParams(c)
	if !ok {
		return
	}

	var req application.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateDraft(c.Request.Context(), sessionID, organizerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetImage handles PUT /api/v1/wizard/sessions/:id/image with a multipart "image" file.
func (h *WizardHandler) SetImage(c *gin.Context) {
	sessionID, organizerID, ok := sessionParams(c)
	if !ok {
		return
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		response.BadRequest(c, "an image file is required in the \"image\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "could not read the uploaded image")
		return
	}
	defer f.Close()

	var src io.Reader = f
	if h.maxUploadBytes > 0 {
		// One byte past the limit lets the service report the size error itself.
		src = io.LimitReader(f, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		response.BadRequest(c, "could not read the uploaded image")
		return
	}

	img := draft.Image{
		Filename:    filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	result, err := h.service.SetImage(c.Request.Context(), sessionID, organizerID, img)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckAvailability handles POST /api/v1/wizard/sessions/:id/availability.
func (h *WizardHandler) CheckAvailability(c *gin.Context) {
	sessionID, organizerID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), sessionID, organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Submit handles POST /api/v1/wizard/sessions/:id/submit.
func (h *WizardHandler) Submit(c *gin.Context) {
	sessionID, organizerID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), sessionID, organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

type sessionAction func(ctx context.Context, sessionID, organizerID uuid.UUID) (*application.SessionDTO, error)

// action adapts a session-returning wizard operation into a handler.
func (h *WizardHandler) action(fn sessionAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, organizerID, ok := sessionParams(c)
		if !ok {
			return
		}

		result, err := fn(c.Request.Context(), sessionID, organizerID)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}

// sessionParams extracts the session ID and the caller. It writes the error response itself.
func sessionParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, organizerID, true
}
