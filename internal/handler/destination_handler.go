package handler

import (
	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// DestinationHandler serves the drop-off search of an accepted ride.
type DestinationHandler struct {
	service *application.DestinationService
}

// NewDestinationHandler creates a new DestinationHandler.
func NewDestinationHandler(service *application.DestinationService) *DestinationHandler {
	return &DestinationHandler{service: service}
}

// RegisterRoutes registers the destination routes under /api/v1/rides/:id.
func (h *DestinationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	dest := r.Group("/api/v1/rides/:id/destination")
	dest.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleDriver))
	{
		dest.GET("", h.GetDestination)
		dest.POST("/search", h.Search)
		dest.POST("/select", h.Select)
	}
}

// Search handles POST /api/v1/rides/:id/destination/search.
func (h *DestinationHandler) Search(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	var req application.SearchDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SearchDestination(c.Request.Context(), rideID, driverID, req.Query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetDestination handles GET /api/v1/rides/:id/destination.
func (h *DestinationHandler) GetDestination(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	result, err := h.service.GetDestination(c.Request.Context(), rideID, driverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Select handles POST /api/v1/rides/:id/destination/select.
func (h *DestinationHandler) Select(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	var req application.SelectDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SelectDestination(c.Request.Context(), rideID, driverID, req.Generation, *req.Index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
