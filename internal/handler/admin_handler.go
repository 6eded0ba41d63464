package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/response"
)

// AdminRideHandler handles admin HTTP requests for ride management.
type AdminRideHandler struct {
	service *application.RideService
}

// NewAdminRideHandler creates a new AdminRideHandler.
func NewAdminRideHandler(service *application.RideService) *AdminRideHandler {
	return &AdminRideHandler{service: service}
}

// RegisterRoutes registers admin ride routes.
func (h *AdminRideHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/rides", h.ListRides)
		admin.GET("/rides/number/:number", h.GetRideByNumber)
		admin.GET("/stats/rides", h.RideStats)
	}
}

// ListRides handles GET /api/v1/admin/rides.
func (h *AdminRideHandler) ListRides(c *gin.Context) {
	page, limit := parsePagination(c)

	rides, total, err := h.service.ListAllRides(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, rides, total, page, limit)
}

// GetRideByNumber handles GET /api/v1/admin/rides/number/:number.
func (h *AdminRideHandler) GetRideByNumber(c *gin.Context) {
	result, err := h.service.GetRideByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RideStats handles GET /api/v1/admin/stats/rides.
func (h *AdminRideHandler) RideStats(c *gin.Context) {
	stats, err := h.service.GetRideStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
