package handler

import (
	"strconv"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/address"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RideHandler handles HTTP requests for ride operations.
type RideHandler struct {
	service *application.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(service *application.RideService) *RideHandler {
	return &RideHandler{service: service}
}

// RegisterRoutes registers all ride routes on the given router group.
func (h *RideHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	driverOnly := middleware.RequireRole(auth.RoleDriver)

	rides := r.Group("/api/v1/rides")
	rides.Use(authMW)
	{
		rides.POST("", middleware.RequireRole(auth.RoleRider), h.CreateRide)
		rides.GET("", h.ListRides)
		rides.GET("/:id", h.GetRide)
		rides.POST("/:id/accept", driverOnly, h.AcceptRide)
		rides.POST("/:id/position", driverOnly, h.RecordPosition)
		rides.POST("/:id/start", driverOnly, h.StartTrip)
		rides.POST("/:id/complete", driverOnly, h.CompleteRide)
		rides.POST("/:id/cancel", h.CancelRide)
	}
}

// CreateRide handles POST /api/v1/rides.
func (h *RideHandler) CreateRide(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateRide(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListRides handles GET /api/v1/rides. Riders see their requests, drivers their assignments.
func (h *RideHandler) ListRides(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(c)

	page, limit := parsePagination(c)

	var (
		result *application.PaginatedRides
		err    error
	)
	if role == auth.RoleDriver {
		result, err = h.service.GetDriverRides(c.Request.Context(), userID, page, limit)
	} else {
		result, err = h.service.GetRiderRides(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetRide handles GET /api/v1/rides/:id.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := parseRideID(c)
	if !ok {
		return
	}

	result, err := h.service.GetRide(c.Request.Context(), rideID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AcceptRide handles POST /api/v1/rides/:id/accept.
func (h *RideHandler) AcceptRide(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	result, err := h.service.AcceptRide(c.Request.Context(), rideID, driverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RecordPosition handles POST /api/v1/rides/:id/position.
func (h *RideHandler) RecordPosition(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	var req application.RecordPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pos := address.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	result, err := h.service.RecordDriverPosition(c.Request.Context(), rideID, driverID, pos)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// StartTrip handles POST /api/v1/rides/:id/start.
func (h *RideHandler) StartTrip(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	result, err := h.service.StartTrip(c.Request.Context(), rideID, driverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CompleteRide handles POST /api/v1/rides/:id/complete.
func (h *RideHandler) CompleteRide(c *gin.Context) {
	rideID, driverID, ok := rideAndUser(c)
	if !ok {
		return
	}

	result, err := h.service.CompleteRide(c.Request.Context(), rideID, driverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelRide handles POST /api/v1/rides/:id/cancel.
func (h *RideHandler) CancelRide(c *gin.Context) {
	rideID, userID, ok := rideAndUser(c)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRole(c)

	var req application.CancelRideRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.CancelRide(c.Request.Context(), rideID, userID, role == auth.RoleAdmin, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func parseRideID(c *gin.Context) (uuid.UUID, bool) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return uuid.Nil, false
	}
	return rideID, true
}

func rideAndUser(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	rideID, ok := parseRideID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	return rideID, userID, true
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
