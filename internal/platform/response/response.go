// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Meta:    pageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Error: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: message})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, envelope{Error: message})
}

// Error maps err to a status code. Untyped errors become 500s without leaking details.
func Error(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.HTTPStatus(), envelope{Error: appErr.Message})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
}
