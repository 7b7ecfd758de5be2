package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/facilitydesk/backend/pkg/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error maps a typed domain error onto the matching HTTP status.
// Validation errors include the per-field list; unknown errors become 500
// with a generic message so internals never leak.
func Error(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Body{Success: false, Error: "validation failed", Fields: ve.Fields})
		return
	}
	var pe *apperr.PolicyError
	if errors.As(err, &pe) {
		c.JSON(http.StatusForbidden, Body{Success: false, Error: pe.Reason})
		return
	}
	var ne *apperr.NotFoundError
	if errors.As(err, &ne) {
		c.JSON(http.StatusNotFound, Body{Success: false, Error: ne.Error()})
		return
	}
	var se *apperr.StorageError
	if errors.As(err, &se) {
		c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: "file storage unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: "internal error"})
}
