package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"genie/internal/service"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyUtterance):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEngineBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrPropertyNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
