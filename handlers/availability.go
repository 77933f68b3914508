package handlers

import (
	"net/http"

	"tutorbook/services/availability"

	"github.com/gin-gonic/gin"
)

// ListBookableWindows returns the bookable start instants for the requested
// tutors (or every tutor of a course) within a date range.
func ListBookableWindows(c *gin.Context) {
	var req availability.WindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	windows, err := AvailabilitySvc.ListBookableWindows(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookable windows", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}
