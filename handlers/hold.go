package handlers

import (
	"errors"
	"net/http"

	"tutorbook/models"
	"tutorbook/services/hold"

	"github.com/gin-gonic/gin"
)

// CreateHold places a short-lived exclusive claim on a tutor window. An
// authenticated claimant is taken from the request context; anonymous
// visitors get a guest placeholder.
func CreateHold(c *gin.Context) {
	var req hold.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if userID, ok := c.Get("userID"); ok {
		req.ClaimantID = userID.(string)
	}

	view, err := HoldSvc.CreateHold(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, hold.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, hold.ErrOutsideAvailability):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetHold returns the hold if it is still alive. Expired holds answer 410 so
// clients can tell a timed-out checkout from a bad ID.
func GetHold(c *gin.Context) {
	view, err := HoldSvc.GetHold(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondHoldError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateHold attaches checkout details to an unexpired hold.
func UpdateHold(c *gin.Context) {
	var details models.CheckoutDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := HoldSvc.UpdateHold(c.Request.Context(), c.Param("id"), details)
	if err != nil {
		respondHoldError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ReleaseHold frees the slot. Releasing twice is fine; both calls answer 204.
func ReleaseHold(c *gin.Context) {
	if err := HoldSvc.ReleaseHold(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to release hold", "details": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreatePaymentIntent quotes the hold's price into a processor payment intent.
func CreatePaymentIntent(c *gin.Context) {
	info, err := PaymentSvc.CreateIntentForHold(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondHoldError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func respondHoldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, hold.ErrHoldNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, hold.ErrHoldExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
