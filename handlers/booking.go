package handlers

import (
	"errors"
	"net/http"

	"tutorbook/services/finalize"
	"tutorbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FinalizeBooking converts a paid hold into appointments and an order.
// Retrying with the same payment reference returns the original confirmation.
func FinalizeBooking(c *gin.Context) {
	var req finalize.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	conf, err := FinalizeSvc.Finalize(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, finalize.ErrPaymentWithoutSlot):
			// Money is in hand; never show the buyer a failure. Support
			// works the flagged case (rebook or refund).
			c.JSON(http.StatusAccepted, gin.H{
				"status":  "payment_received",
				"message": "Your payment went through, but the slot could not be confirmed automatically. Our team will contact you shortly.",
			})
		case errors.Is(err, finalize.ErrAmountMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finalize booking", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, conf)
}

// StripeWebhook receives payment notifications and drives finalization from
// them. Non-2xx answers make the processor retry, so only genuinely
// retryable failures return 500.
func StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := PaymentSvc.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	_, err = FinalizeSvc.Finalize(c.Request.Context(), finalize.FinalizeRequest{
		HoldID:         event.HoldID,
		PaymentRef:     event.PaymentRef,
		PaidMinorUnits: event.AmountMinorUnits,
		Currency:       event.Currency,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "finalized"})
	case errors.Is(err, finalize.ErrPaymentWithoutSlot):
		// Reconciliation case is already flagged; acknowledge so the
		// processor stops retrying.
		c.JSON(http.StatusOK, gin.H{"status": "flagged_for_reconciliation"})
	case errors.Is(err, finalize.ErrAmountMismatch):
		// The service flagged a reconciliation case; acknowledge so the
		// processor stops retrying a charge we will never auto-book.
		utils.GetLogger().Error("webhook amount mismatch",
			zap.String("paymentRef", event.PaymentRef), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "flagged_amount_mismatch"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
