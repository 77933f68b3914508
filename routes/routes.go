package routes

import (
	"net/http"
	"time"

	"tutorbook/handlers"
	"tutorbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the reservation and finalization endpoints.
func RegisterBookingRoutes(r *gin.Engine) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.OptionalAuthMiddleware())
		bookingGroup.POST("/windows", handlers.ListBookableWindows)
		bookingGroup.POST("/holds", handlers.CreateHold)
		bookingGroup.GET("/holds/:id", handlers.GetHold)
		bookingGroup.PATCH("/holds/:id", handlers.UpdateHold)
		bookingGroup.DELETE("/holds/:id", handlers.ReleaseHold)
		bookingGroup.POST("/holds/:id/payment-intent", handlers.CreatePaymentIntent)
		bookingGroup.POST("/finalize", handlers.FinalizeBooking)
	}
}

// RegisterWebhookRoutes sets up processor callback endpoints. These carry
// their own signature verification, so no auth middleware applies.
func RegisterWebhookRoutes(r *gin.Engine) {
	r.POST("/api/webhooks/stripe", handlers.StripeWebhook)
}

// RegisterHealthRoute exposes a liveness endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r)
	RegisterWebhookRoutes(r)
}
