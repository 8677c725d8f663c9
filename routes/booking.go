package routes

import (
	"homefix/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the dispatch engine.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	// Customer endpoints.
	customer := r.Group("/api/bookings")
	customer.Use(middleware.JWTAuthUserMiddleware())
	{
		customer.POST("", hb.Booking.CreateBooking)
		customer.GET("/:id", hb.Booking.GetBooking)
		customer.POST("/:id/cancel", hb.Booking.CancelBooking)
	}

	// Provider endpoints: the acceptance race, declines, lifecycle
	// progression and live location.
	provider := r.Group("/api/provider/bookings")
	provider.Use(middleware.JWTAuthProviderMiddleware())
	{
		provider.POST("/:id/accept", hb.ProviderResponse.AcceptBooking)
		provider.POST("/:id/decline", hb.ProviderResponse.DeclineBooking)
		provider.POST("/:id/advance", hb.Booking.AdvanceBooking)
		provider.POST("/:id/cancel", hb.Booking.CancelBooking)
		provider.PUT("/:id/location", hb.ProviderResponse.UpdateLocation)
	}
}
