package routes

import (
	"time"

	"homefix/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Booking          *handlers.BookingHandler
	ProviderResponse *handlers.ProviderResponseHandler
}

// RegisterRoutes sets up CORS, the health endpoint and the booking engine
// routes.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	r.GET("/health", handlers.HealthHandler)

	RegisterBookingRoutes(r, hb)
}
