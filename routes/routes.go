package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonflow/handlers"
	"salonflow/middleware"
)

// RegisterSchedulingRoutes registers all endpoints of the scheduling engine.
func RegisterSchedulingRoutes(r *gin.Engine, h *handlers.SchedulingHandler) {
	scheduling := r.Group("/api/scheduling")
	{
		scheduling.Use(middleware.JWTAuthMiddleware())
		scheduling.POST("/session", h.BeginSession)
		scheduling.PUT("/session/:sessionID/assignments", h.AssignProfessionals)
		scheduling.GET("/session/:sessionID/slots", h.GetSlots)
		scheduling.POST("/session/:sessionID/advance", h.Advance)
		scheduling.POST("/session/:sessionID/reschedule", h.RescheduleAdvance)
		scheduling.POST("/session/:sessionID/reopen", h.Reopen)
		scheduling.POST("/session/:sessionID/submit", h.Submit)
		scheduling.DELETE("/session/:sessionID", h.AbandonSession)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Salonflow"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, h *handlers.SchedulingHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSchedulingRoutes(r, h)
}
