package routes

import (
	"trail_tracker/internal/controllers"
	"trail_tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TrackRoutes(r *gin.Engine) {
	tracks := r.Group("/tracks")
	{
		tracks.GET("", controllers.ListTracks)
		tracks.GET("/:id", controllers.GetTrack)
	}

	// Mutations are reserved for club admins.
	admin := r.Group("/tracks")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.POST("", controllers.UploadTrack)
		admin.DELETE("/:id", controllers.DeleteTrack)
	}
}
