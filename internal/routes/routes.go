package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine and registers all route groups. dataDir
// is the blob-store root, also served statically for raw downloads.
func SetupRouter(dataDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	TrackRoutes(r)

	// Raw uploaded files are downloadable under the same keys the
	// blob store hands out.
	r.Static("/files", dataDir)

	return r
}
