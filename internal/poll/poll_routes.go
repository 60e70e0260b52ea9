package poll

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
)

// PollRoutes sets up attendance poll routes
func PollRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	pollRepo := NewPollRepository(db)
	pollController := NewPollController(pollRepo)

	authRoutes := router.Group("/attendance-polls")
	authRoutes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.POST("", pollController.CreatePoll)
		authRoutes.POST("/vote", pollController.Vote)
		authRoutes.GET("/:poll_id", pollController.GetPollResults)
	}
}
