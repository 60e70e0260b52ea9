package match

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/internal/notification"
)

// MatchRoutes sets up all match-related routes
func MatchRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	matchRepo := NewMatchRepository(db)
	notifier := notification.NewNotifier(notification.NewNotificationRepository(db))
	matchController := NewMatchController(matchRepo, notifier)

	authRoutes := router.Group("/matches")
	authRoutes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.POST("", matchController.CreateMatch)
		authRoutes.GET("/list", matchController.ListMatches)
		authRoutes.POST("/apply", matchController.ApplyToMatch)
		authRoutes.GET("/confirmed", matchController.GetConfirmedMatches)
		authRoutes.GET("/:match_id/participants", matchController.GetAppliedTeams)
		authRoutes.POST("/acceptteam", matchController.AcceptMatchTeam)
	}
}
