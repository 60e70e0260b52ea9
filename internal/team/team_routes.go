package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/internal/notification"
)

// TeamRoutes sets up all team-related routes. Everything requires auth;
// leader-only checks happen inside the handlers against current state.
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	teamRepo := NewTeamRepository(db)
	notifier := notification.NewNotifier(notification.NewNotificationRepository(db))
	teamController := NewTeamController(teamRepo, notifier)

	authRoutes := router.Group("/teams")
	authRoutes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.POST("", teamController.CreateTeam)
		authRoutes.GET("/invite/:code", teamController.GetTeamByInvite)
		authRoutes.POST("/join", teamController.RequestJoin)
		authRoutes.GET("/:team_id/requests", teamController.ListPending)
		authRoutes.POST("/:team_id/requests/decide", teamController.DecideJoin)
	}
}
