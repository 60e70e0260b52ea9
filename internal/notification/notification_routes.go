package notification

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
)

// NotificationRoutes sets up notification read endpoints. All require auth.
func NotificationRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	repo := NewNotificationRepository(db)
	controller := NewNotificationController(repo)

	authRoutes := router.Group("/notifications")
	authRoutes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.GET("", controller.ListNotifications)
		authRoutes.GET("/unread-count", controller.UnreadCount)
		authRoutes.PATCH("/:notification_id/read", controller.MarkRead)
		authRoutes.PATCH("/read-all", controller.MarkAllRead)
	}
}
