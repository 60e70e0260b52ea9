package rating

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
)

// RatingRoutes sets up team rating routes under /teams/:team_id/ratings
func RatingRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string) {
	ratingRepo := NewRatingRepository(db)
	ratingController := NewRatingController(ratingRepo)

	authRoutes := router.Group("/teams/:team_id/ratings")
	authRoutes.Use(middleware.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.POST("", ratingController.UpsertRating)
		authRoutes.GET("", ratingController.ListRatings)
		authRoutes.GET("/summary", ratingController.GetRatingSummary)
	}
}
