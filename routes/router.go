package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/config"
	"github.com/yeonwoo-k/teamup/internal/auth"
	"github.com/yeonwoo-k/teamup/internal/match"
	"github.com/yeonwoo-k/teamup/internal/notification"
	"github.com/yeonwoo-k/teamup/internal/poll"
	"github.com/yeonwoo-k/teamup/internal/rating"
	"github.com/yeonwoo-k/teamup/internal/team"
)

func SetupRoutes(db *gorm.DB, appConfig *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "teamup", "docs": "/swagger/index.html"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	jwtSecret := appConfig.JWT.AccessTokenSecret

	auth.RegisterAuthRoutes(api, db, appConfig)
	team.TeamRoutes(api, db, jwtSecret)
	match.MatchRoutes(api, db, jwtSecret)
	poll.PollRoutes(api, db, jwtSecret)
	notification.NotificationRoutes(api, db, jwtSecret)
	rating.RatingRoutes(api, db, jwtSecret)

	return r
}
