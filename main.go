package main

import (
	"log"

	"github.com/yeonwoo-k/teamup/config"
	_ "github.com/yeonwoo-k/teamup/docs"
	"github.com/yeonwoo-k/teamup/internal/match"
	"github.com/yeonwoo-k/teamup/internal/notification"
	"github.com/yeonwoo-k/teamup/internal/poll"
	"github.com/yeonwoo-k/teamup/internal/rating"
	"github.com/yeonwoo-k/teamup/internal/team"
	"github.com/yeonwoo-k/teamup/internal/user"
	"github.com/yeonwoo-k/teamup/routes"
)

// @title TeamUp REST API
// @version 1.0
// @description Team matching backend: teams, invite codes, match requests, attendance polls and ratings.
// @host localhost:8080
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{},
		&team.Team{}, &team.TeamMember{}, &team.JoinRequest{},
		&match.Match{}, &match.Participant{},
		&poll.AttendancePoll{}, &poll.Vote{},
		&notification.Notification{},
		&rating.TeamRating{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes(config.DB, cfg)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
