package rating

import (
	"time"

	"gorm.io/gorm"
)

// MaxPageSize caps rating list pages.
const MaxPageSize = 50

// TeamRating is one rater's current score for one team. Repeat scores from
// the same rater overwrite; the team's aggregate absorbs the delta.
type TeamRating struct {
	gorm.Model
	TeamID  uint    `gorm:"uniqueIndex:idx_team_ratings_team_rater;not null" json:"team_id"`
	RaterID uint    `gorm:"uniqueIndex:idx_team_ratings_team_rater;not null" json:"rater_id"`
	Score   float64 `gorm:"not null" json:"score"`
	Comment string  `gorm:"size:500" json:"comment,omitempty"`
}

// --- DTOs ---

type UpsertRatingRequest struct {
	Score   *float64 `json:"score" binding:"required,gte=0,lte=5"`
	Comment string   `json:"comment" binding:"max=500"`
}

type RatingSummary struct {
	Average float64 `json:"avg"`
	Count   int     `json:"count"`
}

type RatingEntry struct {
	ID        uint      `json:"id"`
	RaterID   uint      `json:"raterId"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type RatingPage struct {
	Data       []RatingEntry `json:"data"`
	NextCursor *uint         `json:"nextCursor"`
}
