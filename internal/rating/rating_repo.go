package rating

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/team"
)

// RatingRepository defines the interface for team rating data operations.
// Aggregate maintenance uses atomic SQL increments so concurrent raters
// never lose updates.
type RatingRepository interface {
	GetTeamByID(id uint) (*team.Team, error)
	IsTeamMember(teamID, userID uint) (bool, error)

	GetRating(teamID, raterID uint) (*TeamRating, error)
	CreateRating(r *TeamRating) error
	UpdateRatingScore(r *TeamRating, score float64, comment string) error

	GetAggregate(teamID uint) (sum float64, count int, err error)
	ListRatings(teamID uint, limit int, cursor *uint) ([]RatingEntry, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetTeamByID(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *ratingRepository) IsTeamMember(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&team.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error
	return count > 0, err
}

func (r *ratingRepository) GetRating(teamID, raterID uint) (*TeamRating, error) {
	var tr TeamRating
	if err := r.db.Where("team_id = ? AND rater_id = ?", teamID, raterID).First(&tr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tr, nil
}

// CreateRating inserts the rating row and bumps the team aggregate with
// atomic increments in one transaction.
func (r *ratingRepository) CreateRating(tr *TeamRating) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tr).Error; err != nil {
			return err
		}
		return tx.Model(&team.Team{}).Where("id = ?", tr.TeamID).Updates(map[string]interface{}{
			"rating_sum":   gorm.Expr("rating_sum + ?", tr.Score),
			"rating_count": gorm.Expr("rating_count + 1"),
		}).Error
	})
}

// UpdateRatingScore replaces the rater's score and applies the signed delta
// to the aggregate sum; the count is unchanged.
func (r *ratingRepository) UpdateRatingScore(tr *TeamRating, score float64, comment string) error {
	delta := score - tr.Score
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"score": score}
		if comment != "" {
			updates["comment"] = comment
		}
		if err := tx.Model(tr).Updates(updates).Error; err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return tx.Model(&team.Team{}).Where("id = ?", tr.TeamID).
			Update("rating_sum", gorm.Expr("rating_sum + ?", delta)).Error
	})
}

func (r *ratingRepository) GetAggregate(teamID uint) (float64, int, error) {
	var t team.Team
	if err := r.db.Select("rating_sum", "rating_count").First(&t, teamID).Error; err != nil {
		return 0, 0, err
	}
	return t.RatingSum, t.RatingCount, nil
}

func (r *ratingRepository) ListRatings(teamID uint, limit int, cursor *uint) ([]RatingEntry, error) {
	var entries []RatingEntry
	query := r.db.Model(&TeamRating{}).
		Select("id, rater_id, score, comment, created_at").
		Where("team_id = ?", teamID)
	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}
	err := query.Order("id desc").Limit(limit).Scan(&entries).Error
	return entries, err
}
