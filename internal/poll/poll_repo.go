package poll

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeonwoo-k/teamup/internal/match"
	"github.com/yeonwoo-k/teamup/internal/team"
)

// PollRepository defines the interface for attendance poll data operations
type PollRepository interface {
	CreatePoll(p *AttendancePoll) error
	GetPollByID(id uint) (*AttendancePoll, error)
	GetPollByTeamAndMatch(teamID, matchID uint) (*AttendancePoll, error)

	// UpsertVote records or overwrites a user's vote and returns the poll
	// with its canMatch flag recomputed, all in one transaction.
	UpsertVote(pollID, userID uint, choice Choice) (*AttendancePoll, error)

	CountVotes(pollID uint, choice Choice) (int64, error)
	GetVoters(pollID uint) ([]VoterEntry, error)

	GetTeamByID(id uint) (*team.Team, error)
	GetMatchByID(id uint) (*match.Match, error)
}

type pollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) CreatePoll(p *AttendancePoll) error {
	return r.db.Create(p).Error
}

func (r *pollRepository) GetPollByID(id uint) (*AttendancePoll, error) {
	var p AttendancePoll
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pollRepository) GetPollByTeamAndMatch(teamID, matchID uint) (*AttendancePoll, error) {
	var p AttendancePoll
	if err := r.db.Where("team_id = ? AND match_id = ?", teamID, matchID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pollRepository) UpsertVote(pollID, userID uint, choice Choice) (*AttendancePoll, error) {
	var p AttendancePoll
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"choice", "updated_at"}),
		}).Create(&Vote{PollID: pollID, UserID: userID, Choice: choice}).Error; err != nil {
			return err
		}

		var yes int64
		if err := tx.Model(&Vote{}).Where("poll_id = ? AND choice = ?", pollID, ChoiceYes).Count(&yes).Error; err != nil {
			return err
		}
		if err := tx.Model(&AttendancePoll{}).Where("id = ?", pollID).Update("can_match", yes >= Quorum).Error; err != nil {
			return err
		}
		return tx.First(&p, pollID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pollRepository) CountVotes(pollID uint, choice Choice) (int64, error) {
	var count int64
	err := r.db.Model(&Vote{}).Where("poll_id = ? AND choice = ?", pollID, choice).Count(&count).Error
	return count, err
}

func (r *pollRepository) GetVoters(pollID uint) ([]VoterEntry, error) {
	var voters []VoterEntry
	err := r.db.Table("votes").
		Select("votes.user_id, users.username, users.name, votes.choice").
		Joins("JOIN users ON users.id = votes.user_id").
		Where("votes.poll_id = ? AND votes.deleted_at IS NULL", pollID).
		Order("votes.created_at asc").
		Scan(&voters).Error
	return voters, err
}

func (r *pollRepository) GetTeamByID(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *pollRepository) GetMatchByID(id uint) (*match.Match, error) {
	var m match.Match
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
