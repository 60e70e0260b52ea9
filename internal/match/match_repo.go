package match

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/team"
)

// MatchRepository defines methods to interact with match-related data
type MatchRepository interface {
	CreateMatch(m *Match) error
	GetMatchByID(id uint) (*Match, error)
	ListMatches() ([]MatchSummary, error)
	ListConfirmed() ([]MatchSummary, error)

	AddParticipant(p *Participant) error
	HasParticipant(matchID, teamID uint) (bool, error)
	GetParticipants(matchID uint) ([]ParticipantDetail, error)

	// AcceptTeam performs the conditional pending->accepted transition.
	// Returns the number of rows updated: zero means the match was no
	// longer pending and the caller lost the race.
	AcceptTeam(matchID, teamID uint) (int64, error)

	GetTeamByID(id uint) (*team.Team, error)
	CountTeamMembers(teamID uint) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new instance of MatchRepository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateMatch(m *Match) error {
	return r.db.Create(m).Error
}

func (r *matchRepository) GetMatchByID(id uint) (*Match, error) {
	var m Match
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) listWithNames(query *gorm.DB) ([]MatchSummary, error) {
	var list []MatchSummary
	err := query.
		Select("matches.id, matches.team_id, teams.name AS team_name, matches.leader_id, users.username AS leader_username, matches.date, matches.location, matches.players, matches.skill, matches.field_cost, matches.pro_count, matches.status, matches.accepted_team_id, matches.created_at").
		Joins("JOIN teams ON teams.id = matches.team_id").
		Joins("JOIN users ON users.id = matches.leader_id").
		Order("matches.created_at desc").
		Scan(&list).Error
	return list, err
}

func (r *matchRepository) ListMatches() ([]MatchSummary, error) {
	return r.listWithNames(r.db.Table("matches").Where("matches.deleted_at IS NULL"))
}

func (r *matchRepository) ListConfirmed() ([]MatchSummary, error) {
	return r.listWithNames(r.db.Table("matches").
		Where("matches.deleted_at IS NULL AND matches.status = ? AND matches.accepted_team_id IS NOT NULL", StatusAccepted))
}

func (r *matchRepository) AddParticipant(p *Participant) error {
	return r.db.Create(p).Error
}

func (r *matchRepository) HasParticipant(matchID, teamID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Participant{}).Where("match_id = ? AND team_id = ?", matchID, teamID).Count(&count).Error
	return count > 0, err
}

func (r *matchRepository) GetParticipants(matchID uint) ([]ParticipantDetail, error) {
	var list []ParticipantDetail
	err := r.db.Table("participants").
		Select("participants.team_id, teams.name AS team_name, participants.players, participants.created_at AS applied_at").
		Joins("JOIN teams ON teams.id = participants.team_id").
		Where("participants.match_id = ? AND participants.deleted_at IS NULL", matchID).
		Order("participants.created_at asc").
		Scan(&list).Error
	return list, err
}

func (r *matchRepository) AcceptTeam(matchID, teamID uint) (int64, error) {
	res := r.db.Model(&Match{}).
		Where("id = ? AND status = ?", matchID, StatusPending).
		Updates(map[string]interface{}{
			"status":           StatusAccepted,
			"accepted_team_id": teamID,
		})
	return res.RowsAffected, res.Error
}

func (r *matchRepository) GetTeamByID(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *matchRepository) CountTeamMembers(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&team.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}
