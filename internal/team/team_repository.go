package team

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeonwoo-k/teamup/internal/user"
)

// TeamRepository defines the interface for team data operations
type TeamRepository interface {
	CreateTeamWithLeader(t *Team) error
	GetTeamByID(id uint) (*Team, error)
	GetTeamByName(name string) (*Team, error)
	GetTeamByInviteCode(code string) (*Team, error)
	InviteCodeExists(code string) (bool, error)

	// Team row lock for serialized read-modify-write sequences. Only valid
	// inside WithTransaction.
	LockTeam(id uint) (*Team, error)

	CountMembers(teamID uint) (int64, error)
	IsMember(teamID, userID uint) (bool, error)
	AddMember(teamID, userID uint) error

	IsPending(teamID, userID uint) (bool, error)
	CountPending(teamID uint) (int64, error)
	AddJoinRequest(teamID, userID uint) error
	RemoveJoinRequest(teamID, userID uint) error
	GetPendingUserIDs(teamID uint) ([]uint, error)
	GetPendingUsers(teamID uint) ([]PendingUser, error)

	GetUserByID(id uint) (*user.User, error)

	WithTransaction(txFunc func(TeamRepository) error) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// CreateTeamWithLeader creates the team and the leader's membership row in
// one transaction, so a team never exists without its leader on the roster.
func (r *teamRepository) CreateTeamWithLeader(t *Team) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return tx.Create(&TeamMember{TeamID: t.ID, UserID: t.LeaderID}).Error
	})
}

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var t Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetTeamByName(name string) (*Team, error) {
	var t Team
	if err := r.db.Where("name = ?", name).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetTeamByInviteCode(code string) (*Team, error) {
	var t Team
	if err := r.db.Where("invite_code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) InviteCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&Team{}).Where("invite_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) LockTeam(id uint) (*Team, error) {
	tx := r.db
	// sqlite (tests) has no row locks; its writes serialize on the file
	// anyway, so the clause is postgres-only.
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var t Team
	if err := tx.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) CountMembers(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *teamRepository) IsMember(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) AddMember(teamID, userID uint) error {
	return r.db.Create(&TeamMember{TeamID: teamID, UserID: userID}).Error
}

func (r *teamRepository) IsPending(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&JoinRequest{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) CountPending(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&JoinRequest{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *teamRepository) AddJoinRequest(teamID, userID uint) error {
	return r.db.Create(&JoinRequest{TeamID: teamID, UserID: userID}).Error
}

func (r *teamRepository) RemoveJoinRequest(teamID, userID uint) error {
	return r.db.Unscoped().Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&JoinRequest{}).Error
}

func (r *teamRepository) GetPendingUserIDs(teamID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&JoinRequest{}).Where("team_id = ?", teamID).Order("created_at asc").Pluck("user_id", &ids).Error
	return ids, err
}

func (r *teamRepository) GetPendingUsers(teamID uint) ([]PendingUser, error) {
	var users []PendingUser
	err := r.db.Table("join_requests").
		Select("users.id, users.username, users.name").
		Joins("JOIN users ON users.id = join_requests.user_id").
		Where("join_requests.team_id = ? AND join_requests.deleted_at IS NULL", teamID).
		Order("join_requests.created_at asc").
		Scan(&users).Error
	return users, err
}

func (r *teamRepository) GetUserByID(id uint) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *teamRepository) WithTransaction(txFunc func(TeamRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &teamRepository{db: tx}
		return txFunc(txRepo)
	})
}
