package auth

import (
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/user"
)

// AuthRepository defines the data operations the auth controller needs.
type AuthRepository interface {
	CreateUser(u *user.User) error
	GetUserByID(id uint) (*user.User, error)
	GetUserByUsername(username string) (*user.User, error)
	SaveRefreshToken(userID uint, refreshToken string) error
	CountLedTeams(userID uint) (int64, error)
}

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *authRepository) GetUserByID(id uint) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authRepository) GetUserByUsername(username string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *authRepository) SaveRefreshToken(userID uint, refreshToken string) error {
	return r.db.Model(&user.User{}).Where("id = ?", userID).Update("refresh_token", refreshToken).Error
}

// CountLedTeams counts teams whose leader is the given user. Role is derived
// from this, never stored.
func (r *authRepository) CountLedTeams(userID uint) (int64, error) {
	var count int64
	err := r.db.Table("teams").Where("leader_id = ? AND deleted_at IS NULL", userID).Count(&count).Error
	return count, err
}
