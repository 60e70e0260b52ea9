package notification

import (
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(n *Notification) error
	GetByUser(userID uint, limit int, read *bool) ([]Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(id, userID uint) (*Notification, error)
	MarkAllRead(userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) GetByUser(userID uint, limit int, read *bool) ([]Notification, error) {
	var list []Notification
	query := r.db.Where("user_id = ?", userID)
	if read != nil {
		query = query.Where("read = ?", *read)
	}
	if limit <= 0 {
		limit = 20
	}
	if err := query.Order("created_at desc").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(id, userID uint) (*Notification, error) {
	var n Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	if !n.Read {
		n.Read = true
		if err := r.db.Model(&n).Update("read", true).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(userID uint) (int64, error) {
	res := r.db.Model(&Notification{}).Where("user_id = ? AND read = ?", userID, false).Update("read", true)
	return res.RowsAffected, res.Error
}
