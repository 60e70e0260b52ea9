package notification

import "gorm.io/gorm"

type Type string

const (
	TypeTeamJoinRequest Type = "team_join_request"
	TypeMatchApply      Type = "match_apply"
	TypeMatchAccepted   Type = "match_accepted"
)

// Notification is a fire-and-forget event addressed to one user. It is never
// required for correctness of the operation that emitted it.
type Notification struct {
	gorm.Model
	UserID         uint   `gorm:"index:idx_notifications_user_read;not null" json:"user_id"`
	Type           Type   `gorm:"not null" json:"type"`
	Title          string `gorm:"not null" json:"title"`
	Message        string `gorm:"not null" json:"message"`
	Read           bool   `gorm:"index:idx_notifications_user_read;default:false" json:"read"`
	RelatedTeamID  *uint  `json:"related_team_id,omitempty"`
	RelatedMatchID *uint  `json:"related_match_id,omitempty"`
	RelatedUserID  *uint  `json:"related_user_id,omitempty"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
