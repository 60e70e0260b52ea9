package match

import (
	"time"

	"gorm.io/gorm"
)

type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	// Reserved terminal states, unreachable from current operations.
	StatusRejected Status = "rejected"
	StatusDone     Status = "done"
)

// Match is a hosted match request. The host team and its leader are
// denormalized at creation; status only moves pending -> accepted, and the
// transition is a conditional update so a second acceptance loses.
type Match struct {
	gorm.Model
	TeamID         uint      `gorm:"index;not null" json:"team_id"`
	LeaderID       uint      `gorm:"index;not null" json:"leader_id"`
	Date           time.Time `gorm:"not null" json:"date"`
	Location       string    `gorm:"not null" json:"location"`
	Players        int       `gorm:"not null" json:"players"`
	Skill          Skill     `gorm:"not null" json:"skill"`
	FieldCost      int       `gorm:"default:0" json:"field_cost"`
	ProCount       int       `gorm:"default:0" json:"pro_count"`
	Status         Status    `gorm:"index;not null;default:'pending'" json:"status"`
	AcceptedTeamID *uint     `json:"accepted_team_id,omitempty"`
}

// Participant is one guest team's application to one match.
type Participant struct {
	gorm.Model
	MatchID uint `gorm:"uniqueIndex:idx_participants_match_team;not null" json:"match_id"`
	TeamID  uint `gorm:"uniqueIndex:idx_participants_match_team;not null" json:"team_id"`
	Players int  `gorm:"not null" json:"players"`
}

// --- DTOs ---

type CreateMatchRequest struct {
	TeamID    uint      `json:"teamId" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Location  string    `json:"location" binding:"required,max=200"`
	Players   int       `json:"players" binding:"required,gte=1"`
	Skill     Skill     `json:"skill" binding:"required,oneof=beginner intermediate advanced"`
	FieldCost int       `json:"fieldCost" binding:"gte=0"`
	ProCount  int       `json:"proCount" binding:"gte=0"`
}

type ApplyToMatchRequest struct {
	TeamID  uint `json:"teamId" binding:"required"`
	MatchID uint `json:"matchId" binding:"required"`
	Players int  `json:"players" binding:"required,gte=1"`
}

type AcceptTeamRequest struct {
	MatchID uint `json:"matchId" binding:"required"`
	TeamID  uint `json:"teamId" binding:"required"`
}

// MatchSummary is a match row with host names resolved for list views.
type MatchSummary struct {
	ID             uint      `json:"id"`
	TeamID         uint      `json:"teamId"`
	TeamName       string    `json:"teamName"`
	LeaderID       uint      `json:"leaderId"`
	LeaderUsername string    `json:"leaderUsername"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	Players        int       `json:"players"`
	Skill          Skill     `json:"skill"`
	FieldCost      int       `json:"fieldCost"`
	ProCount       int       `json:"proCount"`
	Status         Status    `json:"status"`
	AcceptedTeamID *uint     `json:"acceptedTeamId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ParticipantDetail is one applicant with its team resolved.
type ParticipantDetail struct {
	TeamID    uint      `json:"teamId"`
	TeamName  string    `json:"teamName"`
	Players   int       `json:"players"`
	AppliedAt time.Time `json:"appliedAt"`
}
