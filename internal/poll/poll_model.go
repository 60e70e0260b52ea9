package poll

import (
	"time"

	"gorm.io/gorm"
)

// Quorum is the yes-vote count at which a poll's canMatch flag turns true.
// Deliberately independent of team.MinRoster; the two thresholds are
// separate product knobs.
const Quorum = 11

type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// AttendancePoll is a yes/no poll a leader opens for one of their team's
// matches. At most one poll exists per (team, match) pair.
type AttendancePoll struct {
	gorm.Model
	TeamID    uint       `gorm:"uniqueIndex:idx_polls_team_match;not null" json:"team_id"`
	MatchID   uint       `gorm:"uniqueIndex:idx_polls_team_match;not null" json:"match_id"`
	LeaderID  uint       `gorm:"not null" json:"leader_id"`
	Question  string     `gorm:"not null" json:"question"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CanMatch  bool       `gorm:"default:false" json:"can_match"`
}

// Vote is one user's current choice in one poll; a later vote overwrites.
type Vote struct {
	gorm.Model
	PollID uint   `gorm:"uniqueIndex:idx_votes_poll_user;not null" json:"poll_id"`
	UserID uint   `gorm:"uniqueIndex:idx_votes_poll_user;not null" json:"user_id"`
	Choice Choice `gorm:"not null" json:"choice"`
}

// --- DTOs ---

type CreatePollRequest struct {
	TeamID    uint       `json:"teamId" binding:"required"`
	MatchID   uint       `json:"matchId" binding:"required"`
	Question  string     `json:"question" binding:"required,max=200"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type VoteRequest struct {
	PollID uint   `json:"pollId" binding:"required"`
	Choice Choice `json:"choice" binding:"required,oneof=yes no"`
}

// VoterEntry is one vote with the voter's name resolved.
type VoterEntry struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Choice   Choice `json:"choice"`
}

type PollResponse struct {
	ID        uint         `json:"id"`
	TeamID    uint         `json:"teamId"`
	MatchID   uint         `json:"matchId"`
	Question  string       `json:"question"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	YesCount  int          `json:"yesCount"`
	NoCount   int          `json:"noCount"`
	CanMatch  bool         `json:"canMatch"`
	Votes     []VoterEntry `json:"votes,omitempty"`
}
