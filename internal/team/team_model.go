package team

import "gorm.io/gorm"

// MinRoster is the roster size at which a team becomes eligible for
// matching. Note this is intentionally independent of the attendance-poll
// quorum, which is a separate product knob.
const MinRoster = 9

// Team represents a team with exactly one leader. The leader always has a
// TeamMember row. Rating aggregates are maintained incrementally by the
// rating component, never recomputed by scanning.
type Team struct {
	gorm.Model
	Name        string  `gorm:"uniqueIndex;not null" json:"team_name"`
	InviteCode  string  `gorm:"uniqueIndex;not null" json:"invite_code"`
	LeaderID    uint    `gorm:"index;not null" json:"leader_id"`
	RatingSum   float64 `gorm:"default:0" json:"rating_sum"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`
}

// TeamMember is one user's membership in one team.
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"uniqueIndex:idx_team_members_team_user;not null" json:"team_id"`
	UserID uint `gorm:"uniqueIndex:idx_team_members_team_user;not null" json:"user_id"`
}

// JoinRequest is the pending set: a user id appears here only while it is
// not a member, and the leader is never pending.
type JoinRequest struct {
	gorm.Model
	TeamID uint `gorm:"uniqueIndex:idx_join_requests_team_user;not null" json:"team_id"`
	UserID uint `gorm:"uniqueIndex:idx_join_requests_team_user;not null" json:"user_id"`
}

// --- DTOs ---

type CreateTeamRequest struct {
	TeamName string `json:"teamName" binding:"required,min=2,max=50"`
}

type JoinTeamRequest struct {
	InviteCode string `json:"inviteCode" binding:"required,len=6,numeric"`
}

type DecideJoinRequest struct {
	Accept []uint `json:"accept"`
	Reject []uint `json:"reject"`
}

type TeamResponse struct {
	ID         uint   `json:"id"`
	TeamName   string `json:"teamName"`
	InviteCode string `json:"inviteCode"`
	LeaderID   uint   `json:"leaderId"`
	MemberNum  int    `json:"memberNum"`
	CanMatch   bool   `json:"canMatch"`
}

type JoinResponse struct {
	TeamID       uint `json:"teamId"`
	PendingCount int  `json:"pendingCount"`
}

type PendingUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type DecideJoinResponse struct {
	TeamID           uint `json:"teamId"`
	Accepted         int  `json:"accepted"`
	Rejected         int  `json:"rejected"`
	RemainingPending int  `json:"remainingPending"`
	MemberNum        int  `json:"memberNum"`
	CanMatch         bool `json:"canMatch"`
}

// NewTeamResponse derives memberNum and canMatch from the current roster
// count. These are never stored.
func NewTeamResponse(t *Team, memberNum int) TeamResponse {
	return TeamResponse{
		ID:         t.ID,
		TeamName:   t.Name,
		InviteCode: t.InviteCode,
		LeaderID:   t.LeaderID,
		MemberNum:  memberNum,
		CanMatch:   memberNum >= MinRoster,
	}
}
