package match

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/internal/notification"
	"github.com/yeonwoo-k/teamup/internal/team"
	"github.com/yeonwoo-k/teamup/pkg/apperr"
	"github.com/yeonwoo-k/teamup/pkg/responses"
)

// MatchController owns the match lifecycle: creation by a host leader,
// applications by guest leaders, and the host's single acceptance.
type MatchController struct {
	repo     MatchRepository
	notifier *notification.Notifier
}

// NewMatchController creates a new match controller
func NewMatchController(repo MatchRepository, notifier *notification.Notifier) *MatchController {
	return &MatchController{
		repo:     repo,
		notifier: notifier,
	}
}

// requireMatchableTeam checks, in order: the team exists, the caller leads
// it, and its roster is large enough to match. Each failure is distinct.
func (mc *MatchController) requireMatchableTeam(teamID, userID uint) (*team.Team, error) {
	t, err := mc.repo.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Team not found")
	}
	if t.LeaderID != userID {
		return nil, apperr.Forbidden("Only the team leader can do this")
	}
	members, err := mc.repo.CountTeamMembers(t.ID)
	if err != nil {
		return nil, err
	}
	if members < team.MinRoster {
		return nil, apperr.Forbidden("Insufficient roster: the team needs at least 9 members to match")
	}
	return t, nil
}

// CreateMatch godoc
// @Summary      Create a match request (leader only)
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Param        body  body  CreateMatchRequest  true  "Match details"
// @Success      201  {object} responses.Envelope{data=Match}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	if _, err := mc.requireMatchableTeam(req.TeamID, userID); err != nil {
		responses.HandleError(c, err)
		return
	}

	m := &Match{
		TeamID:    req.TeamID,
		LeaderID:  userID,
		Date:      req.Date,
		Location:  req.Location,
		Players:   req.Players,
		Skill:     req.Skill,
		FieldCost: req.FieldCost,
		ProCount:  req.ProCount,
		Status:    StatusPending,
	}
	if err := mc.repo.CreateMatch(m); err != nil {
		responses.HandleError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Match request created", m)
}

// ListMatches godoc
// @Summary      List all matches, newest first
// @Tags         Matches
// @Produce      json
// @Success      200  {object} responses.Envelope{data=[]MatchSummary}
// @Security     ApiKeyAuth
// @Router       /matches/list [get]
func (mc *MatchController) ListMatches(c *gin.Context) {
	list, err := mc.repo.ListMatches()
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Matches retrieved", list)
}

// ApplyToMatch godoc
// @Summary      Apply to a match as a guest team (leader only)
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Param        body  body  ApplyToMatchRequest  true  "Application"
// @Success      201  {object} responses.Envelope{data=Match}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Failure      409  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /matches/apply [post]
func (mc *MatchController) ApplyToMatch(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req ApplyToMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	guestTeam, err := mc.requireMatchableTeam(req.TeamID, userID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	m, err := mc.repo.GetMatchByID(req.MatchID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}
	if m.TeamID == guestTeam.ID {
		responses.SendError(c, http.StatusForbidden, "A team cannot apply to its own match", "forbidden")
		return
	}

	applied, err := mc.repo.HasParticipant(m.ID, guestTeam.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if applied {
		responses.SendError(c, http.StatusConflict, "This team has already applied to the match", "conflict")
		return
	}

	// The unique (match_id, team_id) index backstops the check above under
	// concurrent applications.
	if err := mc.repo.AddParticipant(&Participant{MatchID: m.ID, TeamID: guestTeam.ID, Players: req.Players}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			responses.SendError(c, http.StatusConflict, "This team has already applied to the match", "duplicate_key")
			return
		}
		responses.HandleError(c, err)
		return
	}

	if err := mc.notifier.MatchApplied(m.LeaderID, m.ID, guestTeam.ID, guestTeam.Name); err != nil {
		log.Printf("failed to notify host leader %d of application: %v", m.LeaderID, err)
	}

	responses.SendSuccess(c, http.StatusCreated, "Applied to match", m)
}

// GetAppliedTeams godoc
// @Summary      List applicants for a match (host leader only)
// @Tags         Matches
// @Produce      json
// @Param        match_id  path  uint  true  "Match ID"
// @Success      200  {object} responses.Envelope{data=[]ParticipantDetail}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /matches/{match_id}/participants [get]
func (mc *MatchController) GetAppliedTeams(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid match ID")
		return
	}

	m, err := mc.repo.GetMatchByID(uint(matchID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}
	if m.LeaderID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the match host's leader can view applicants", "forbidden")
		return
	}

	participants, err := mc.repo.GetParticipants(m.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if len(participants) == 0 {
		responses.SendSuccess(c, http.StatusOK, "No teams have applied yet", []ParticipantDetail{})
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Applicants retrieved", participants)
}

// AcceptMatchTeam godoc
// @Summary      Accept one applicant (host leader only)
// @Description  First acceptance wins: the pending->accepted transition is a
// @Description  conditional update and a second call gets a conflict.
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Param        body  body  AcceptTeamRequest  true  "Match and chosen team"
// @Success      200  {object} responses.Envelope{data=Match}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Failure      409  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /matches/acceptteam [post]
func (mc *MatchController) AcceptMatchTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req AcceptTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	m, err := mc.repo.GetMatchByID(req.MatchID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}
	if m.LeaderID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the match host's leader can accept a team", "forbidden")
		return
	}

	applied, err := mc.repo.HasParticipant(m.ID, req.TeamID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if !applied {
		responses.SendError(c, http.StatusConflict, "That team never applied to this match", "conflict")
		return
	}

	rows, err := mc.repo.AcceptTeam(m.ID, req.TeamID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if rows == 0 {
		responses.SendError(c, http.StatusConflict, "Match has already been accepted", "conflict")
		return
	}

	if guestTeam, err := mc.repo.GetTeamByID(req.TeamID); err == nil && guestTeam != nil {
		if hostTeam, err := mc.repo.GetTeamByID(m.TeamID); err == nil && hostTeam != nil {
			if err := mc.notifier.MatchAccepted(guestTeam.LeaderID, m.ID, hostTeam.ID, hostTeam.Name); err != nil {
				log.Printf("failed to notify guest leader %d of acceptance: %v", guestTeam.LeaderID, err)
			}
		}
	}

	updated, err := mc.repo.GetMatchByID(m.ID)
	if err != nil || updated == nil {
		// The transition already happened; fall back to the pre-read row.
		m.Status = StatusAccepted
		m.AcceptedTeamID = &req.TeamID
		updated = m
	}
	responses.SendSuccess(c, http.StatusOK, "Match team accepted", updated)
}

// GetConfirmedMatches godoc
// @Summary      List confirmed matches, newest first
// @Description  An empty result set is surfaced as 404 rather than an empty
// @Description  list; callers must handle this.
// @Tags         Matches
// @Produce      json
// @Success      200  {object} responses.Envelope{data=[]MatchSummary}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /matches/confirmed [get]
func (mc *MatchController) GetConfirmedMatches(c *gin.Context) {
	list, err := mc.repo.ListConfirmed()
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if len(list) == 0 {
		responses.SendError(c, http.StatusNotFound, "No confirmed matches found", "not_found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Confirmed matches retrieved", list)
}
