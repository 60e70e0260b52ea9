package team

import (
	"crypto/rand"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/internal/notification"
	"github.com/yeonwoo-k/teamup/pkg/apperr"
	"github.com/yeonwoo-k/teamup/pkg/responses"
)

const inviteCodeAttempts = 5

// TeamController handles team creation, invite-code joins and the leader's
// accept/reject decisions.
type TeamController struct {
	repo     TeamRepository
	notifier *notification.Notifier
}

// NewTeamController creates a new team controller
func NewTeamController(repo TeamRepository, notifier *notification.Notifier) *TeamController {
	return &TeamController{
		repo:     repo,
		notifier: notifier,
	}
}

// generateInviteCode draws fresh 6-digit codes until one is unused. The
// unique index on invite_code is the backstop for a concurrent winner.
func (tc *TeamController) generateInviteCode() (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		code := strconv.FormatInt(n.Int64()+100000, 10)
		exists, err := tc.repo.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.Internal("Failed to allocate a unique invite code")
}

// CreateTeam godoc
// @Summary      Create a new team
// @Description  Creates a team with the caller as leader and first member.
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        team  body  CreateTeamRequest  true  "Team name"
// @Success      201  {object} responses.Envelope{data=TeamResponse}
// @Failure      409  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	existing, err := tc.repo.GetTeamByName(req.TeamName)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "Team name already exists", "duplicate_key")
		return
	}

	code, err := tc.generateInviteCode()
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	team := &Team{
		Name:       req.TeamName,
		InviteCode: code,
		LeaderID:   userID,
	}
	if err := tc.repo.CreateTeamWithLeader(team); err != nil {
		responses.HandleError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", NewTeamResponse(team, 1))
}

// GetTeamByInvite godoc
// @Summary      Preview a team by invite code
// @Tags         Teams
// @Produce      json
// @Param        code  path  string  true  "6-digit invite code"
// @Success      200  {object} responses.Envelope{data=TeamResponse}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/invite/{code} [get]
func (tc *TeamController) GetTeamByInvite(c *gin.Context) {
	code := c.Param("code")

	team, err := tc.repo.GetTeamByInviteCode(code)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "No team matches that invite code", "not_found")
		return
	}

	members, err := tc.repo.CountMembers(team.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved", NewTeamResponse(team, int(members)))
}

// RequestJoin godoc
// @Summary      Request to join a team by invite code
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        body  body  JoinTeamRequest  true  "Invite code"
// @Success      200  {object} responses.Envelope{data=JoinResponse}
// @Failure      404  {object} responses.Envelope
// @Failure      409  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/join [post]
func (tc *TeamController) RequestJoin(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	team, err := tc.repo.GetTeamByInviteCode(req.InviteCode)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "No team matches that invite code", "not_found")
		return
	}

	isMember, err := tc.repo.IsMember(team.ID, userID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if isMember {
		responses.SendError(c, http.StatusConflict, "Already a member of this team", "conflict")
		return
	}

	isPending, err := tc.repo.IsPending(team.ID, userID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if isPending {
		responses.SendError(c, http.StatusConflict, "Join request already submitted", "conflict")
		return
	}

	if err := tc.repo.AddJoinRequest(team.ID, userID); err != nil {
		responses.HandleError(c, err)
		return
	}

	// Best-effort: the join request succeeds whether or not the leader gets
	// notified.
	if requester, err := tc.repo.GetUserByID(userID); err == nil && requester != nil {
		if err := tc.notifier.TeamJoinRequested(team.LeaderID, team.ID, team.Name, userID, requester.Name); err != nil {
			log.Printf("failed to notify leader %d of join request: %v", team.LeaderID, err)
		}
	} else if err != nil {
		log.Printf("failed to load requester %d for notification: %v", userID, err)
	}

	pending, err := tc.repo.CountPending(team.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Join request submitted", JoinResponse{
		TeamID:       team.ID,
		PendingCount: int(pending),
	})
}

// ListPending godoc
// @Summary      List pending join requests (leader only)
// @Tags         Teams
// @Produce      json
// @Param        team_id  path  uint  true  "Team ID"
// @Success      200  {object} responses.Envelope{data=[]PendingUser}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/requests [get]
func (tc *TeamController) ListPending(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid team ID")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if team == nil {
		responses.NotFound(c, "Team")
		return
	}
	if team.LeaderID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the team leader can view join requests", "forbidden")
		return
	}

	pending, err := tc.repo.GetPendingUsers(team.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Pending requests retrieved", pending)
}

// DecideJoin godoc
// @Summary      Accept or reject pending join requests (leader only)
// @Description  Ids that are no longer pending are silently ignored, so a
// @Description  repeated decision is a no-op rather than an error.
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Param        team_id  path  uint               true  "Team ID"
// @Param        body     body  DecideJoinRequest  true  "Accept and reject id lists"
// @Success      200  {object} responses.Envelope{data=DecideJoinResponse}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/requests/decide [post]
func (tc *TeamController) DecideJoin(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid team ID")
		return
	}

	var req DecideJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	var result DecideJoinResponse
	err = tc.repo.WithTransaction(func(repo TeamRepository) error {
		// Row lock serializes concurrent decisions on the same team.
		team, err := repo.LockTeam(uint(teamID))
		if err != nil {
			return err
		}
		if team == nil {
			return apperr.NotFound("Team not found")
		}
		if team.LeaderID != userID {
			return apperr.Forbidden("Only the team leader can decide join requests")
		}

		pendingIDs, err := repo.GetPendingUserIDs(team.ID)
		if err != nil {
			return err
		}
		pending := make(map[uint]bool, len(pendingIDs))
		for _, id := range pendingIDs {
			pending[id] = true
		}

		for _, id := range req.Accept {
			if !pending[id] {
				continue
			}
			if err := repo.AddMember(team.ID, id); err != nil {
				return err
			}
			if err := repo.RemoveJoinRequest(team.ID, id); err != nil {
				return err
			}
			delete(pending, id)
			result.Accepted++
		}
		for _, id := range req.Reject {
			if !pending[id] {
				continue
			}
			if err := repo.RemoveJoinRequest(team.ID, id); err != nil {
				return err
			}
			delete(pending, id)
			result.Rejected++
		}

		members, err := repo.CountMembers(team.ID)
		if err != nil {
			return err
		}
		result.TeamID = team.ID
		result.RemainingPending = len(pending)
		result.MemberNum = int(members)
		result.CanMatch = members >= MinRoster
		return nil
	})
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Join requests processed", result)
}
