package poll

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/pkg/responses"
)

// PollController handles attendance polls tied to a (team, match) pair.
type PollController struct {
	repo PollRepository
}

func NewPollController(repo PollRepository) *PollController {
	return &PollController{repo: repo}
}

func (pc *PollController) buildResponse(p *AttendancePoll, withVotes bool) (*PollResponse, error) {
	yes, err := pc.repo.CountVotes(p.ID, ChoiceYes)
	if err != nil {
		return nil, err
	}
	no, err := pc.repo.CountVotes(p.ID, ChoiceNo)
	if err != nil {
		return nil, err
	}
	resp := &PollResponse{
		ID:        p.ID,
		TeamID:    p.TeamID,
		MatchID:   p.MatchID,
		Question:  p.Question,
		ExpiresAt: p.ExpiresAt,
		YesCount:  int(yes),
		NoCount:   int(no),
		CanMatch:  p.CanMatch,
	}
	if withVotes {
		voters, err := pc.repo.GetVoters(p.ID)
		if err != nil {
			return nil, err
		}
		resp.Votes = voters
	}
	return resp, nil
}

// CreatePoll godoc
// @Summary      Open an attendance poll for a match (leader only)
// @Tags         AttendancePolls
// @Accept       json
// @Produce      json
// @Param        body  body  CreatePollRequest  true  "Poll details"
// @Success      201  {object} responses.Envelope{data=PollResponse}
// @Failure      403  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Failure      409  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /attendance-polls [post]
func (pc *PollController) CreatePoll(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	t, err := pc.repo.GetTeamByID(req.TeamID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	m, err := pc.repo.GetMatchByID(req.MatchID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}

	if t.LeaderID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the team leader can open a poll", "forbidden")
		return
	}

	existing, err := pc.repo.GetPollByTeamAndMatch(t.ID, m.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "A poll already exists for this team and match", "conflict")
		return
	}

	p := &AttendancePoll{
		TeamID:    t.ID,
		MatchID:   m.ID,
		LeaderID:  userID,
		Question:  req.Question,
		ExpiresAt: req.ExpiresAt,
	}
	if err := pc.repo.CreatePoll(p); err != nil {
		responses.HandleError(c, err)
		return
	}

	resp, err := pc.buildResponse(p, false)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Poll created", resp)
}

// Vote godoc
// @Summary      Cast or change a vote
// @Description  A user's later vote overwrites their earlier one; canMatch
// @Description  is recomputed from the yes tally after every vote.
// @Tags         AttendancePolls
// @Accept       json
// @Produce      json
// @Param        body  body  VoteRequest  true  "Vote"
// @Success      200  {object} responses.Envelope{data=PollResponse}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /attendance-polls/vote [post]
func (pc *PollController) Vote(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	p, err := pc.repo.GetPollByID(req.PollID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if p == nil {
		responses.NotFound(c, "Poll")
		return
	}

	updated, err := pc.repo.UpsertVote(p.ID, userID, req.Choice)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	resp, err := pc.buildResponse(updated, false)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Vote recorded", resp)
}

// GetPollResults godoc
// @Summary      Poll results with voter names resolved
// @Tags         AttendancePolls
// @Produce      json
// @Param        poll_id  path  uint  true  "Poll ID"
// @Success      200  {object} responses.Envelope{data=PollResponse}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /attendance-polls/{poll_id} [get]
func (pc *PollController) GetPollResults(c *gin.Context) {
	pollID, err := strconv.ParseUint(c.Param("poll_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid poll ID")
		return
	}

	p, err := pc.repo.GetPollByID(uint(pollID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if p == nil {
		responses.NotFound(c, "Poll")
		return
	}

	resp, err := pc.buildResponse(p, true)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Poll results retrieved", resp)
}
