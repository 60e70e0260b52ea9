package rating

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/pkg/responses"
)

// RatingController handles post-match team ratings and their aggregates.
type RatingController struct {
	repo RatingRepository
}

func NewRatingController(repo RatingRepository) *RatingController {
	return &RatingController{repo: repo}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func summaryFrom(sum float64, count int) RatingSummary {
	if count == 0 {
		return RatingSummary{Average: 0, Count: 0}
	}
	return RatingSummary{Average: round2(sum / float64(count)), Count: count}
}

// UpsertRating godoc
// @Summary      Rate a team
// @Description  A rater's first score adds to the aggregate; a repeat score
// @Description  replaces their previous one and applies the delta.
// @Tags         Ratings
// @Accept       json
// @Produce      json
// @Param        team_id  path  uint                 true  "Team ID"
// @Param        body     body  UpsertRatingRequest  true  "Score 0-5 and optional comment"
// @Success      200  {object} responses.Envelope{data=RatingSummary}
// @Failure      400  {object} responses.Envelope
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/ratings [post]
func (rc *RatingController) UpsertRating(c *gin.Context) {
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

	var req UpsertRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	t, err := rc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	// Members cannot rate their own team.
	isMember, err := rc.repo.IsTeamMember(t.ID, userID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if isMember {
		responses.BadRequest(c, "You cannot rate your own team")
		return
	}

	existing, err := rc.repo.GetRating(t.ID, userID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if existing == nil {
		if err := rc.repo.CreateRating(&TeamRating{
			TeamID:  t.ID,
			RaterID: userID,
			Score:   *req.Score,
			Comment: req.Comment,
		}); err != nil {
			responses.HandleError(c, err)
			return
		}
	} else {
		if err := rc.repo.UpdateRatingScore(existing, *req.Score, req.Comment); err != nil {
			responses.HandleError(c, err)
			return
		}
	}

	sum, count, err := rc.repo.GetAggregate(t.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Rating saved", summaryFrom(sum, count))
}

// GetRatingSummary godoc
// @Summary      Team rating summary
// @Tags         Ratings
// @Produce      json
// @Param        team_id  path  uint  true  "Team ID"
// @Success      200  {object} responses.Envelope{data=RatingSummary}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/ratings/summary [get]
func (rc *RatingController) GetRatingSummary(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid team ID")
		return
	}

	t, err := rc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Rating summary retrieved", summaryFrom(t.RatingSum, t.RatingCount))
}

// ListRatings godoc
// @Summary      List a team's ratings with cursor pagination
// @Tags         Ratings
// @Produce      json
// @Param        team_id  path   uint  true   "Team ID"
// @Param        limit    query  int   false  "page size, capped at 50"
// @Param        cursor   query  uint  false  "return ratings with id below this"
// @Success      200  {object} responses.Envelope{data=RatingPage}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /teams/{team_id}/ratings [get]
func (rc *RatingController) ListRatings(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid team ID")
		return
	}

	t, err := rc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var cursor *uint
	if raw := c.Query("cursor"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			responses.BadRequest(c, "Invalid cursor")
			return
		}
		u := uint(v)
		cursor = &u
	}

	// Fetch one extra row to learn whether another page exists.
	entries, err := rc.repo.ListRatings(t.ID, limit+1, cursor)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	page := RatingPage{Data: entries}
	if len(entries) > limit {
		page.Data = entries[:limit]
		next := page.Data[len(page.Data)-1].ID
		page.NextCursor = &next
	}
	responses.SendSuccess(c, http.StatusOK, "Ratings retrieved", page)
}
