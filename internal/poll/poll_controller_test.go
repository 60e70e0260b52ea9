package poll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeonwoo-k/teamup/internal/match"
	"github.com/yeonwoo-k/teamup/internal/team"
	"github.com/yeonwoo-k/teamup/internal/user"
	"github.com/yeonwoo-k/teamup/pkg/token"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}, &team.Team{}, &team.TeamMember{}, &match.Match{}, &AttendancePoll{}, &Vote{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	PollRoutes(r.Group("/api"), db, testSecret)
	return r
}

func createUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u := &user.User{Username: username, Name: "User " + username, Password: "irrelevant"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func bearerFor(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := token.GenerateJWT(userID, "member", testSecret, 60)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + tok
}

func doJSON(r http.Handler, method, path string, body any, auth string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
	return env
}

// seedFixture creates a team, its leader, and a match hosted by that team.
func seedFixture(t *testing.T, db *gorm.DB) (*user.User, *team.Team, *match.Match) {
	t.Helper()
	leader := createUser(t, db, "poll-leader")
	tm := &team.Team{Name: "Falcons", InviteCode: "111111", LeaderID: leader.ID}
	if err := db.Create(tm).Error; err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := db.Create(&team.TeamMember{TeamID: tm.ID, UserID: leader.ID}).Error; err != nil {
		t.Fatalf("add leader: %v", err)
	}
	m := &match.Match{
		TeamID:   tm.ID,
		LeaderID: leader.ID,
		Date:     time.Now().Add(72 * time.Hour),
		Location: "Riverside pitch 3",
		Players:  11,
		Skill:    match.SkillIntermediate,
		Status:   match.StatusPending,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create match: %v", err)
	}
	return leader, tm, m
}

func TestCreatePoll(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader, tm, m := seedFixture(t, db)
	other := createUser(t, db, "not-leader")

	body := map[string]any{"teamId": tm.ID, "matchId": m.ID, "question": "Can you make Saturday?"}

	// Unknown team and match are 404s.
	w := doJSON(r, http.MethodPost, "/api/attendance-polls", map[string]any{"teamId": 9999, "matchId": m.ID, "question": "q"}, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodPost, "/api/attendance-polls", map[string]any{"teamId": tm.ID, "matchId": 9999, "question": "q"}, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Only the team leader can open a poll.
	w = doJSON(r, http.MethodPost, "/api/attendance-polls", body, bearerFor(t, other.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/attendance-polls", body, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp PollResponse
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, tm.ID, resp.TeamID)
	assert.Equal(t, m.ID, resp.MatchID)
	assert.Equal(t, 0, resp.YesCount)
	assert.False(t, resp.CanMatch)

	// One poll per (team, match).
	w = doJSON(r, http.MethodPost, "/api/attendance-polls", body, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func createPollVia(t *testing.T, r http.Handler, db *gorm.DB) (PollResponse, *user.User) {
	t.Helper()
	leader, tm, m := seedFixture(t, db)
	w := doJSON(r, http.MethodPost, "/api/attendance-polls",
		map[string]any{"teamId": tm.ID, "matchId": m.ID, "question": "Can you make Saturday?"},
		bearerFor(t, leader.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create poll: %d %s", w.Code, w.Body.String())
	}
	var resp PollResponse
	decodeEnvelope(t, w, &resp)
	return resp, leader
}

func TestVote_QuorumFlip(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	created, _ := createPollVia(t, r, db)

	voters := make([]*user.User, 0, Quorum)
	for i := 0; i < Quorum; i++ {
		voters = append(voters, createUser(t, db, fmt.Sprintf("voter%d", i)))
	}

	// Ten yes votes are not enough.
	for _, v := range voters[:Quorum-1] {
		w := doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
			map[string]any{"pollId": created.ID, "choice": "yes"}, bearerFor(t, v.ID))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp PollResponse
		decodeEnvelope(t, w, &resp)
		assert.False(t, resp.CanMatch)
	}

	// The eleventh flips the flag.
	w := doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
		map[string]any{"pollId": created.ID, "choice": "yes"}, bearerFor(t, voters[Quorum-1].ID))
	assert.Equal(t, http.StatusOK, w.Code)
	var resp PollResponse
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, Quorum, resp.YesCount)
	assert.True(t, resp.CanMatch)

	// A revote counts once and can drop the poll back below quorum.
	w = doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
		map[string]any{"pollId": created.ID, "choice": "no"}, bearerFor(t, voters[0].ID))
	assert.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, Quorum-1, resp.YesCount)
	assert.Equal(t, 1, resp.NoCount)
	assert.False(t, resp.CanMatch)

	var voteCount int64
	db.Model(&Vote{}).Where("poll_id = ?", created.ID).Count(&voteCount)
	assert.EqualValues(t, Quorum, voteCount)
}

func TestVote_UnknownPoll(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	voter := createUser(t, db, "voter")

	w := doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
		map[string]any{"pollId": 9999, "choice": "yes"}, bearerFor(t, voter.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPollResults(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	created, _ := createPollVia(t, r, db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
		map[string]any{"pollId": created.ID, "choice": "yes"}, bearerFor(t, alice.ID))
	doJSON(r, http.MethodPost, "/api/attendance-polls/vote",
		map[string]any{"pollId": created.ID, "choice": "no"}, bearerFor(t, bob.ID))

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/attendance-polls/%d", created.ID), nil, bearerFor(t, alice.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	var resp PollResponse
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, 1, resp.YesCount)
	assert.Equal(t, 1, resp.NoCount)
	assert.Len(t, resp.Votes, 2)

	byUser := map[uint]Choice{}
	for _, v := range resp.Votes {
		byUser[v.UserID] = v.Choice
	}
	assert.Equal(t, ChoiceYes, byUser[alice.ID])
	assert.Equal(t, ChoiceNo, byUser[bob.ID])

	w = doJSON(r, http.MethodGet, "/api/attendance-polls/9999", nil, bearerFor(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
