package rating

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	if err := db.AutoMigrate(&user.User{}, &team.Team{}, &team.TeamMember{}, &TeamRating{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	RatingRoutes(r.Group("/api"), db, testSecret)
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

func seedTeam(t *testing.T, db *gorm.DB, leader *user.User) *team.Team {
	t.Helper()
	tm := &team.Team{Name: "Falcons", InviteCode: "111111", LeaderID: leader.ID}
	if err := db.Create(tm).Error; err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := db.Create(&team.TeamMember{TeamID: tm.ID, UserID: leader.ID}).Error; err != nil {
		t.Fatalf("add leader: %v", err)
	}
	return tm
}

func rate(t *testing.T, r http.Handler, teamID, raterID uint, score float64, comment string) (*httptest.ResponseRecorder, RatingSummary) {
	t.Helper()
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/teams/%d/ratings", teamID),
		map[string]any{"score": score, "comment": comment}, bearerFor(t, raterID))
	var s RatingSummary
	if w.Code == http.StatusOK {
		decodeEnvelope(t, w, &s)
	}
	return w, s
}

func TestUpsertRating_AggregateMaintenance(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader := createUser(t, db, "leader")
	tm := seedTeam(t, db, leader)

	r1 := createUser(t, db, "rater1")
	r2 := createUser(t, db, "rater2")
	r3 := createUser(t, db, "rater3")

	// Two fives establish sum=10, count=2.
	w, _ := rate(t, r, tm.ID, r1.ID, 5, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, s := rate(t, r, tm.ID, r2.ID, 5, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, s.Average)
	assert.Equal(t, 2, s.Count)

	// A third rater scoring 3 makes 13/3.
	w, s = rate(t, r, tm.ID, r3.ID, 3, "solid but slow starts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.33, s.Average)
	assert.Equal(t, 3, s.Count)

	// The same rater revising to 5 applies the delta, not a new row.
	w, s = rate(t, r, tm.ID, r3.ID, 5, "they got faster")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, s.Average)
	assert.Equal(t, 3, s.Count)

	var rows int64
	db.Model(&TeamRating{}).Where("team_id = ?", tm.ID).Count(&rows)
	assert.EqualValues(t, 3, rows)

	var fresh team.Team
	assert.NoError(t, db.First(&fresh, tm.ID).Error)
	assert.Equal(t, 15.0, fresh.RatingSum)
	assert.Equal(t, 3, fresh.RatingCount)
}

func TestUpsertRating_OwnTeamRejected(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader := createUser(t, db, "leader")
	tm := seedTeam(t, db, leader)

	w, _ := rate(t, r, tm.ID, leader.ID, 4, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Contains(t, env.Message, "your own team")

	var fresh team.Team
	assert.NoError(t, db.First(&fresh, tm.ID).Error)
	assert.Equal(t, 0, fresh.RatingCount)
}

func TestUpsertRating_Validation(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader := createUser(t, db, "leader")
	rater := createUser(t, db, "rater")
	tm := seedTeam(t, db, leader)

	w, _ := rate(t, r, tm.ID, rater.ID, 5.5, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = rate(t, r, tm.ID, rater.ID, -1, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Zero is a legal score and must survive required-field binding.
	w, s := rate(t, r, tm.ID, rater.ID, 0, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, s.Count)

	w, _ = rate(t, r, 9999, rater.ID, 4, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRatingSummary(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader := createUser(t, db, "leader")
	rater := createUser(t, db, "rater")
	tm := seedTeam(t, db, leader)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/teams/%d/ratings/summary", tm.ID), nil, bearerFor(t, rater.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	var s RatingSummary
	decodeEnvelope(t, w, &s)
	assert.Equal(t, 0.0, s.Average)
	assert.Equal(t, 0, s.Count)

	rate(t, r, tm.ID, rater.ID, 4, "")

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/teams/%d/ratings/summary", tm.ID), nil, bearerFor(t, rater.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &s)
	assert.Equal(t, 4.0, s.Average)
	assert.Equal(t, 1, s.Count)
}

func TestListRatings_CursorPagination(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	leader := createUser(t, db, "leader")
	tm := seedTeam(t, db, leader)

	for i := 0; i < 5; i++ {
		rater := createUser(t, db, fmt.Sprintf("rater%d", i))
		w, _ := rate(t, r, tm.ID, rater.ID, float64(i%5)+1, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	base := fmt.Sprintf("/api/teams/%d/ratings", tm.ID)
	w := doJSON(r, http.MethodGet, base+"?limit=2", nil, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	var page RatingPage
	decodeEnvelope(t, w, &page)
	assert.Len(t, page.Data, 2)
	if !assert.NotNil(t, page.NextCursor) {
		return
	}
	// Newest first.
	assert.Greater(t, page.Data[0].ID, page.Data[1].ID)

	seen := map[uint]bool{page.Data[0].ID: true, page.Data[1].ID: true}
	for page.NextCursor != nil {
		w = doJSON(r, http.MethodGet, fmt.Sprintf("%s?limit=2&cursor=%d", base, *page.NextCursor), nil, bearerFor(t, leader.ID))
		assert.Equal(t, http.StatusOK, w.Code)
		page = RatingPage{}
		decodeEnvelope(t, w, &page)
		for _, e := range page.Data {
			assert.False(t, seen[e.ID], "entry %d repeated across pages", e.ID)
			seen[e.ID] = true
		}
	}
	assert.Len(t, seen, 5)

	w = doJSON(r, http.MethodGet, base+"?cursor=abc", nil, bearerFor(t, leader.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
