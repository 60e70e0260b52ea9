package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeonwoo-k/teamup/config"
	"github.com/yeonwoo-k/teamup/internal/team"
	"github.com/yeonwoo-k/teamup/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}, &team.Team{}, &team.TeamMember{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessTokenSecret = "test-secret"
	cfg.JWT.AccessTokenExpiryMinutes = 60
	cfg.JWT.RefreshTokenSecret = "test-refresh-secret"
	cfg.JWT.RefreshTokenExpiryDays = 7
	return cfg
}

func newRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterAuthRoutes(r.Group("/api"), db, testConfig())
	return r
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

func registerVia(t *testing.T, r http.Handler, username string) UserResponse {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/register",
		map[string]any{"username": username, "name": "User " + username, "password": "password123"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, w.Code, w.Body.String())
	}
	var resp UserResponse
	decodeEnvelope(t, w, &resp)
	return resp
}

func loginVia(t *testing.T, r http.Handler, username, password string) (*httptest.ResponseRecorder, AuthResponse) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login",
		map[string]any{"username": username, "password": password}, "")
	var resp AuthResponse
	if w.Code == http.StatusOK {
		decodeEnvelope(t, w, &resp)
	}
	return w, resp
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)

	resp := registerVia(t, r, "casterly7")
	assert.Equal(t, "casterly7", resp.Username)
	assert.Equal(t, user.RoleMember, resp.Role)

	// Passwords are stored hashed and never serialized.
	var stored user.User
	assert.NoError(t, db.Where("username = ?", "casterly7").First(&stored).Error)
	assert.NotEqual(t, "password123", stored.Password)

	w := doJSON(r, http.MethodPost, "/api/auth/register",
		map[string]any{"username": "casterly7", "name": "Someone Else", "password": "password456"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Equal(t, "duplicate_key", env.Error)

	w = doJSON(r, http.MethodPost, "/api/auth/register",
		map[string]any{"username": "ab", "name": "Too Short", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	registerVia(t, r, "casterly7")

	w, resp := loginVia(t, r, "casterly7", "password123")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.RoleMember, resp.User.Role)

	w, _ = loginVia(t, r, "casterly7", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = loginVia(t, r, "nobody", "password123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_RoleIsDerivedFromLedTeams(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	registered := registerVia(t, r, "casterly7")

	// Leading any team makes the display role "leader".
	tm := &team.Team{Name: "Falcons", InviteCode: "111111", LeaderID: registered.ID}
	assert.NoError(t, db.Create(tm).Error)

	w, resp := loginVia(t, r, "casterly7", "password123")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.RoleLeader, resp.User.Role)
}

func TestRefreshToken_Rotation(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	registerVia(t, r, "casterly7")
	_, first := loginVia(t, r, "casterly7", "password123")

	w := doJSON(r, http.MethodPost, "/api/auth/refresh",
		map[string]any{"refresh_token": first.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second AuthResponse
	decodeEnvelope(t, w, &second)
	assert.NotEmpty(t, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-out token no longer matches the stored one.
	w = doJSON(r, http.MethodPost, "/api/auth/refresh",
		map[string]any{"refresh_token": first.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Equal(t, "token_invalid", env.Error)

	w = doJSON(r, http.MethodPost, "/api/auth/refresh",
		map[string]any{"refresh_token": "not-a-token"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db)
	registerVia(t, r, "casterly7")
	_, auth := loginVia(t, r, "casterly7", "password123")

	w := doJSON(r, http.MethodGet, "/api/auth/me", nil, "Bearer "+auth.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp UserResponse
	decodeEnvelope(t, w, &resp)
	assert.Equal(t, "casterly7", resp.Username)

	w = doJSON(r, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Equal(t, "no_token", env.Error)

	w = doJSON(r, http.MethodGet, "/api/auth/me", nil, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env = decodeEnvelope(t, w, nil)
	assert.Equal(t, "token_invalid", env.Error)
}
