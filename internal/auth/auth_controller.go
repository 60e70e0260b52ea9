package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/config"
	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/internal/user"
	"github.com/yeonwoo-k/teamup/pkg/responses"
	"github.com/yeonwoo-k/teamup/pkg/token"
	"github.com/yeonwoo-k/teamup/utils"
)

type AuthController struct {
	repo   AuthRepository
	config *config.Config
}

func NewAuthController(repo AuthRepository, cfg *config.Config) *AuthController {
	return &AuthController{
		repo:   repo,
		config: cfg,
	}
}

// resolveRole derives the caller's role from current storage: leader if they
// lead at least one team, member otherwise.
func (ac *AuthController) resolveRole(userID uint) (string, error) {
	count, err := ac.repo.CountLedTeams(userID)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return user.RoleLeader, nil
	}
	return user.RoleMember, nil
}

func (ac *AuthController) generateAndSaveTokens(userID uint, role string) (string, string, error) {
	accessToken, err := token.GenerateJWT(userID, role, ac.config.JWT.AccessTokenSecret, ac.config.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", fmt.Errorf("access token generation failed: %w", err)
	}

	refreshToken, err := token.GenerateRefreshToken(userID, ac.config.JWT.RefreshTokenSecret, ac.config.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return "", "", fmt.Errorf("refresh token generation failed: %w", err)
	}

	if err := ac.repo.SaveRefreshToken(userID, refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// Register godoc
// @Summary      Register a new user
// @Description  Create a new user with username, display name and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} responses.Envelope{data=UserResponse}
// @Failure      400   {object} responses.Envelope
// @Failure      409   {object} responses.Envelope
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	if _, err := ac.repo.GetUserByUsername(req.Username); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.SendError(c, http.StatusConflict, "User with this username already exists", "duplicate_key")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Error hashing password", "server_error")
		return
	}

	newUser := &user.User{
		Username: req.Username,
		Name:     req.Name,
		Password: hashedPassword,
	}
	if err := ac.repo.CreateUser(newUser); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create user", "server_error")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", FilterUserRecord(newUser, user.RoleMember))
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for access and refresh tokens.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200  {object} responses.Envelope{data=AuthResponse}
// @Failure      401  {object} responses.Envelope
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	u, err := ac.repo.GetUserByUsername(req.Username)
	if err != nil {
		responses.Unauthorized(c, "Invalid credentials", "unauthorized")
		return
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		responses.Unauthorized(c, "Invalid credentials", "unauthorized")
		return
	}

	role, err := ac.resolveRole(u.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to resolve role", "server_error")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID, role)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue tokens", "server_error")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Login successful", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u, role),
	})
}

// RefreshToken godoc
// @Summary      Rotate tokens
// @Description  Exchanges a valid refresh token for a new token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object} responses.Envelope{data=AuthResponse}
// @Failure      401  {object} responses.Envelope
// @Router       /auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BindError(c, err)
		return
	}

	claims, err := token.ValidateJWT(req.RefreshToken, ac.config.JWT.RefreshTokenSecret)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			responses.Unauthorized(c, "Refresh token has expired", "token_expired")
			return
		}
		responses.Unauthorized(c, "Invalid refresh token", "token_invalid")
		return
	}

	u, err := ac.repo.GetUserByID(claims.UserID)
	if err != nil {
		responses.Unauthorized(c, "User not found", "unauthorized")
		return
	}
	// The stored token must match; rotation invalidates older tokens.
	if u.RefreshToken != req.RefreshToken {
		responses.Unauthorized(c, "Refresh token has been revoked", "token_invalid")
		return
	}

	role, err := ac.resolveRole(u.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to resolve role", "server_error")
		return
	}

	accessToken, refreshToken, err := ac.generateAndSaveTokens(u.ID, role)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue tokens", "server_error")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Token refreshed", AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FilterUserRecord(u, role),
	})
}

// GetProfile godoc
// @Summary      Current user profile
// @Tags         Auth
// @Produce      json
// @Success      200  {object} responses.Envelope{data=UserResponse}
// @Failure      401  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /auth/me [get]
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil {
		responses.NotFound(c, "User")
		return
	}

	role, err := ac.resolveRole(u.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to resolve role", "server_error")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Profile retrieved", FilterUserRecord(u, role))
}
