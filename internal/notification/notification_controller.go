package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeonwoo-k/teamup/internal/middleware"
	"github.com/yeonwoo-k/teamup/pkg/responses"
)

// NotificationController handles the read side: listing, unread counts and
// read-flag flips. Emission happens inside the team and match components.
type NotificationController struct {
	repo NotificationRepository
}

func NewNotificationController(repo NotificationRepository) *NotificationController {
	return &NotificationController{repo: repo}
}

// ListNotifications godoc
// @Summary      List the caller's notifications
// @Tags         Notifications
// @Produce      json
// @Param        limit  query  int     false  "max rows (default 20)"
// @Param        read   query  bool    false  "filter by read state"
// @Success      200  {object} responses.Envelope{data=[]Notification}
// @Security     ApiKeyAuth
// @Router       /notifications [get]
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	var read *bool
	if raw := c.Query("read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			responses.BadRequest(c, "read must be true or false")
			return
		}
		read = &v
	}

	list, err := nc.repo.GetByUser(userID, limit, read)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to fetch notifications", "server_error")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Notifications retrieved", list)
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         Notifications
// @Produce      json
// @Success      200  {object} responses.Envelope{data=UnreadCountResponse}
// @Security     ApiKeyAuth
// @Router       /notifications/unread-count [get]
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	count, err := nc.repo.CountUnread(userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to count notifications", "server_error")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Unread count retrieved", UnreadCountResponse{Unread: count})
}

// MarkRead godoc
// @Summary      Mark one notification as read
// @Tags         Notifications
// @Produce      json
// @Param        notification_id  path  uint  true  "Notification ID"
// @Success      200  {object} responses.Envelope{data=Notification}
// @Failure      404  {object} responses.Envelope
// @Security     ApiKeyAuth
// @Router       /notifications/{notification_id}/read [patch]
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	id, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		responses.BadRequest(c, "Invalid notification ID")
		return
	}

	n, err := nc.repo.MarkRead(uint(id), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.NotFound(c, "Notification")
			return
		}
		responses.SendError(c, http.StatusInternalServerError, "Failed to update notification", "server_error")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Notification marked as read", n)
}

// MarkAllRead godoc
// @Summary      Mark every notification as read
// @Tags         Notifications
// @Produce      json
// @Success      200  {object} responses.Envelope{data=MarkAllReadResponse}
// @Security     ApiKeyAuth
// @Router       /notifications/read-all [patch]
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "User not authenticated", "unauthorized")
		return
	}

	updated, err := nc.repo.MarkAllRead(userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to update notifications", "server_error")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "All notifications marked as read", MarkAllReadResponse{Updated: updated})
}
