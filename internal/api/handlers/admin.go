package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chat-presence/internal/directory"
	"chat-presence/internal/presence"
)

// AdminHandler serves the presence reporting endpoints. All reads go
// through the query facade so handlers never touch registry internals.
type AdminHandler struct {
	facade *presence.QueryFacade
	users  directory.Store
}

func NewAdminHandler(facade *presence.QueryFacade, users directory.Store) *AdminHandler {
	return &AdminHandler{
		facade: facade,
		users:  users,
	}
}

// GetOnlineUsers godoc
// @Summary      List online user IDs
// @Description  Returns the IDs of all users with at least one active connection
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/online-users [get]
func (h *AdminHandler) GetOnlineUsers(c *gin.Context) {
	onlineIDs := h.facade.OnlineUserIDs()
	c.JSON(http.StatusOK, gin.H{
		"onlineUsers": onlineIDs,
		"count":       len(onlineIDs),
		"timestamp":   time.Now().UTC(),
	})
}

// GetOnlineUsersDetailed godoc
// @Summary      List online users with directory details
// @Description  Joins the live presence snapshot against the user directory
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/online-users/detailed [get]
func (h *AdminHandler) GetOnlineUsersDetailed(c *gin.Context) {
	users, err := h.users.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user directory"})
		return
	}

	online := make(map[string]bool)
	for _, id := range h.facade.OnlineUserIDs() {
		online[id] = true
	}

	result := make([]directory.OnlineUserResponse, 0)
	for _, user := range users {
		if !online[strconv.FormatUint(uint64(user.ID), 10)] {
			continue
		}
		result = append(result, directory.OnlineUserResponse{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
			IsOnline:   true,
			LastSeenAt: user.LastSeenAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"onlineUsers": result,
		"count":       len(result),
		"timestamp":   time.Now().UTC(),
	})
}

// GetUserStatus godoc
// @Summary      Check a single user's presence
// @Description  Returns whether the user is online and how many connections they hold
// @Tags         admin
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/users/status/{userId} [get]
func (h *AdminHandler) GetUserStatus(c *gin.Context) {
	userID := c.Param("userId")

	response := gin.H{
		"userId":          userID,
		"isOnline":        h.facade.IsOnline(userID),
		"connectionCount": len(h.facade.ConnectionsOf(userID)),
		"timestamp":       time.Now().UTC(),
	}

	if id, err := strconv.ParseUint(userID, 10, 64); err == nil {
		if user, err := h.users.FindByID(uint(id)); err == nil {
			response["userName"] = user.Name
			response["lastSeenAt"] = user.LastSeenAt
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetStats godoc
// @Summary      Presence statistics
// @Description  Returns total, online and offline user counts
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	total, err := h.users.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count users"})
		return
	}

	onlineCount := int64(h.facade.OnlineCount())
	offline := total - onlineCount
	if offline < 0 {
		offline = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":   total,
		"onlineUsers":  onlineCount,
		"offlineUsers": offline,
		"timestamp":    time.Now().UTC(),
	})
}
