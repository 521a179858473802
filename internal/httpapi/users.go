package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

// GET /api/me
func Me(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.GetUser(c.Request.Context(), actorOf(c).UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// PATCH /api/me  {handle?, password?}
func UpdateMe(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Handle   *string `json:"handle"`
			Password *string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		a := actorOf(c)
		u, err := svc.UpdateProfile(c.Request.Context(), a, a.UserID, req.Handle, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// GET /api/users?q=
func ListUsers(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.SearchUsers(c.Request.Context(), c.Query("q"))
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// GET /api/users/:id
func GetUser(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		u, err := svc.GetUser(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// GET /api/notifications?user_id=
func ListNotifications(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := actorOf(c)
		userID := a.UserID
		if c.Query("user_id") != "" {
			id, ok := queryID(c, "user_id")
			if !ok {
				return
			}
			userID = id
		}
		ns, err := svc.Notifications(c.Request.Context(), a, userID)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, ns)
	}
}
