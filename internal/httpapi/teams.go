package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

// POST /api/teams  {name, role}
func CreateTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
			Role string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		role, err := portal.ParseRole(req.Role)
		if err != nil {
			fail(c, log, err)
			return
		}
		t, err := svc.CreateTeam(c.Request.Context(), actorOf(c).UserID, req.Name, role)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// GET /api/teams
func ListTeams(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts, err := svc.ListTeams(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, ts)
	}
}

// GET /api/teams/:id
func GetTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		v, err := svc.GetTeam(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// GET /api/my/team
func MyTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.TeamForUser(c.Request.Context(), actorOf(c).UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// PATCH /api/teams/:id  {name}
func RenameTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		t, err := svc.RenameTeam(c.Request.Context(), actorOf(c), id, req.Name)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// DELETE /api/teams/:id
func DeleteTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteTeam(c.Request.Context(), actorOf(c), id); err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /api/teams/:id/roles/:role
func RemoveRole(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		role, err := portal.ParseRole(c.Param("role"))
		if err != nil {
			fail(c, log, err)
			return
		}
		t, err := svc.RemoveRole(c.Request.Context(), actorOf(c), id, role)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}
