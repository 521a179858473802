package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

// ------------------- Admin: tournaments -------------------

// POST /api/admin/tournaments  {title, start_time, end_time, limit}
func AdminCreateTournament(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title     string    `json:"title"`
			StartTime time.Time `json:"start_time"`
			EndTime   time.Time `json:"end_time"`
			Limit     int       `json:"limit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		t, err := svc.CreateTournament(c.Request.Context(), actorOf(c), req.Title, req.StartTime, req.EndTime, req.Limit)
		if err != nil {
			fail(c, log, err)
			return
		}
		log.Audit("tournament created", "by", actorOf(c).UserID, "tournament_id", t.ID)
		c.JSON(http.StatusCreated, t)
	}
}

// GET /api/admin/tournaments/:id/registrations
func AdminRegistrations(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		regs, err := svc.Registrations(c.Request.Context(), actorOf(c), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, regs)
	}
}

// POST /api/admin/tournaments/:id/schedule  {first, spacing}
// spacing is a Go duration such as "2h".
func AdminAutoSchedule(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			First   time.Time `json:"first"`
			Spacing string    `json:"spacing"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		spacing, err := time.ParseDuration(req.Spacing)
		if err != nil {
			badRequest(c, "bad spacing")
			return
		}
		fs, err := svc.AutoSchedule(c.Request.Context(), actorOf(c), id, req.First, spacing)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, fs)
	}
}

// POST /api/admin/fixtures  {tournament_id, team_1_id, team_2_id, time}
func AdminScheduleFixture(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TournamentID int64     `json:"tournament_id"`
			Team1ID      int64     `json:"team_1_id"`
			Team2ID      int64     `json:"team_2_id"`
			Time         time.Time `json:"time"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		f, err := svc.ScheduleFixture(c.Request.Context(), actorOf(c), req.TournamentID, req.Team1ID, req.Team2ID, req.Time)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, f)
	}
}

// ------------------- Admin: people -------------------

// POST /api/admin/teams/:id/add-user  {user_id, role}
func AdminAddUser(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			UserID int64  `json:"user_id"`
			Role   string `json:"role"`
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
		t, err := svc.AddRole(c.Request.Context(), actorOf(c), id, req.UserID, role)
		if err != nil {
			fail(c, log, err)
			return
		}
		log.Audit("player seated by staff", "by", actorOf(c).UserID, "team_id", id, "user_id", req.UserID, "role", role)
		c.JSON(http.StatusOK, t)
	}
}

// POST /api/admin/users/:id/staff  {staff}
func AdminSetStaff(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Staff bool `json:"staff"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		u, err := svc.SetStaff(c.Request.Context(), actorOf(c), id, req.Staff)
		if err != nil {
			fail(c, log, err)
			return
		}
		log.Audit("staff rights changed", "by", actorOf(c).UserID, "user_id", id, "staff", req.Staff)
		c.JSON(http.StatusOK, u)
	}
}

// GET /api/admin/logs?limit=
func AdminLogs(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err := svc.AuditLog(c.Request.Context(), actorOf(c), limit)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
