package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legend-hub/internal/evidence"
	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

// GET /api/tournaments
func ListTournaments(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts, err := svc.ListTournaments(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, ts)
	}
}

// GET /api/tournaments/:id
func GetTournament(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		v, err := svc.GetTournament(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// POST /api/tournaments/:id/register  {team_id}
func RegisterTeam(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			TeamID int64 `json:"team_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.TeamID <= 0 {
			badRequest(c, "team_id is required")
			return
		}
		reg, err := svc.Register(c.Request.Context(), req.TeamID, id, actorOf(c).UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, reg)
	}
}

// GET /api/tournaments/:id/fixtures
func ListFixtures(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		fs, err := svc.ListFixtures(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, fs)
	}
}

// GET /api/tournaments/:id/standings
func Standings(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		st, err := svc.Standings(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// GET /api/fixtures/:id
func GetFixture(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		f, err := svc.GetFixture(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// POST /api/fixtures/:id/vote  {side}
func CastVote(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Side portal.Side `json:"side"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		f, err := svc.CastVote(c.Request.Context(), id, actorOf(c).UserID, req.Side)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// POST /api/fixtures/:id/evidence  multipart: image, side; header Idempotency-Key
//
// The image is written before the fixture is locked, so it is removed again
// when the upload fails or turns out to be a retry. An image displaced by a
// new key is removed too.
func UploadEvidence(svc *portal.Service, store *evidence.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads disabled"})
			return
		}
		var side portal.Side
		switch c.PostForm("side") {
		case "1":
			side = portal.SideTeam1
		case "2":
			side = portal.SideTeam2
		default:
			badRequest(c, "side must be 1 or 2")
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			badRequest(c, "image is required")
			return
		}
		if fh.Size > evidence.MaxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			key = uuid.NewString()
		}

		file, err := fh.Open()
		if err != nil {
			badRequest(c, "unreadable image")
			return
		}
		ref, err := store.Save(id, fh.Filename, file)
		file.Close()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		f, previous, err := svc.ReplaceEvidence(c.Request.Context(), id, actorOf(c).UserID, side, ref, key)
		unused := previous
		if err != nil || (f.Image1 != ref && f.Image2 != ref) {
			unused = ref
		}
		if unused != "" {
			if rmErr := store.Remove(unused); rmErr != nil {
				log.Warn("remove unused evidence", "ref", unused, "error", rmErr)
			}
		}
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, f)
	}
}
