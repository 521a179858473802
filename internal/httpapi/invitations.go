package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

// POST /api/invitations  {receiver_id, team_id, role}
func CreateInvitation(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ReceiverID int64  `json:"receiver_id"`
			TeamID     int64  `json:"team_id"`
			Role       string `json:"role"`
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
		inv, err := svc.CreateInvitation(c.Request.Context(), actorOf(c).UserID, req.ReceiverID, req.TeamID, role)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

// GET /api/invitations
func ListInvitations(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		invs, err := svc.ListInvitations(c.Request.Context(), actorOf(c))
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, invs)
	}
}

// GET /api/invitations/:id
func GetInvitation(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		inv, err := svc.GetInvitation(c.Request.Context(), actorOf(c), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// parseDecision maps "accept"/"decline" in any case onto a final status.
func parseDecision(s string) (portal.InvitationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "accepted":
		return portal.InvitationAccepted, true
	case "decline", "declined":
		return portal.InvitationDeclined, true
	}
	return "", false
}

// POST /api/invitations/:id/respond  {decision}
func RespondToInvitation(svc *portal.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Decision string `json:"decision"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		decision, ok := parseDecision(req.Decision)
		if !ok {
			badRequest(c, "decision must be accept or decline")
			return
		}
		inv, err := svc.RespondToInvitation(c.Request.Context(), id, actorOf(c).UserID, decision)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}
