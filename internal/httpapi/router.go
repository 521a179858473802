// Package httpapi exposes the portal over HTTP with gin.
package httpapi

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/evidence"
	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
	"legend-hub/internal/session"
)

type Deps struct {
	Service         *portal.Service
	Sessions        *session.Manager
	Evidence        *evidence.Store
	Log             *logger.Logger
	CookieSecure    bool
	LoginRatePerMin int
	StaticDir       string
}

func NewRouter(d Deps) *gin.Engine {
	svc, log := d.Service, d.Log
	cookie := cookieSettings{secure: d.CookieSecure, maxAge: int(d.Sessions.TTL().Seconds())}
	limit := RateLimit(newIPLimiter(d.LoginRatePerMin))
	auth := Auth(d.Sessions)

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
		r.GET("/", func(c *gin.Context) { c.File(filepath.Join(d.StaticDir, "index.html")) })
		for _, page := range []string{"login", "register", "dashboard", "tournaments"} {
			file := filepath.Join(d.StaticDir, page+".html")
			r.GET("/"+page, func(c *gin.Context) { c.File(file) })
		}
	}
	if d.Evidence != nil {
		r.Static("/media", d.Evidence.Root())
	}

	api := r.Group("/api")
	{
		api.POST("/auth/register", limit, Register(svc, d.Sessions, cookie, log))
		api.POST("/auth/login", limit, Login(svc, d.Sessions, cookie, log))
		api.POST("/auth/logout", auth, Logout(d.Sessions, cookie, log))
		api.DELETE("/auth/session", auth, Logout(d.Sessions, cookie, log))

		api.GET("/me", auth, Me(svc, log))
		api.PATCH("/me", auth, UpdateMe(svc, log))
		api.GET("/users", auth, ListUsers(svc, log))
		api.GET("/users/:id", auth, GetUser(svc, log))

		// teams
		api.POST("/teams", auth, CreateTeam(svc, log))
		api.GET("/teams", auth, ListTeams(svc, log))
		api.GET("/teams/:id", auth, GetTeam(svc, log))
		api.PATCH("/teams/:id", auth, RenameTeam(svc, log))
		api.DELETE("/teams/:id", auth, DeleteTeam(svc, log))
		api.DELETE("/teams/:id/roles/:role", auth, RemoveRole(svc, log))
		api.GET("/my/team", auth, MyTeam(svc, log))

		// invitations
		api.POST("/invitations", auth, CreateInvitation(svc, log))
		api.GET("/invitations", auth, ListInvitations(svc, log))
		api.GET("/invitations/:id", auth, GetInvitation(svc, log))
		api.POST("/invitations/:id/respond", auth, RespondToInvitation(svc, log))
		api.GET("/notifications", auth, ListNotifications(svc, log))

		// tournaments and fixtures (finalized lazily on read)
		api.GET("/tournaments", auth, ListTournaments(svc, log))
		api.GET("/tournaments/:id", auth, GetTournament(svc, log))
		api.POST("/tournaments/:id/register", auth, RegisterTeam(svc, log))
		api.GET("/tournaments/:id/fixtures", auth, ListFixtures(svc, log))
		api.GET("/tournaments/:id/standings", auth, Standings(svc, log))
		api.GET("/fixtures/:id", auth, GetFixture(svc, log))
		api.POST("/fixtures/:id/vote", auth, CastVote(svc, log))
		api.POST("/fixtures/:id/evidence", auth, UploadEvidence(svc, d.Evidence, log))

		// admin
		admin := api.Group("/admin", auth, RequireStaff())
		admin.POST("/tournaments", AdminCreateTournament(svc, log))
		admin.GET("/tournaments/:id/registrations", AdminRegistrations(svc, log))
		admin.POST("/tournaments/:id/schedule", AdminAutoSchedule(svc, log))
		admin.POST("/fixtures", AdminScheduleFixture(svc, log))
		admin.POST("/teams/:id/add-user", AdminAddUser(svc, log))
		admin.GET("/users", ListUsers(svc, log))
		admin.POST("/users/:id/staff", AdminSetStaff(svc, log))
		admin.GET("/logs", AdminLogs(svc, log))
	}

	return r
}
