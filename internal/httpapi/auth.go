package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
	"legend-hub/internal/session"
)

type cookieSettings struct {
	secure bool
	maxAge int
}

func (s cookieSettings) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, token, s.maxAge, "/", "", s.secure, true)
}

func (s cookieSettings) clear(c *gin.Context) {
	c.SetCookie(cookieName, "", -1, "/", "", s.secure, true)
}

// startSession issues a token for u, sets the cookie and answers with both.
func startSession(c *gin.Context, sessions *session.Manager, cookie cookieSettings, log *logger.Logger, code int, u portal.User) {
	tok, cl, err := sessions.Issue(u)
	if err != nil {
		fail(c, log, err)
		return
	}
	cookie.set(c, tok)
	c.JSON(code, gin.H{"user": u, "token": tok, "expires_at": cl.ExpiresAt.Time})
}

// POST /api/auth/register
func Register(svc *portal.Service, sessions *session.Manager, cookie cookieSettings, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Handle      string `json:"handle"`
			DisplayName string `json:"display_name"`
			Password    string `json:"password"`
			Password2   string `json:"password2"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		if req.Password != req.Password2 {
			badRequest(c, "passwords do not match")
			return
		}
		u, err := svc.RegisterUser(c.Request.Context(), req.Handle, req.DisplayName, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		startSession(c, sessions, cookie, log, http.StatusCreated, u)
	}
}

// POST /api/auth/login
func Login(svc *portal.Service, sessions *session.Manager, cookie cookieSettings, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Handle   string `json:"handle"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "bad json")
			return
		}
		u, err := svc.Authenticate(c.Request.Context(), req.Handle, req.Password)
		if err != nil {
			if portal.Kind(err) == portal.ErrUnauthenticated {
				log.Warn("login failed", "handle", req.Handle, "ip", c.ClientIP())
			}
			fail(c, log, err)
			return
		}
		log.WithUser(u.ID).Info("login", "ip", c.ClientIP())
		startSession(c, sessions, cookie, log, http.StatusOK, u)
	}
}

// POST /api/auth/logout, DELETE /api/auth/session
func Logout(sessions *session.Manager, cookie cookieSettings, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Revoke(c.Request.Context(), claimsOf(c)); err != nil {
			fail(c, log, err)
			return
		}
		cookie.clear(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
