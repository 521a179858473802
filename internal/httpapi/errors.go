package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

var statusByKind = map[error]int{
	portal.ErrConflict:        http.StatusConflict,
	portal.ErrForbidden:       http.StatusForbidden,
	portal.ErrInvalidState:    http.StatusUnprocessableEntity,
	portal.ErrOutOfWindow:     http.StatusUnprocessableEntity,
	portal.ErrNotFound:        http.StatusNotFound,
	portal.ErrInvalidArgument: http.StatusBadRequest,
	portal.ErrUnauthenticated: http.StatusUnauthorized,
}

func statusFor(err error) int {
	if code, ok := statusByKind[portal.Kind(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Unexpected errors are logged and their
// text is not sent to the client.
func fail(c *gin.Context, log *logger.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if kind := portal.Kind(err); kind != nil {
		body["kind"] = strings.ReplaceAll(kind.Error(), " ", "_")
	}
	c.JSON(code, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses a positive int64 path parameter, answering 400 when it is
// malformed.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "bad "+name)
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "bad "+name)
		return 0, false
	}
	return id, true
}
