package server

import (
	"net/http"

	"secmaster/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(err error) int {
	switch helpers.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "canceled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	s.Logger.Error("%s %s failed (%s): %v", c.Request.Method, c.Request.URL.Path, helpers.Kind(err), err)
	c.JSON(status, gin.H{"error": http.StatusText(status), "kind": helpers.Kind(err)})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
