package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/srms/internal/response"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// InfoHandler serves the unauthenticated service description endpoints.
type InfoHandler struct{}

func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

// Root godoc
// GET /
// Describes the API and its top-level endpoints.
func (h *InfoHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, "Student Result Management System API", gin.H{
		"name":    "Student Result Management System API",
		"version": Version,
		"status":  "running",
		"endpoints": gin.H{
			"auth":     "/api/v1/auth",
			"students": "/api/v1/students",
			"courses":  "/api/v1/courses",
			"results":  "/api/v1/results",
			"stream":   "/ws/v1/results/stream",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

// Health godoc
// GET /health
func (h *InfoHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "OK", gin.H{"status": "ok"})
}

// NotFound answers unmatched routes.
func (h *InfoHandler) NotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.ErrEndpointNotFound)
}

// MethodNotAllowed answers known paths requested with the wrong verb.
func (h *InfoHandler) MethodNotAllowed(c *gin.Context) {
	response.Fail(c, http.StatusMethodNotAllowed, response.ErrMethodNotAllowed)
}
