package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/srms/internal/response"
	"github.com/stemsi/srms/internal/service"
)

// DashboardHandler serves the admin dashboard aggregate.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats godoc
// GET /api/v1/results/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
}
