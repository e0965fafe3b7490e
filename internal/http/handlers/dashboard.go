package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), dashboard: dashboard}
}

// GET /api/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	d, err := h.dashboard.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, d)
}
