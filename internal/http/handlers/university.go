package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type UniversityHandler struct {
	log  *logger.Logger
	pool services.CandidatePoolService
}

func NewUniversityHandler(log *logger.Logger, pool services.CandidatePoolService) *UniversityHandler {
	return &UniversityHandler{log: log.With("handler", "UniversityHandler"), pool: pool}
}

// GET /api/universities/discover
func (h *UniversityHandler) Discover(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.pool.Discover(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/universities/discover/refresh
func (h *UniversityHandler) Refresh(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.pool.Refresh(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
