package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type ProfileHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
}

func NewProfileHandler(log *logger.Logger, profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), profiles: profiles}
}

// GET /api/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	me, err := h.profiles.Me(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, me)
}

// POST /api/onboarding/complete
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req services.ProfileInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.profiles.CompleteOnboarding(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req services.ProfileInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}
