package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type CounsellorHandler struct {
	log        *logger.Logger
	counsellor services.CounsellorService
}

func NewCounsellorHandler(log *logger.Logger, counsellor services.CounsellorService) *CounsellorHandler {
	return &CounsellorHandler{log: log.With("handler", "CounsellorHandler"), counsellor: counsellor}
}

// POST /api/counsellor/chat
func (h *CounsellorHandler) Chat(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req services.ChatInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.counsellor.Chat(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/counsellor/history
func (h *CounsellorHandler) History(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.counsellor.History(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/counsellor/new
func (h *CounsellorHandler) NewConversation(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.counsellor.NewConversation(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, res)
}
