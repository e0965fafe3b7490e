package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

// ShortlistHandler serves the shortlist and the lock endpoints.
type ShortlistHandler struct {
	log       *logger.Logger
	shortlist services.ShortlistService
}

func NewShortlistHandler(log *logger.Logger, shortlist services.ShortlistService) *ShortlistHandler {
	return &ShortlistHandler{log: log.With("handler", "ShortlistHandler"), shortlist: shortlist}
}

// GET /api/shortlist
func (h *ShortlistHandler) List(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.shortlist.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"shortlist": items, "count": len(items)})
}

// POST /api/shortlist/:university_id
func (h *ShortlistHandler) Add(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	uniID, ok := pathID(c, "university_id")
	if !ok {
		return
	}
	res, err := h.shortlist.Add(c.Request.Context(), userID, uniID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, res)
}

// DELETE /api/shortlist/:university_id
func (h *ShortlistHandler) Remove(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	uniID, ok := pathID(c, "university_id")
	if !ok {
		return
	}
	if err := h.shortlist.Remove(c.Request.Context(), userID, uniID); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/lock
func (h *ShortlistHandler) GetLock(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.shortlist.GetLock(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/lock/:university_id
func (h *ShortlistHandler) Lock(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	uniID, ok := pathID(c, "university_id")
	if !ok {
		return
	}
	res, err := h.shortlist.Lock(c.Request.Context(), userID, uniID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, res)
}

// DELETE /api/lock
func (h *ShortlistHandler) Unlock(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.shortlist.Unlock(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
