package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

type ChecklistHandler struct {
	log       *logger.Logger
	checklist services.ChecklistService
}

func NewChecklistHandler(log *logger.Logger, checklist services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{log: log.With("handler", "ChecklistHandler"), checklist: checklist}
}

// POST /api/checklist/initialize
func (h *ChecklistHandler) Initialize(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.checklist.Initialize(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/checklist
func (h *ChecklistHandler) List(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.checklist.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// PUT /api/checklist/:item_id
// body: { "status": "SUBMITTED", "notes": "..." }
func (h *ChecklistHandler) Update(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.checklist.SetStatus(c.Request.Context(), userID, itemID, req.Status, req.Notes)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/checklist/complete/:item_name
func (h *ChecklistHandler) Complete(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	res, err := h.checklist.Complete(c.Request.Context(), userID, c.Param("item_name"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
