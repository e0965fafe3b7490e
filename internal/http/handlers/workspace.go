package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/domain/workspace"
	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/services"
)

// WorkspaceHandler serves the free-form tasks, documents and SOP drafts.
type WorkspaceHandler struct {
	log       *logger.Logger
	tasks     services.TaskService
	documents services.DocumentService
	sop       services.SOPService
}

func NewWorkspaceHandler(
	log *logger.Logger,
	tasks services.TaskService,
	documents services.DocumentService,
	sop services.SOPService,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		log:       log.With("handler", "WorkspaceHandler"),
		tasks:     tasks,
		documents: documents,
		sop:       sop,
	}
}

// GET /api/tasks
func (h *WorkspaceHandler) ListTasks(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks})
}

// POST /api/tasks
func (h *WorkspaceHandler) CreateTask(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req services.TaskInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"task": task})
}

// PUT /api/tasks/:id
func (h *WorkspaceHandler) UpdateTask(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.TaskInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

// DELETE /api/tasks/:id
func (h *WorkspaceHandler) DeleteTask(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/documents
func (h *WorkspaceHandler) ListDocuments(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	docs, err := h.documents.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// POST /api/documents (multipart: file, document_type, notes, is_final, checklist_item_id)
func (h *WorkspaceHandler) UploadDocument(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(workspace.MaxDocumentBytes + 1<<20); err != nil {
		response.RespondErr(c, h.log, apierr.Validation("invalid multipart form"))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondErr(c, h.log, apierr.Validation("file is required"))
		return
	}
	if fh.Size > workspace.MaxDocumentBytes {
		response.RespondErr(c, h.log, apierr.Validation("file exceeds the %d MB limit", workspace.MaxDocumentBytes>>20))
		return
	}

	in := services.UploadInput{
		FileName:     fh.Filename,
		DocumentType: c.PostForm("document_type"),
		Notes:        c.PostForm("notes"),
	}
	if raw := strings.TrimSpace(c.PostForm("is_final")); raw != "" {
		if in.IsFinal, err = strconv.ParseBool(raw); err != nil {
			response.RespondErr(c, h.log, apierr.Validation("is_final must be a boolean"))
			return
		}
	}
	if raw := strings.TrimSpace(c.PostForm("checklist_item_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondErr(c, h.log, apierr.Validation("invalid checklist_item_id"))
			return
		}
		in.ChecklistItemID = &id
	}

	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, h.log, apierr.Validation("file is unreadable"))
		return
	}
	defer f.Close()
	in.Body = f

	doc, err := h.documents.Upload(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

// DELETE /api/documents/:id
func (h *WorkspaceHandler) DeleteDocument(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), userID, docID); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/sop
func (h *WorkspaceHandler) ListSOP(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	drafts, err := h.sop.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"drafts": drafts})
}

// POST /api/sop
func (h *WorkspaceHandler) CreateSOP(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req services.SOPInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	draft, err := h.sop.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"draft": draft})
}

// PUT /api/sop/:id
func (h *WorkspaceHandler) UpdateSOP(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SOPInput
	if !bindJSON(c, h.log, &req) {
		return
	}
	draft, err := h.sop.Update(c.Request.Context(), userID, draftID, req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": draft})
}

// DELETE /api/sop/:id
func (h *WorkspaceHandler) DeleteSOP(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sop.Delete(c.Request.Context(), userID, draftID); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/sop/generate
// body: { "prompt": "..." }
func (h *WorkspaceHandler) GenerateSOP(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !bindJSON(c, h.log, &req) {
		return
	}
	draft, err := h.sop.Generate(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"draft": draft})
}
