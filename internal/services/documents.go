package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/unibridge-backend/internal/data/repos"
	types "github.com/yungbote/unibridge-backend/internal/domain"
	"github.com/yungbote/unibridge-backend/internal/domain/journey"
	"github.com/yungbote/unibridge-backend/internal/domain/workspace"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/dbctx"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

// DocumentStore holds uploaded files. *gcp.BucketService and *localmedia.DiskStore satisfy it.
type DocumentStore interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type UploadInput struct {
	FileName        string
	DocumentType    string
	Notes           string
	IsFinal         bool
	ChecklistItemID *uuid.UUID
	Body            io.Reader
}

type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*types.ApplicationDocument, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.ApplicationDocument, error)
	Delete(ctx context.Context, userID, docID uuid.UUID) error
}

type documentService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	documents repos.DocumentRepo
	checklist repos.ChecklistRepo
	store     DocumentStore
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	documents repos.DocumentRepo,
	checklist repos.ChecklistRepo,
	store DocumentStore,
) DocumentService {
	return &documentService{
		db:        db,
		log:       log.With("service", "DocumentService"),
		users:     users,
		documents: documents,
		checklist: checklist,
		store:     store,
	}
}

func (s *documentService) Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*types.ApplicationDocument, error) {
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		return nil, apierr.Validation("document_type is required")
	}
	if in.Body == nil {
		return nil, apierr.Validation("file is required")
	}
	if _, err := loadAndGuard(dbctx.Context{Ctx: ctx}, s.users, userID, "upload document", journey.AfterOnboarding); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, workspace.MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apierr.Validation("file is empty")
	}
	if len(data) > workspace.MaxDocumentBytes {
		return nil, apierr.Validation("file exceeds the %d MB limit", workspace.MaxDocumentBytes>>20)
	}
	mime := sniffMime(data)
	ext, ok := workspace.AllowedDocumentTypes[mime]
	if !ok {
		return nil, apierr.Validation("unsupported file type %q (allowed: PDF, JPEG, PNG)", mime)
	}

	doc := &types.ApplicationDocument{
		ID:              uuid.New(),
		UserID:          userID,
		ChecklistItemID: in.ChecklistItemID,
		DocumentType:    docType,
		FileName:        cleanFileName(in.FileName, ext),
		FileSize:        int64(len(data)),
		MimeType:        mime,
		Notes:           strings.TrimSpace(in.Notes),
		IsFinal:         in.IsFinal,
	}
	doc.StorageKey = fmt.Sprintf("documents/%s/%s%s", userID, doc.ID, ext)

	if err := s.store.Upload(ctx, doc.StorageKey, mime, bytes.NewReader(data)); err != nil {
		s.log.Error("Document upload failed", "user_id", userID, "key", doc.StorageKey, "error", err)
		return nil, apierr.ProviderUnavailable("document storage is unavailable")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "upload document", journey.AfterOnboarding); err != nil {
			return err
		}
		if doc.ChecklistItemID != nil {
			item, err := s.checklist.GetForUser(dbc, userID, *doc.ChecklistItemID)
			if err != nil {
				return fmt.Errorf("load checklist item: %w", err)
			}
			if item == nil {
				return apierr.NotFound("checklist item not found")
			}
		}
		if err := s.documents.Create(dbc, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return nil
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, doc.StorageKey); delErr != nil {
			s.log.Warn("Orphaned document object", "key", doc.StorageKey, "error", delErr)
		}
		return nil, err
	}
	doc.URL = s.store.PublicURL(doc.StorageKey)
	return doc, nil
}

// sniffMime trusts the content, not the client's declared type.
func sniffMime(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func cleanFileName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "document" + ext
	}
	return name
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID) ([]*types.ApplicationDocument, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadAndGuard(dbc, s.users, userID, "list documents", journey.AfterOnboarding); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []*types.ApplicationDocument{}
	}
	for _, d := range docs {
		d.URL = s.store.PublicURL(d.StorageKey)
	}
	return docs, nil
}

func (s *documentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := lockAndGuard(dbc, s.users, userID, "delete document", journey.AfterOnboarding); err != nil {
			return err
		}
		doc, err := s.documents.GetForUser(dbc, userID, docID)
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}
		if doc == nil {
			return apierr.NotFound("document not found")
		}
		key = doc.StorageKey
		if err := s.documents.Delete(dbc, userID, docID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("Document object not deleted", "key", key, "error", err)
	}
	return nil
}
