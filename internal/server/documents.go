package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"adaptgrant/internal/storage"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

type documentUploadForm struct {
	DocumentType string `form:"document_type"`
}

// ownedApplication resolves the caller's applicant and checks that it owns
// applicationID.
func (s *Service) ownedApplication(ctx context.Context, r *http.Request) (*types.Applicant, *types.Application, error) {
	applicant, err := s.store.Applicants.ApplicantByUserID(ctx, s.identity(r).UserID)
	if err != nil {
		return nil, nil, err
	}

	application, err := s.store.Applications.Application(ctx, r.PathValue("applicationID"))
	if err != nil {
		return nil, nil, err
	}
	if application.ApplicantID != applicant.ID {
		return nil, nil, types.ErrApplicationNotFound
	}

	return applicant, application, nil
}

func (s *Service) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*requestTimeout)
	defer cancel()

	_, application, err := s.ownedApplication(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load application for upload")
		return
	}
	if application.Status != types.ApplicationStatusDraft {
		s.failErr(w, r, errApplicationLocked, "upload to submitted application")
		return
	}

	// allow some headroom for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, s.documents.MaxBytes()+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.failErr(w, r, storage.ErrTooLarge, "upload too large")
			return
		}
		s.failErr(w, r, errBadRequest("invalid multipart form"), "failed to parse upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var meta documentUploadForm
	if err := decoder.Decode(&meta, r.MultipartForm.Value); err != nil {
		s.failErr(w, r, errBadRequest("invalid upload fields"), "failed to decode upload form")
		return
	}
	meta.DocumentType = strings.TrimSpace(meta.DocumentType)
	if meta.DocumentType == "" {
		meta.DocumentType = types.DocTypeOther
	}
	if !slices.Contains(types.DocumentTypes, meta.DocumentType) {
		s.failErr(w, r, errBadRequest("unknown document_type %q", meta.DocumentType), "invalid document type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.failErr(w, r, errBadRequest("file is required"), "upload without file")
		return
	}
	defer file.Close()

	if err := s.documents.CheckSize(header.Size); err != nil {
		s.failErr(w, r, err, "rejected upload size")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.failErr(w, r, err, "failed to read upload")
		return
	}
	contentType, err := storage.ContentType(head[:n], header.Filename)
	if err != nil {
		s.failErr(w, r, err, "rejected upload type")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.failErr(w, r, err, "failed to rewind upload")
		return
	}

	doc := &types.ApplicationDocument{
		ID:            utils.NanoID(),
		ApplicationID: application.ID,
		UserID:        s.identity(r).UserID,
		DocumentType:  meta.DocumentType,
		FileName:      storage.SafeFileName(header.Filename),
		FileSizeBytes: header.Size,
		MimeType:      contentType,
	}
	doc.StorageKey = storage.ObjectKey(application.ID, doc.ID, header.Filename)

	if err := s.documents.Upload(ctx, doc.StorageKey, file, header.Size, contentType); err != nil {
		s.failErr(w, r, err, "failed to store document")
		return
	}

	if err := s.store.Documents.Create(ctx, doc); err != nil {
		if delErr := s.documents.Delete(ctx, doc.StorageKey); delErr != nil {
			s.logger.WithError(delErr).WithField("storage_key", doc.StorageKey).Error("failed to remove orphaned document")
		}
		s.failErr(w, r, err, "failed to record document")
		return
	}

	s.ok(w, http.StatusCreated, doc)
}

func (s *Service) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, application, err := s.ownedApplication(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load application documents")
		return
	}

	docs, err := s.store.Documents.DocumentsByApplication(ctx, application.ID)
	if err != nil {
		s.failErr(w, r, err, "failed to list documents")
		return
	}

	s.ok(w, http.StatusOK, docs)
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, application, err := s.ownedApplication(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load application document")
		return
	}

	doc, err := s.store.Documents.Document(ctx, application.ID, r.PathValue("documentID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load document")
		return
	}

	url, err := s.documents.DownloadURL(ctx, doc.StorageKey, doc.FileName)
	if err != nil {
		s.failErr(w, r, err, "failed to presign document")
		return
	}

	s.ok(w, http.StatusOK, map[string]any{
		"document":    doc,
		"downloadUrl": url,
		"expiresIn":   int(storage.DownloadURLExpiry.Seconds()),
	})
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	_, application, err := s.ownedApplication(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load application document")
		return
	}
	if application.Status != types.ApplicationStatusDraft {
		s.failErr(w, r, errApplicationLocked, "delete from submitted application")
		return
	}

	doc, err := s.store.Documents.Document(ctx, application.ID, r.PathValue("documentID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load document")
		return
	}

	if err := s.documents.Delete(ctx, doc.StorageKey); err != nil {
		s.failErr(w, r, err, "failed to delete document from storage")
		return
	}

	if err := s.store.Documents.Delete(ctx, application.ID, doc.ID); err != nil {
		s.failErr(w, r, err, "failed to delete document record")
		return
	}

	s.ok(w, http.StatusOK, nil)
}
