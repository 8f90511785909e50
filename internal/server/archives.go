package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alnah/go-coa2pdf/internal/blob"
)

// archiveList is the body of GET /archives.
type archiveList struct {
	Prefix   string      `json:"prefix"`
	Archives []blob.Info `json:"archives"`
}

// handleListArchives lists stored archives under ?prefix=, defaulting to
// the configured sink prefix.
func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	if !s.requireSink(w) {
		return
	}
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = s.archivePrefix()
	}
	list, err := s.sink.List(r.Context(), prefix)
	if err != nil {
		s.archiveFailure(w, r, "listing archives", err)
		return
	}
	respondJSON(w, http.StatusOK, archiveList{Prefix: prefix, Archives: list})
}

// handleGetArchive streams one stored archive.
func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	if !s.requireSink(w) {
		return
	}
	info, rc, err := s.sink.Get(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		s.archiveFailure(w, r, "reading archive", err)
		return
	}
	defer rc.Close()

	setArchiveHeaders(w, info)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("streaming archive", zap.String("key", info.Key), zap.Error(err))
	}
}

// handleHeadArchive reports archive metadata without a body.
func (s *Server) handleHeadArchive(w http.ResponseWriter, r *http.Request) {
	if !s.requireSink(w) {
		return
	}
	info, err := s.sink.Head(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		s.archiveFailure(w, r, "reading archive", err)
		return
	}
	setArchiveHeaders(w, info)
	w.WriteHeader(http.StatusOK)
}

// handleDeleteArchive removes one stored archive.
func (s *Server) handleDeleteArchive(w http.ResponseWriter, r *http.Request) {
	if !s.requireSink(w) {
		return
	}
	key := chi.URLParam(r, "*")
	ok, err := s.sink.Delete(r.Context(), key)
	if err != nil {
		s.archiveFailure(w, r, "deleting archive", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Archive not found", key)
		return
	}
	s.logger.Info("archive deleted", zap.String("requestId", requestID(r)), zap.String("key", key))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireSink(w http.ResponseWriter) bool {
	if s.sink == nil {
		respondError(w, http.StatusNotFound, "No archive sink configured", nil)
		return false
	}
	return true
}

func (s *Server) archivePrefix() string {
	if s.prefix != "" {
		return s.prefix
	}
	return blob.DefaultArchivePrefix
}

// archiveFailure maps sink errors to status codes.
func (s *Server) archiveFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, blob.ErrNotFound):
		respondError(w, http.StatusNotFound, "Archive not found", chi.URLParam(r, "*"))
	case errors.Is(err, blob.ErrInvalidKey):
		respondError(w, http.StatusBadRequest, "Invalid archive key", err.Error())
	default:
		s.logger.Error(msg,
			zap.String("requestId", requestID(r)),
			zap.String("driver", string(s.sink.Driver())),
			zap.Error(err),
		)
		respondError(w, http.StatusBadGateway, "Archive sink unavailable", err.Error())
	}
}

func setArchiveHeaders(w http.ResponseWriter, info blob.Info) {
	ct := info.ContentType
	if ct == "" {
		ct = blob.ArchiveContentType
	}
	name := info.Metadata["filename"]
	if name == "" {
		name = path.Base(info.Key)
	}
	h := w.Header()
	h.Set("Content-Type", ct)
	h.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	h.Set(HeaderArchiveKey, info.Key)
	if !info.LastModified.IsZero() {
		h.Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	}
	if info.ETag != "" {
		h.Set("ETag", info.ETag)
	}
}
