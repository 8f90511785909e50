package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/blob"
)

// Response headers set by /export when an archive sink is configured.
const (
	HeaderArchiveKey = "X-Archive-Key"
	HeaderArchiveURL = "X-Archive-URL"
)

type exportRequest struct {
	COAs    []coa2pdf.COA         `json:"coas"`
	Options coa2pdf.RenderOptions `json:"options"`
}

type singleRequest struct {
	COA     *coa2pdf.COA          `json:"coa"`
	Options coa2pdf.RenderOptions `json:"options"`
}

type ingestRequest struct {
	Text string `json:"text"`
}

type ingestResponse struct {
	COAs   []coa2pdf.COA `json:"coas"`
	NextID uint64        `json:"nextId"`
}

// singleEndpoint describes one of the two single-document routes.
type singleEndpoint struct {
	name     string
	filename string
	failure  string
}

var (
	singleFilename  = singleEndpoint{name: "single", filename: "COA.pdf", failure: "Single export failed"}
	previewFilename = singleEndpoint{name: "preview", filename: "COA_Preview.pdf", failure: "Preview generation failed"}
)

// handleExport renders a batch and returns it as a ZIP download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.COAs) == 0 {
		respondError(w, http.StatusBadRequest, "No COAs provided", nil)
		return
	}
	if !checkStatuses(w, req.COAs) {
		return
	}
	if s.enforceGate {
		if err := coa2pdf.CheckExport(req.COAs, req.Options.CertifiedBy); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "Export not allowed", err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.exportTimeout)
	defer cancel()
	release, ok := s.acquire(ctx, w)
	if !ok {
		return
	}
	defer release()

	opts := req.Options
	opts.Date = s.conv.Now()

	s.logger.Info("export started",
		zap.String("requestId", requestID(r)),
		zap.Int("records", len(req.COAs)),
	)
	var buf bytes.Buffer
	summary, err := s.conv.Export(ctx, &buf, req.COAs, opts)
	if err != nil {
		s.fail(w, r, "export", "Export failed", err)
		return
	}
	s.metrics.documents.Add(float64(summary.Documents))
	s.metrics.archiveBytes.Observe(float64(buf.Len()))

	name := coa2pdf.ArchiveName(summary.Date)
	if s.sink != nil {
		s.storeArchive(ctx, w, r, buf.Bytes(), summary)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// storeArchive keeps a copy of the archive in the sink. A failing sink
// never fails the download; the headers are just left out.
func (s *Server) storeArchive(ctx context.Context, w http.ResponseWriter, r *http.Request, data []byte, summary coa2pdf.ExportSummary) {
	key := blob.ArchiveKey(s.prefix, summary.Date)
	info, err := s.sink.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: blob.ArchiveContentType,
		Metadata: map[string]string{
			"documents": strconv.Itoa(summary.Documents),
			"filename":  coa2pdf.ArchiveName(summary.Date),
			"requestid": requestID(r),
		},
	})
	if err != nil {
		s.logger.Warn("storing archive",
			zap.String("requestId", requestID(r)),
			zap.String("driver", string(s.sink.Driver())),
			zap.Error(err),
		)
		return
	}
	w.Header().Set(HeaderArchiveKey, info.Key)

	u, err := s.sink.PresignURL(ctx, info.Key, presignExpiry)
	switch {
	case err == nil:
		w.Header().Set(HeaderArchiveURL, u)
	case !errors.Is(err, blob.ErrUnsupported):
		s.logger.Warn("presigning archive URL", zap.String("key", info.Key), zap.Error(err))
	}
}

// handleSingle renders one certificate inline.
func (s *Server) handleSingle(ep singleEndpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req singleRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		if req.COA == nil {
			respondError(w, http.StatusBadRequest, "No COA provided", nil)
			return
		}
		if !checkStatuses(w, []coa2pdf.COA{*req.COA}) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.exportTimeout)
		defer cancel()
		release, ok := s.acquire(ctx, w)
		if !ok {
			return
		}
		defer release()

		opts := req.Options
		opts.Date = s.conv.Now()
		pdf, err := s.conv.Convert(ctx, *req.COA, opts)
		if err != nil {
			s.fail(w, r, ep.name, ep.failure, err)
			return
		}
		s.metrics.documents.Inc()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", ep.filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

// handleIngest parses pasted spreadsheet rows. The body is either raw TSV
// or JSON {"text": ...}. With ?next=N the request is numbered from N and
// the server sequence is left alone.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readIngestText(w, r)
	if !ok {
		return
	}

	var (
		res coa2pdf.IngestResult
		err error
	)
	if raw := r.URL.Query().Get("next"); raw != "" {
		next, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || next == 0 {
			respondError(w, http.StatusBadRequest, "Invalid next parameter", raw)
			return
		}
		res, err = coa2pdf.Ingest(text, next)
	} else {
		res, err = s.ids.Ingest(text)
	}

	var ingestErr *coa2pdf.IngestError
	switch {
	case errors.As(err, &ingestErr):
		respondError(w, http.StatusUnprocessableEntity, "Invalid tabular data", ingestErr.Messages())
		return
	case errors.Is(err, coa2pdf.ErrNoRows):
		respondError(w, http.StatusUnprocessableEntity, "No rows found", nil)
		return
	case err != nil:
		s.fail(w, r, "ingest", "Ingestion failed", err)
		return
	}
	respondJSON(w, http.StatusOK, ingestResponse{COAs: res.Records, NextID: res.Next})
}

func (s *Server) readIngestText(w http.ResponseWriter, r *http.Request) (string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ingestRequest
		if !s.decodeJSON(w, r, &req) {
			return "", false
		}
		return req.Text, true
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.badBody(w, err)
		return "", false
	}
	text, err := coa2pdf.ReadTabular(bytes.NewReader(body))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return "", false
	}
	return text, true
}

// checkStatuses answers 422 when any record carries an experiment status
// other than pass or fail.
func checkStatuses(w http.ResponseWriter, coas []coa2pdf.COA) bool {
	var details []string
	for i := range coas {
		if err := coas[i].CheckStatuses(); err != nil {
			details = append(details, fmt.Sprintf("COA %d (order %s): %v", i+1, coas[i].OrderID, err))
		}
	}
	if len(details) > 0 {
		respondError(w, http.StatusUnprocessableEntity, "Invalid COA", details)
		return false
	}
	return true
}

// decodeJSON reads a size-limited JSON body into v. On failure it has
// already written the response.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(v); err != nil {
		s.badBody(w, err)
		return false
	}
	return true
}

func (s *Server) badBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "Request body too large",
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		return
	}
	respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
}

// acquire takes a render slot, waiting at most the queue timeout.
func (s *Server) acquire(ctx context.Context, w http.ResponseWriter) (func(), bool) {
	qctx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()
	release, err := s.limiter.Acquire(qctx)
	if err != nil {
		s.metrics.rejected.Inc()
		w.Header().Set("Retry-After", strconv.Itoa(int(s.queueTimeout.Seconds())))
		respondError(w, http.StatusServiceUnavailable, "Server busy", err.Error())
		return nil, false
	}
	s.metrics.inFlight.Inc()
	return func() {
		s.metrics.inFlight.Dec()
		release()
	}, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, endpoint, msg string, err error) {
	s.metrics.exportFailures.WithLabelValues(endpoint).Inc()
	s.logger.Error(msg,
		zap.String("requestId", requestID(r)),
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, msg, err.Error())
}
