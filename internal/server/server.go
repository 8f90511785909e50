// Package server exposes the COA converter over HTTP.
//
// Handlers only decode requests, apply limits, and map errors to status
// codes. Rendering, batching and packaging live in the coa2pdf package.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/blob"
)

// Defaults applied by New when an Options field is zero.
const (
	DefaultExportTimeout   = 5 * time.Minute
	DefaultQueueTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = 64 << 20
	readHeaderTimeout      = 10 * time.Second
	presignExpiry          = time.Hour
)

// Options wires a Server.
type Options struct {
	Converter *coa2pdf.Converter
	// Limiter caps simultaneous renders. Nil means ResolveConcurrency(0).
	Limiter *coa2pdf.Limiter
	// IDs numbers records ingested through /ingest.
	IDs *coa2pdf.IDSequence
	// Sink receives a copy of every ZIP export. Nil disables archiving.
	Sink       blob.Store
	SinkPrefix string

	ExportTimeout time.Duration
	// QueueTimeout bounds the wait for a free render slot.
	QueueTimeout time.Duration
	MaxBodyBytes int64
	// EnforceExportGate rejects batches failing coa2pdf.CheckExport.
	EnforceExportGate bool

	Logger *zap.Logger
	// Registry collects the service metrics served on /metrics.
	// Nil creates a private registry.
	Registry *prometheus.Registry
}

// Server is the HTTP front of a Converter.
type Server struct {
	conv    *coa2pdf.Converter
	limiter *coa2pdf.Limiter
	ids     *coa2pdf.IDSequence
	sink    blob.Store
	prefix  string

	exportTimeout time.Duration
	queueTimeout  time.Duration
	maxBodyBytes  int64
	enforceGate   bool

	logger  *zap.Logger
	metrics *metrics
}

// New returns a Server. Converter is required.
func New(opts Options) (*Server, error) {
	if opts.Converter == nil {
		return nil, errors.New("server: converter is required")
	}
	s := &Server{
		conv:          opts.Converter,
		limiter:       opts.Limiter,
		ids:           opts.IDs,
		sink:          opts.Sink,
		prefix:        opts.SinkPrefix,
		exportTimeout: opts.ExportTimeout,
		queueTimeout:  opts.QueueTimeout,
		maxBodyBytes:  opts.MaxBodyBytes,
		enforceGate:   opts.EnforceExportGate,
		logger:        opts.Logger,
	}
	if s.limiter == nil {
		s.limiter = coa2pdf.NewLimiter(0)
	}
	if s.ids == nil {
		s.ids = coa2pdf.NewIDSequence()
	}
	if s.exportTimeout <= 0 {
		s.exportTimeout = DefaultExportTimeout
	}
	if s.queueTimeout <= 0 {
		s.queueTimeout = DefaultQueueTimeout
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	m, err := newMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("server: registering metrics: %w", err)
	}
	s.metrics = m
	return s, nil
}

// ListenAndServe serves on addr until ctx is canceled, then drains
// in-flight requests for at most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()), zap.Int("concurrency", s.limiter.Size()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
