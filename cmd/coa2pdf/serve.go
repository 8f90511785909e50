package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/blob"
	"github.com/alnah/go-coa2pdf/internal/logger"
	"github.com/alnah/go-coa2pdf/internal/server"
)

// runServeCmd runs the HTTP export service until ctx is canceled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.concurrency > 0 {
		cfg.Server.Concurrency = flags.concurrency
	}

	level := cfg.Log.Level
	if flags.common.verbose {
		level = "debug"
	}
	lg, err := logger.New(level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = lg.Sync() }()

	conv, err := buildConverter(cfg, "", lg, env)
	if err != nil {
		return err
	}

	sink, err := blob.Open(ctx, cfg.Sink)
	if err != nil {
		return fmt.Errorf("opening archive sink: %w", err)
	}
	if sink != nil {
		lg.Info("archive sink enabled", zap.String("driver", string(sink.Driver())))
	}

	srv, err := server.New(server.Options{
		Converter:         conv,
		Limiter:           coa2pdf.NewLimiter(cfg.Server.Concurrency),
		Sink:              sink,
		SinkPrefix:        cfg.Sink.Prefix,
		ExportTimeout:     cfg.ExportTimeout(),
		QueueTimeout:      cfg.QueueTimeout(),
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
		EnforceExportGate: cfg.Server.EnforceExportGate,
		Logger:            lg,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.ShutdownTimeout())
}
