package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/blob"
	"github.com/alnah/go-coa2pdf/internal/config"
)

// runExportCmd renders every record and writes one ZIP archive.
func runExportCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args)
	if err != nil {
		return usageError(err)
	}

	path, err := inputPath(positional)
	if err != nil {
		return err
	}

	cfg, envCfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	coas, _, err := readRecords(path, coa2pdf.FirstID, env.Stdin)
	if err != nil {
		return err
	}

	opts := renderOptions(flags.render, envCfg)
	if !flags.allowMissingImages {
		if err := coa2pdf.CheckExport(coas, opts.CertifiedBy); err != nil {
			return err
		}
	}

	// Open the sink before rendering so a bad sink config fails fast.
	var sink blob.Store
	if flags.upload {
		sink, err = openSink(ctx, cfg.Sink)
		if err != nil {
			return err
		}
	}

	lg, err := cliLogger(env.Stderr, flags.common)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	conv, err := buildConverter(cfg, flags.render.timeout, lg, env)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	summary, err := conv.Export(ctx, &buf, coas, opts)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = coa2pdf.ArchiveName(summary.Date)
	}
	if err := writeOutput(output, buf.Bytes(), env.Stdout); err != nil {
		return err
	}

	if !flags.common.quiet && output != "-" {
		fmt.Fprintf(env.Stderr, "Exported %d COA(s) to %s\n", summary.Documents, output)
	}

	if sink == nil {
		return nil
	}
	info, err := sink.Put(ctx, blob.ArchiveKey(cfg.Sink.Prefix, summary.Date), bytes.NewReader(buf.Bytes()), blob.PutOptions{
		ContentType: blob.ArchiveContentType,
		Metadata: map[string]string{
			"documents": strconv.Itoa(summary.Documents),
			"filename":  coa2pdf.ArchiveName(summary.Date),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Uploaded to %s:%s\n", sink.Driver(), info.Key)
	}
	return nil
}

// openSink opens the configured archive store, refusing the empty driver.
func openSink(ctx context.Context, cfg config.SinkConfig) (blob.Store, error) {
	store, err := blob.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: set sink.driver or COA2PDF_SINK_DRIVER", ErrNoSink)
	}
	return store, nil
}
