package main

import (
	"context"
	"fmt"
	"strings"

	coa2pdf "github.com/alnah/go-coa2pdf"
)

// runRenderCmd renders the record at --index to PDF, or to HTML with --html.
// The export gate is not applied: a single document is a preview.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args)
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
	if flags.index < 1 || flags.index > len(coas) {
		return fmt.Errorf("%w: --index %d, input has %d record(s)", ErrIndexRange, flags.index, len(coas))
	}
	coa := coas[flags.index-1]

	lg, err := cliLogger(env.Stderr, flags.common)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	conv, err := buildConverter(cfg, flags.render.timeout, lg, env)
	if err != nil {
		return err
	}

	opts := renderOptions(flags.render, envCfg)
	opts.Date = conv.Now()

	var data []byte
	if flags.html {
		html, err := conv.RenderHTML(coa, opts)
		if err != nil {
			return err
		}
		data = []byte(html)
	} else {
		data, err = conv.Convert(ctx, coa, opts)
		if err != nil {
			return err
		}
	}

	output := flags.output
	if output == "" {
		output = coa2pdf.TimestampEntryName(coa.OrderID, opts.Date)
		if flags.html {
			output = strings.TrimSuffix(output, ".pdf") + ".html"
		}
	}
	if err := writeOutput(output, data, env.Stdout); err != nil {
		return err
	}

	if !flags.common.quiet && output != "-" {
		fmt.Fprintf(env.Stderr, "Rendered order %s to %s\n", coa.OrderID, output)
	}
	return nil
}
