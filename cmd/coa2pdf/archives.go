package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/go-coa2pdf/internal/blob"
)

// runArchivesCmd lists, downloads and removes archives kept in the sink.
func runArchivesCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseArchivesFlags(args)
	if err != nil {
		return usageError(err)
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: expected list, get or rm", ErrUsage)
	}
	action, rest := positional[0], positional[1:]

	switch {
	case (action == "list" || action == "ls") && len(rest) > 1:
		return fmt.Errorf("%w: list takes at most one prefix", ErrUsage)
	case action == "get" && len(rest) != 1:
		return fmt.Errorf("%w: get takes one archive key", ErrUsage)
	case action == "rm" && len(rest) == 0:
		return fmt.Errorf("%w: rm takes one or more archive keys", ErrUsage)
	case action != "list" && action != "ls" && action != "get" && action != "rm":
		return fmt.Errorf("%w: unknown archives action %q", ErrUsage, action)
	}

	cfg, _, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	sink, err := openSink(ctx, cfg.Sink)
	if err != nil {
		return err
	}

	switch action {
	case "get":
		return getArchive(ctx, sink, rest[0], flags, env)
	case "rm":
		for _, key := range rest {
			if err := removeArchive(ctx, sink, key, flags, env); err != nil {
				return err
			}
		}
		return nil
	}
	prefix := cfg.Sink.Prefix
	if prefix == "" {
		prefix = blob.DefaultArchivePrefix
	}
	if len(rest) == 1 {
		prefix = rest[0]
	}
	return listArchives(ctx, sink, prefix, flags, env)
}

func listArchives(ctx context.Context, sink blob.Store, prefix string, flags *archivesFlags, env *Environment) error {
	list, err := sink.List(ctx, prefix)
	if err != nil {
		return sinkError(err)
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(list)
	}

	fmt.Fprintln(env.Stdout, renderArchiveTable(list, isTerminal(env.Stdout)))
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "%d archive(s) under %s:%s\n", len(list), sink.Driver(), prefix)
	}
	return nil
}

// renderArchiveTable lays out one stored archive per row.
func renderArchiveTable(list []blob.Info, styled bool) string {
	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Key", "Documents", "Bytes", "Stored"})
	for _, info := range list {
		tw.AppendRow(table.Row{
			info.Key,
			info.Metadata["documents"],
			info.Size,
			info.LastModified.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func getArchive(ctx context.Context, sink blob.Store, key string, flags *archivesFlags, env *Environment) error {
	info, rc, err := sink.Get(ctx, key)
	if err != nil {
		return sinkError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	output := flags.output
	if output == "" {
		output = info.Metadata["filename"]
	}
	if output == "" {
		output = path.Base(info.Key)
	}
	if err := writeOutput(output, data, env.Stdout); err != nil {
		return err
	}
	if !flags.common.quiet && output != "-" {
		fmt.Fprintf(env.Stderr, "Downloaded %s (%d bytes) to %s\n", info.Key, len(data), output)
	}
	return nil
}

func removeArchive(ctx context.Context, sink blob.Store, key string, flags *archivesFlags, env *Environment) error {
	ok, err := sink.Delete(ctx, key)
	if err != nil {
		return sinkError(err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrArchiveMissing, key)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Removed %s:%s\n", sink.Driver(), key)
	}
	return nil
}

// sinkError maps store errors onto CLI sentinels.
func sinkError(err error) error {
	switch {
	case errors.Is(err, blob.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrArchiveMissing, err)
	case errors.Is(err, blob.ErrInvalidKey):
		return fmt.Errorf("%w: %v", ErrUsage, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
}
