package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds the document options shared by export and render.
type renderFlags struct {
	certifiedBy string
	project     string
	noImages    bool
	timeout     string
}

// parseFlags holds flags for the parse command.
type parseFlags struct {
	common commonFlags
	json   bool
	start  uint64
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common             commonFlags
	render             renderFlags
	output             string
	allowMissingImages bool
	upload             bool
}

// renderCmdFlags holds flags for the render command.
type renderCmdFlags struct {
	common commonFlags
	render renderFlags
	output string
	index  int
	html   bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common      commonFlags
	addr        string
	concurrency int
}

// archivesFlags holds flags for the archives command.
type archivesFlags struct {
	common commonFlags
	json   bool
	output string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed logs")
}

// addRenderFlags adds document option flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.certifiedBy, "certified-by", "", "signatory printed on every certificate")
	fs.StringVar(&f.project, "project", "", "project name")
	fs.BoolVar(&f.noImages, "no-images", false, "leave gel image slots as placeholders")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document render timeout (e.g., 30s, 2m)")
}

// parseParseFlags parses parse command flags and returns positional args.
func parseParseFlags(args []string) (*parseFlags, []string, error) {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	f := &parseFlags{}

	fs.BoolVar(&f.json, "json", false, "print records as JSON")
	fs.Uint64Var(&f.start, "start", 0, "first identifier to assign (0 = 1)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printParseUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	f := &exportFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "archive path (\"-\" = stdout)")
	fs.BoolVar(&f.allowMissingImages, "allow-missing-images", false, "skip the export gate")
	fs.BoolVar(&f.upload, "upload", false, "also store the archive in the configured sink")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printExportUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderCmdFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := &renderCmdFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (\"-\" = stdout)")
	fs.IntVarP(&f.index, "index", "n", 1, "1-based record to render")
	fs.BoolVar(&f.html, "html", false, "write the HTML document instead of a PDF")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printRenderUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (e.g., :8080)")
	fs.IntVarP(&f.concurrency, "concurrency", "w", 0, "simultaneous exports (0 = auto)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseArchivesFlags parses archives command flags and returns the action
// and its arguments.
func parseArchivesFlags(args []string) (*archivesFlags, []string, error) {
	fs := flag.NewFlagSet("archives", flag.ContinueOnError)
	f := &archivesFlags{}

	fs.BoolVar(&f.json, "json", false, "print the listing as JSON")
	fs.StringVarP(&f.output, "output", "o", "", "download path (\"-\" = stdout)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printArchivesUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
