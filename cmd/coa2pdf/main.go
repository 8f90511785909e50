package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/assets"
	"github.com/alnah/go-coa2pdf/internal/config"
	"github.com/alnah/go-coa2pdf/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// hasVerboseFlag scans raw arguments before any FlagSet exists.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	switch cmd {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "coa2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	warnUnknownEnvVars(env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "parse":
		err = runParseCmd(rest, env)
	case "export":
		err = runExportCmd(ctx, rest, env)
	case "render":
		err = runRenderCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "archives":
		err = runArchivesCmd(ctx, rest, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hintFor picks the actionable hint matching err, if any.
func hintFor(err error) string {
	switch {
	case errors.Is(err, coa2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, coa2pdf.ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("config"))
	case errors.Is(err, coa2pdf.ErrInvalidRow), errors.Is(err, coa2pdf.ErrNoRows):
		return hints.ForIngest()
	case errors.Is(err, coa2pdf.ErrMissingImages):
		return hints.ForMissingImages()
	case errors.Is(err, assets.ErrUnsupportedImage), errors.Is(err, assets.ErrImageTooLarge):
		return hints.ForLogo()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
