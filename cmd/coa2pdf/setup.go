package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/config"
	"github.com/alnah/go-coa2pdf/internal/fileutil"
	"github.com/alnah/go-coa2pdf/internal/logger"
)

// loadConfig resolves the configuration for one command.
// Priority: CLI flags > env vars > config file > defaults.
func loadConfig(flagPath string, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig()

	name := flagPath
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	switch {
	case name != "":
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	case env.Config != nil:
		c := *env.Config
		cfg = &c
	default:
		cfg = config.DefaultConfig()
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

// cliLogger writes JSON log lines to stderr: warnings by default,
// everything with --verbose, errors only with --quiet.
func cliLogger(w io.Writer, f commonFlags) (*zap.Logger, error) {
	level := "warn"
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	return logger.NewWriter(w, level)
}

// resolveTimeout returns the per-document render timeout.
// Priority: --timeout flag > COA2PDF_RENDER_TIMEOUT / config > default.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.RenderTimeout(), nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must be positive", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// buildConverter wires branding, page layout and the engine from cfg.
func buildConverter(cfg *config.Config, timeoutFlag string, lg *zap.Logger, env *Environment) (*coa2pdf.Converter, error) {
	timeout, err := resolveTimeout(timeoutFlag, cfg)
	if err != nil {
		return nil, err
	}

	branding, err := cfg.ResolveBranding()
	if err != nil {
		return nil, err
	}

	opts := []coa2pdf.Option{
		coa2pdf.WithBranding(branding),
		coa2pdf.WithPageMargins(cfg.Margins()),
		coa2pdf.WithEngineConfig(cfg.Engine),
		coa2pdf.WithRenderTimeout(timeout),
		coa2pdf.WithLogger(lg),
		coa2pdf.WithClock(env.Now),
	}
	if env.Launcher != nil {
		opts = append(opts, coa2pdf.WithLauncher(env.Launcher))
	}
	return coa2pdf.NewConverter(opts...)
}

// renderOptions merges document flags with the environment signatory.
func renderOptions(rf renderFlags, envCfg *envConfig) coa2pdf.RenderOptions {
	certifiedBy := rf.certifiedBy
	if certifiedBy == "" {
		certifiedBy = envCfg.CertifiedBy
	}
	return coa2pdf.RenderOptions{
		IncludeImages: coa2pdf.BoolPtr(!rf.noImages),
		CertifiedBy:   certifiedBy,
		ProjectName:   rf.project,
	}
}

// jsonInput is the object form accepted next to a bare array.
type jsonInput struct {
	COAs []coa2pdf.COA `json:"coas"`
}

// readRecords loads records from path ("-" = stdin).
//
// JSON input (a .json file, or content starting with '[' or '{') is decoded
// as-is and validated. Anything else is tab-separated rows numbered from
// start.
func readRecords(path string, start uint64, stdin io.Reader) ([]coa2pdf.COA, uint64, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	text, err := coa2pdf.ReadTabular(r)
	if err != nil {
		return nil, 0, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") || looksLikeJSON(text) {
		coas, err := decodeRecords(text)
		return coas, 0, err
	}

	res, err := coa2pdf.Ingest(text, start)
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Next, nil
}

func looksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

func decodeRecords(text string) ([]coa2pdf.COA, error) {
	var coas []coa2pdf.COA
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var in jsonInput
		if err := json.Unmarshal([]byte(trimmed), &in); err != nil {
			return nil, fmt.Errorf("%w: %v", coa2pdf.ErrDecodeInput, err)
		}
		coas = in.COAs
	} else if err := json.Unmarshal([]byte(trimmed), &coas); err != nil {
		return nil, fmt.Errorf("%w: %v", coa2pdf.ErrDecodeInput, err)
	}

	if len(coas) == 0 {
		return nil, coa2pdf.ErrNoRecords
	}
	for i := range coas {
		if err := coas[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return coas, nil
}

// inputPath returns the single positional argument.
func inputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
}

// writeOutput writes data to path atomically, or to stdout for "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// usageError marks flag parsing failures, keeping --help a success.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
