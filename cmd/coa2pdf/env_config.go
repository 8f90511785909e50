package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-coa2pdf/internal/config"
)

// envPrefix scopes every variable read by the CLI.
const envPrefix = "COA2PDF_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath    string        // COA2PDF_CONFIG: config file name or path
	RenderTimeout time.Duration // COA2PDF_RENDER_TIMEOUT: per-document render timeout
	CertifiedBy   string        // COA2PDF_CERTIFIED_BY: default signatory
	LogLevel      string        // COA2PDF_LOG_LEVEL: debug, info, warn, error

	// Tier 2 - Browser
	BrowserBin string // COA2PDF_BROWSER_BIN: Chrome/Chromium binary
	NoSandbox  bool   // COA2PDF_NO_SANDBOX: "1" or "true" disables the sandbox

	// Tier 3 - Server
	Addr          string        // COA2PDF_ADDR: listen address
	Concurrency   int           // COA2PDF_CONCURRENCY: simultaneous exports
	ExportTimeout time.Duration // COA2PDF_EXPORT_TIMEOUT: whole-request timeout

	// Tier 4 - Archive sink
	SinkDriver   string // COA2PDF_SINK_DRIVER: fs, memory, s3
	SinkPath     string // COA2PDF_SINK_PATH: fs root
	SinkBucket   string // COA2PDF_SINK_BUCKET: s3 bucket
	SinkRegion   string // COA2PDF_SINK_REGION: s3 region
	SinkEndpoint string // COA2PDF_SINK_ENDPOINT: S3-compatible endpoint

	// Tier 5 - Branding
	AssetsDir string // COA2PDF_ASSETS_DIR: template override directory
	Logo      string // COA2PDF_LOGO: company logo file
}

// knownEnvVars lists valid COA2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"COA2PDF_CONFIG":         true,
	"COA2PDF_RENDER_TIMEOUT": true,
	"COA2PDF_CERTIFIED_BY":   true,
	"COA2PDF_LOG_LEVEL":      true,
	// Tier 2 - Browser
	"COA2PDF_BROWSER_BIN": true,
	"COA2PDF_NO_SANDBOX":  true,
	// Tier 3 - Server
	"COA2PDF_ADDR":           true,
	"COA2PDF_CONCURRENCY":    true,
	"COA2PDF_EXPORT_TIMEOUT": true,
	// Tier 4 - Archive sink
	"COA2PDF_SINK_DRIVER":   true,
	"COA2PDF_SINK_PATH":     true,
	"COA2PDF_SINK_BUCKET":   true,
	"COA2PDF_SINK_REGION":   true,
	"COA2PDF_SINK_ENDPOINT": true,
	// Tier 5 - Branding
	"COA2PDF_ASSETS_DIR": true,
	"COA2PDF_LOGO":       true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored, not reported.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("COA2PDF_CONFIG"),
		CertifiedBy:  os.Getenv("COA2PDF_CERTIFIED_BY"),
		LogLevel:     os.Getenv("COA2PDF_LOG_LEVEL"),
		BrowserBin:   os.Getenv("COA2PDF_BROWSER_BIN"),
		Addr:         os.Getenv("COA2PDF_ADDR"),
		SinkDriver:   os.Getenv("COA2PDF_SINK_DRIVER"),
		SinkPath:     os.Getenv("COA2PDF_SINK_PATH"),
		SinkBucket:   os.Getenv("COA2PDF_SINK_BUCKET"),
		SinkRegion:   os.Getenv("COA2PDF_SINK_REGION"),
		SinkEndpoint: os.Getenv("COA2PDF_SINK_ENDPOINT"),
		AssetsDir:    os.Getenv("COA2PDF_ASSETS_DIR"),
		Logo:         os.Getenv("COA2PDF_LOGO"),
	}

	cfg.RenderTimeout = envDuration("COA2PDF_RENDER_TIMEOUT")
	cfg.ExportTimeout = envDuration("COA2PDF_EXPORT_TIMEOUT")

	if v := os.Getenv("COA2PDF_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}

	switch strings.ToLower(os.Getenv("COA2PDF_NO_SANDBOX")) {
	case "1", "true", "yes":
		cfg.NoSandbox = true
	}

	return cfg
}

func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// warnUnknownEnvVars logs warnings for unrecognized COA2PDF_* variables.
// Helps catch typos like COA2PDF_TIMEOUT instead of COA2PDF_RENDER_TIMEOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays set environment variables onto cfg.
// The config starts from defaults, so a set variable always wins over the
// file. Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.RenderTimeout > 0 {
		cfg.Render.Timeout = env.RenderTimeout.String()
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}

	// Tier 2
	if env.BrowserBin != "" {
		cfg.Engine.BrowserBin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Engine.NoSandbox = true
	}

	// Tier 3
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Concurrency > 0 {
		cfg.Server.Concurrency = env.Concurrency
	}
	if env.ExportTimeout > 0 {
		cfg.Server.ExportTimeout = env.ExportTimeout.String()
	}

	// Tier 4 - a driver switch resets location fields the file set for
	// another driver.
	if env.SinkDriver != "" && env.SinkDriver != cfg.Sink.Driver {
		cfg.Sink = config.SinkConfig{
			Driver:      env.SinkDriver,
			Prefix:      cfg.Sink.Prefix,
			MaxArchives: cfg.Sink.MaxArchives,
			MaxBytes:    cfg.Sink.MaxBytes,
		}
	}
	if env.SinkPath != "" {
		cfg.Sink.Path = env.SinkPath
	}
	if env.SinkBucket != "" {
		cfg.Sink.Bucket = env.SinkBucket
	}
	if env.SinkRegion != "" {
		cfg.Sink.Region = env.SinkRegion
	}
	if env.SinkEndpoint != "" {
		cfg.Sink.Endpoint = env.SinkEndpoint
		cfg.Sink.PathStyle = true
	}

	// Tier 5
	if env.AssetsDir != "" {
		cfg.Branding.AssetsDir = env.AssetsDir
	}
	if env.Logo != "" {
		cfg.Branding.LogoPath = env.Logo
	}
}
