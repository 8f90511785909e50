package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/assets"
	"github.com/alnah/go-coa2pdf/internal/dateutil"
	"github.com/alnah/go-coa2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory searched under the user config dir.
const AppDirName = "coa2pdf"

// Field length limits.
const (
	MaxNameLength     = 100  // Company name, signatory
	MaxTextLength     = 1000 // Conclusion, intended use (Markdown)
	MaxURLLength      = 2048 // Browser limit
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxFlagLength     = 200  // One chromium switch
	MaxFlags          = 32
	MaxDateLength     = 50 // dateutil.MaxDateFormatLength
	MaxSinkNameLength = 255
)

// Sink drivers.
const (
	SinkNone   = ""
	SinkFS     = "fs"
	SinkMemory = "memory"
	SinkS3     = "s3"
)

// Log levels accepted by log.level.
var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Config holds all service and CLI configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Render   RenderConfig         `yaml:"render"`
	Engine   coa2pdf.EngineConfig `yaml:"engine"`
	Branding BrandingConfig       `yaml:"branding"`
	Sink     SinkConfig           `yaml:"sink"`
	Log      LogConfig            `yaml:"log"`
}

// ServerConfig defines the HTTP export service.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ExportTimeout bounds one export request, e.g. "2m".
	ExportTimeout string `yaml:"exportTimeout"`
	// QueueTimeout bounds the wait for a free export slot.
	QueueTimeout    string `yaml:"queueTimeout"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64  `yaml:"maxBodyBytes"`
	// Concurrency caps simultaneous exports (0 = auto).
	Concurrency int `yaml:"concurrency"`
	// EnforceExportGate refuses exports with missing images or signatory.
	EnforceExportGate bool `yaml:"enforceExportGate"`
}

// RenderConfig defines per-document rendering.
type RenderConfig struct {
	Timeout string               `yaml:"timeout"` // e.g. "30s"
	Margins *coa2pdf.PageMargins `yaml:"margins"` // nil = defaults
}

// BrandingConfig defines the letterhead. LogoPath is read and embedded at
// load time.
type BrandingConfig struct {
	CompanyName     string `yaml:"companyName"`
	CompanySubtitle string `yaml:"companySubtitle"`
	Slogan          string `yaml:"slogan"`
	LogoPath        string `yaml:"logoPath"`
	FontURL         string `yaml:"fontURL"`
	FontFamily      string `yaml:"fontFamily"`
	DateFormat      string `yaml:"dateFormat"`
	Storage         string `yaml:"storage"`
	Conclusion      string `yaml:"conclusion"`
	IntendedUse     string `yaml:"intendedUse"`
	AssetsDir       string `yaml:"assetsDir"`
}

// SinkConfig defines where the service stores a copy of every archive.
type SinkConfig struct {
	Driver    string `yaml:"driver"` // "", fs, memory, s3
	Path      string `yaml:"path"`   // fs root
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoint (MinIO)
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"pathStyle"`

	// Memory driver caps. Zero uses the store defaults.
	MaxArchives int   `yaml:"maxArchives"`
	MaxBytes    int64 `yaml:"maxBytes"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ExportTimeout:   "5m",
			QueueTimeout:    "30s",
			ShutdownTimeout: "15s",
			MaxBodyBytes:    64 << 20,
		},
		Render: RenderConfig{Timeout: "30s"},
		Branding: BrandingConfig{
			DateFormat: dateutil.DefaultDateFormat,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, d := range []struct{ field, value string }{
		{"server.exportTimeout", c.Server.ExportTimeout},
		{"server.queueTimeout", c.Server.QueueTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"render.timeout", c.Render.Timeout},
	} {
		if _, err := parseDuration(d.field, d.value); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must not be negative", ErrInvalidValue)
	}
	if c.Server.Concurrency < 0 || c.Server.Concurrency > coa2pdf.MaxConcurrency {
		return fmt.Errorf("%w: server.concurrency must be between 0 and %d, got %d",
			ErrInvalidValue, coa2pdf.MaxConcurrency, c.Server.Concurrency)
	}

	if c.Render.Margins != nil {
		if err := c.Render.Margins.Validate(); err != nil {
			return fmt.Errorf("render.margins: %w", err)
		}
	}

	if err := validateFieldLength("engine.browserBin", c.Engine.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if len(c.Engine.Flags) > MaxFlags {
		return fmt.Errorf("%w: engine.flags has %d entries, max %d", ErrInvalidValue, len(c.Engine.Flags), MaxFlags)
	}
	for i, f := range c.Engine.Flags {
		if err := validateFieldLength(fmt.Sprintf("engine.flags[%d]", i), f, MaxFlagLength); err != nil {
			return err
		}
	}

	if err := c.Branding.validate(); err != nil {
		return err
	}
	if err := c.Sink.validate(); err != nil {
		return err
	}

	if c.Log.Level != "" && !logLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	return nil
}

func (b *BrandingConfig) validate() error {
	for _, f := range []struct {
		field, value string
		max          int
	}{
		{"branding.companyName", b.CompanyName, MaxNameLength},
		{"branding.companySubtitle", b.CompanySubtitle, MaxNameLength},
		{"branding.slogan", b.Slogan, MaxNameLength},
		{"branding.logoPath", b.LogoPath, MaxPathLength},
		{"branding.fontURL", b.FontURL, MaxURLLength},
		{"branding.fontFamily", b.FontFamily, MaxNameLength},
		{"branding.dateFormat", b.DateFormat, MaxDateLength},
		{"branding.storage", b.Storage, MaxTextLength},
		{"branding.conclusion", b.Conclusion, MaxTextLength},
		{"branding.intendedUse", b.IntendedUse, MaxTextLength},
		{"branding.assetsDir", b.AssetsDir, MaxPathLength},
	} {
		if err := validateFieldLength(f.field, f.value, f.max); err != nil {
			return err
		}
	}
	if b.FontURL != "" && !strings.HasPrefix(b.FontURL, "https://") {
		return fmt.Errorf("%w: branding.fontURL must use https", ErrInvalidValue)
	}
	if _, err := dateutil.Layout(b.DateFormat); err != nil {
		return fmt.Errorf("branding.dateFormat: %w", err)
	}
	return nil
}

func (s *SinkConfig) validate() error {
	switch strings.ToLower(s.Driver) {
	case SinkNone, SinkMemory:
	case SinkFS:
		if s.Path == "" {
			return fmt.Errorf("%w: sink.path is required for the fs driver", ErrInvalidValue)
		}
	case SinkS3:
		if s.Bucket == "" {
			return fmt.Errorf("%w: sink.bucket is required for the s3 driver", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: sink.driver %q (must be fs, memory, or s3)", ErrInvalidValue, s.Driver)
	}
	if s.MaxArchives < 0 || s.MaxBytes < 0 {
		return fmt.Errorf("%w: sink.maxArchives and sink.maxBytes must not be negative", ErrInvalidValue)
	}
	for _, f := range []struct{ field, value string }{
		{"sink.path", s.Path},
		{"sink.bucket", s.Bucket},
		{"sink.region", s.Region},
		{"sink.prefix", s.Prefix},
	} {
		if err := validateFieldLength(f.field, f.value, MaxSinkNameLength); err != nil {
			return err
		}
	}
	return validateFieldLength("sink.endpoint", s.Endpoint, MaxURLLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// parseDuration parses a positive duration. Empty means zero (use default).
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// durationOr parses value or returns def. Values are checked by Validate.
func durationOr(value string, def time.Duration) time.Duration {
	d, err := parseDuration("", value)
	if err != nil || d == 0 {
		return def
	}
	return d
}

// ExportTimeout returns server.exportTimeout (default 5m).
func (c *Config) ExportTimeout() time.Duration {
	return durationOr(c.Server.ExportTimeout, 5*time.Minute)
}

// QueueTimeout returns server.queueTimeout (default 30s).
func (c *Config) QueueTimeout() time.Duration {
	return durationOr(c.Server.QueueTimeout, 30*time.Second)
}

// ShutdownTimeout returns server.shutdownTimeout (default 15s).
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 15*time.Second)
}

// RenderTimeout returns render.timeout (default 30s).
func (c *Config) RenderTimeout() time.Duration {
	return durationOr(c.Render.Timeout, 30*time.Second)
}

// Margins returns render.margins or the defaults.
func (c *Config) Margins() coa2pdf.PageMargins {
	if c.Render.Margins == nil {
		return coa2pdf.DefaultPageMargins()
	}
	return *c.Render.Margins
}

// ResolveBranding builds the renderer branding, embedding the logo file.
func (c *Config) ResolveBranding() (coa2pdf.Branding, error) {
	b := c.Branding
	out := coa2pdf.Branding{
		CompanyName:     b.CompanyName,
		CompanySubtitle: b.CompanySubtitle,
		Slogan:          b.Slogan,
		FontURL:         b.FontURL,
		FontFamily:      b.FontFamily,
		DateFormat:      b.DateFormat,
		Storage:         b.Storage,
		Conclusion:      b.Conclusion,
		IntendedUse:     b.IntendedUse,
		AssetsDir:       b.AssetsDir,
	}
	def := coa2pdf.DefaultBranding()
	if out.CompanyName == "" {
		out.CompanyName, out.CompanySubtitle = def.CompanyName, def.CompanySubtitle
	}
	if out.Slogan == "" {
		out.Slogan = def.Slogan
	}

	if b.LogoPath != "" {
		logo, err := assets.LoadImage(b.LogoPath)
		if err != nil {
			return coa2pdf.Branding{}, fmt.Errorf("branding.logoPath: %w", err)
		}
		out.Logo = logo
	}
	return out, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing keys keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries the current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
