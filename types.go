package coa2pdf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// A4 paper dimensions in inches, as expected by the PDF printer.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

// Margin bounds in millimetres.
const (
	MinMarginMM = 0.0
	MaxMarginMM = 50.0
)

const mmPerInch = 25.4

// PageMargins are the printed page margins in millimetres.
type PageMargins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// DefaultPageMargins returns the margins used for every certificate:
// 10mm top, 12mm sides and no bottom margin so the intended-use footer sits
// on the page edge.
func DefaultPageMargins() PageMargins {
	return PageMargins{Top: 10, Right: 12, Bottom: 0, Left: 12}
}

// Validate checks that every side lies within [MinMarginMM, MaxMarginMM].
func (m PageMargins) Validate() error {
	sides := []struct {
		name  string
		value float64
	}{
		{"top", m.Top},
		{"right", m.Right},
		{"bottom", m.Bottom},
		{"left", m.Left},
	}
	for _, s := range sides {
		if s.value < MinMarginMM || s.value > MaxMarginMM {
			return fmt.Errorf("%w: %s %.1fmm (must be between %.0f and %.0f)",
				ErrInvalidMargin, s.name, s.value, MinMarginMM, MaxMarginMM)
		}
	}
	return nil
}

// inches converts the margins for the PDF printer.
func (m PageMargins) inches() (top, right, bottom, left float64) {
	return m.Top / mmPerInch, m.Right / mmPerInch, m.Bottom / mmPerInch, m.Left / mmPerInch
}

// DefaultSignatory is printed when no signatory is given.
const DefaultSignatory = "Unknown"

// RenderOptions are per-call rendering choices shared by every document of
// one export.
type RenderOptions struct {
	// IncludeImages controls whether gel images are embedded. Nil means true.
	IncludeImages *bool `json:"includeImages,omitempty"`
	// CertifiedBy is the signatory. Blank renders DefaultSignatory.
	CertifiedBy string `json:"certifiedBy,omitempty"`
	// ProjectName is accepted for compatibility and not rendered.
	ProjectName string `json:"projectName,omitempty"`
	// Date is the release and test date. Zero renders "N/A".
	// The Converter fills it from its clock when zero.
	Date time.Time `json:"-"`
}

// ImagesIncluded resolves IncludeImages with its default.
func (o RenderOptions) ImagesIncluded() bool {
	return o.IncludeImages == nil || *o.IncludeImages
}

// Signatory returns the trimmed signatory or DefaultSignatory.
func (o RenderOptions) Signatory() string {
	if s := strings.TrimSpace(o.CertifiedBy); s != "" {
		return s
	}
	return DefaultSignatory
}

// BoolPtr returns a pointer to b. Convenient for RenderOptions.IncludeImages.
func BoolPtr(b bool) *bool {
	return &b
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout  time.Duration
	margins  PageMargins
	engine   EngineConfig
	branding Branding
	now      func() time.Time
	logger   *zap.Logger
	launcher EngineLauncher
}

// defaultTimeout bounds a single document render.
const defaultTimeout = 30 * time.Second

// WithRenderTimeout sets the per-document render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("coa2pdf: WithRenderTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithPageMargins overrides DefaultPageMargins. Invalid margins are reported
// by NewConverter.
func WithPageMargins(m PageMargins) Option {
	return func(c *Converter) {
		c.cfg.margins = m
	}
}

// WithEngineConfig sets browser launch settings for the default go-rod
// launcher. Ignored when WithLauncher is used.
func WithEngineConfig(ec EngineConfig) Option {
	return func(c *Converter) {
		c.cfg.engine = ec
	}
}

// WithLauncher replaces the go-rod launcher, typically with a fake in tests.
func WithLauncher(l EngineLauncher) Option {
	return func(c *Converter) {
		c.cfg.launcher = l
	}
}

// WithBranding sets the letterhead and configurable texts.
func WithBranding(b Branding) Option {
	return func(c *Converter) {
		c.cfg.branding = b
	}
}

// WithClock injects the clock used to stamp release dates.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}
