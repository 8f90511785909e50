package coa2pdf

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// TestPageMargins - Validation and conversion
// ---------------------------------------------------------------------------

func TestPageMargins_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		m       PageMargins
		wantErr bool
	}{
		{"defaults", DefaultPageMargins(), false},
		{"all zero", PageMargins{}, false},
		{"upper bound", PageMargins{Top: MaxMarginMM, Right: MaxMarginMM, Bottom: MaxMarginMM, Left: MaxMarginMM}, false},
		{"top over", PageMargins{Top: MaxMarginMM + 0.1}, true},
		{"bottom negative", PageMargins{Bottom: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.m.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMargin) {
				t.Errorf("Validate() error = %v, want ErrInvalidMargin", err)
			}
		})
	}
}

func TestPageMargins_Inches(t *testing.T) {
	t.Parallel()

	top, right, bottom, left := PageMargins{Top: 25.4, Right: 12.7, Bottom: 0, Left: 50.8}.inches()
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"top", top, 1},
		{"right", right, 0.5},
		{"bottom", bottom, 0},
		{"left", left, 2},
	} {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderOptions - Defaults
// ---------------------------------------------------------------------------

func TestRenderOptions(t *testing.T) {
	t.Parallel()

	var zero RenderOptions
	if !zero.ImagesIncluded() {
		t.Error("nil IncludeImages should default to true")
	}
	if zero.Signatory() != DefaultSignatory {
		t.Errorf("Signatory() = %q, want %q", zero.Signatory(), DefaultSignatory)
	}

	opts := RenderOptions{IncludeImages: BoolPtr(false), CertifiedBy: "  J. Doe "}
	if opts.ImagesIncluded() {
		t.Error("IncludeImages=false should be honoured")
	}
	if opts.Signatory() != "J. Doe" {
		t.Errorf("Signatory() = %q, want trimmed", opts.Signatory())
	}
}

// ---------------------------------------------------------------------------
// TestOptions - Functional options
// ---------------------------------------------------------------------------

func TestWithRenderTimeout_Panics(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithRenderTimeout(%v) did not panic", d)
				}
			}()
			WithRenderTimeout(d)
		}()
	}
}

func TestOptions_Apply(t *testing.T) {
	t.Parallel()

	logger := zap.NewExample()
	clock := func() time.Time { return fixedDate }
	ec := EngineConfig{BrowserBin: "/usr/bin/chromium", NoSandbox: true}

	c := &Converter{}
	for _, opt := range []Option{
		WithRenderTimeout(5 * time.Second),
		WithPageMargins(PageMargins{Top: 1}),
		WithEngineConfig(ec),
		WithClock(clock),
		WithLogger(logger),
		WithClock(nil),
		WithLogger(nil),
	} {
		opt(c)
	}

	if c.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v", c.cfg.timeout)
	}
	if c.cfg.margins.Top != 1 {
		t.Errorf("margins = %+v", c.cfg.margins)
	}
	if c.cfg.engine.BrowserBin != ec.BrowserBin || !c.cfg.engine.NoSandbox {
		t.Errorf("engine = %+v", c.cfg.engine)
	}
	if c.cfg.now == nil || !c.cfg.now().Equal(fixedDate) {
		t.Error("nil clock should not replace the configured one")
	}
	if c.cfg.logger != logger {
		t.Error("nil logger should not replace the configured one")
	}
}
