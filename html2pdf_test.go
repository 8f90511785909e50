package coa2pdf

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestEngineConfig_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		cfg         EngineConfig
		wantBin     string
		wantSandbox bool
	}{
		{
			name:    "explicit bin wins",
			env:     map[string]string{"ROD_BROWSER_BIN": "/env/chrome"},
			cfg:     EngineConfig{BrowserBin: "/cfg/chrome"},
			wantBin: "/cfg/chrome",
		},
		{
			name:    "env bin fallback",
			env:     map[string]string{"ROD_BROWSER_BIN": "/env/chrome"},
			wantBin: "/env/chrome",
		},
		{
			name:        "CI disables sandbox",
			env:         map[string]string{"CI": "true"},
			wantSandbox: true,
		},
		{
			name:        "ROD_NO_SANDBOX disables sandbox",
			env:         map[string]string{"ROD_NO_SANDBOX": "1"},
			wantSandbox: true,
		},
		{
			name:        "config keeps no-sandbox",
			cfg:         EngineConfig{NoSandbox: true},
			wantSandbox: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"ROD_BROWSER_BIN", "CI", "ROD_NO_SANDBOX"} {
				t.Setenv(k, tt.env[k])
			}

			got := tt.cfg.resolve()
			if got.BrowserBin != tt.wantBin {
				t.Errorf("BrowserBin = %q, want %q", got.BrowserBin, tt.wantBin)
			}
			if got.NoSandbox != tt.wantSandbox {
				t.Errorf("NoSandbox = %v, want %v", got.NoSandbox, tt.wantSandbox)
			}
		})
	}
}

func TestPrintOptions(t *testing.T) {
	t.Parallel()

	e := &rodEngine{margins: DefaultPageMargins()}
	opts := e.printOptions()

	if *opts.PaperWidth != A4WidthInches || *opts.PaperHeight != A4HeightInches {
		t.Errorf("paper = %vx%v, want A4", *opts.PaperWidth, *opts.PaperHeight)
	}
	if math.Abs(*opts.MarginTop-10/mmPerInch) > 1e-9 || math.Abs(*opts.MarginLeft-12/mmPerInch) > 1e-9 {
		t.Errorf("margins = top %v left %v", *opts.MarginTop, *opts.MarginLeft)
	}
	if *opts.MarginBottom != 0 {
		t.Errorf("bottom margin = %v, want 0", *opts.MarginBottom)
	}
	if !opts.PrintBackground || !opts.PreferCSSPageSize {
		t.Error("backgrounds and CSS page size must be enabled")
	}
}

func TestRodEngine_Closed(t *testing.T) {
	t.Parallel()

	e := &rodEngine{timeout: time.Second}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := e.Render(context.Background(), "<p>x</p>"); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Render() after Close error = %v, want ErrEngineClosed", err)
	}
}

func TestLaunchErr(t *testing.T) {
	t.Parallel()

	cause := errors.New("websocket closed")

	live := context.Background()
	if err := launchErr(live, cause); !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("launchErr(live) = %v, want ErrBrowserConnect", err)
	}

	done, cancel := context.WithCancel(context.Background())
	cancel()
	err := launchErr(done, cause)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("launchErr(canceled) = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrBrowserConnect) {
		t.Errorf("launchErr(canceled) = %v, should not wrap ErrBrowserConnect", err)
	}
}

func TestRodLauncher_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := newRodLauncher(EngineConfig{}, time.Second, DefaultPageMargins())
	if _, err := l.Launch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
}
