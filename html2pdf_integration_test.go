//go:build integration

package coa2pdf

// Notes:
// - Requires Chrome/Chromium. Set ROD_BROWSER_BIN to use a system binary and
//   ROD_NO_SANDBOX=1 inside containers.
// - Each test launches its own engine, mirroring production use.

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}

	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

var pageObject = regexp.MustCompile(`/Type\s*/Page[^s]`)

// pageCount counts page objects. Zero means the page tree was compressed.
func pageCount(data []byte) int {
	return len(pageObject.FindAll(data, -1))
}

func newIntegrationConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter(WithRenderTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return c
}

func TestIntegration_Convert(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newIntegrationConverter(t)

	plain, err := c.Convert(ctx, completeCOA("ORD1"), RenderOptions{CertifiedBy: "J. Doe"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	assertValidPDF(t, plain)

	withSite := completeCOA("ORD2")
	withSite.RecognitionSite = StringPtr("HindIII")
	attached, err := c.Convert(ctx, withSite, RenderOptions{CertifiedBy: "J. Doe"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	assertValidPDF(t, attached)

	if n := pageCount(plain); n != 0 && pageCount(attached) <= n {
		t.Errorf("attachment should add a page: %d vs %d", pageCount(attached), n)
	}
}

func TestIntegration_Export(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newIntegrationConverter(t)

	var buf bytes.Buffer
	summary, err := c.Export(ctx, &buf, []COA{completeCOA("A"), completeCOA("B")}, RenderOptions{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if summary.Documents != 2 {
		t.Errorf("Documents = %d, want 2", summary.Documents)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var pdf bytes.Buffer
		_, _ = pdf.ReadFrom(rc)
		_ = rc.Close()
		assertValidPDF(t, pdf.Bytes())
	}
}

func TestIntegration_RenderTimeout(t *testing.T) {
	c, err := NewConverter(WithRenderTimeout(time.Nanosecond))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}

	_, err = c.Convert(context.Background(), completeCOA("ORD1"), RenderOptions{})
	if !errors.Is(err, ErrRenderTimeout) {
		t.Errorf("Convert() error = %v, want ErrRenderTimeout", err)
	}
}

func TestIntegration_LaunchCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(5*time.Millisecond, cancel)
	defer timer.Stop()

	l := newRodLauncher(EngineConfig{}, testTimeout, DefaultPageMargins())
	start := time.Now()
	eng, err := l.Launch(ctx)
	if err == nil {
		_ = eng.Close()
		t.Fatal("Launch() succeeded after cancel")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Launch() returned after %v, want prompt return on cancel", elapsed)
	}
}
