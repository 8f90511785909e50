package coa2pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Document is one rendered PDF with its archive entry name.
type Document struct {
	Name string
	Data []byte
}

// BatchError reports the record that aborted a batch. Index is 1-based.
type BatchError struct {
	Index   int
	OrderID string
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("COA %d (order %s): %v", e.Index, e.OrderID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// ExportSummary describes a packed archive.
type ExportSummary struct {
	Date      time.Time
	Documents int
	Names     []string
	PDFBytes  int64
}

// Converter renders certificates and drives the rendering engine.
//
// It holds no browser between calls: every Convert, ConvertBatch or Export
// launches one engine and closes it before returning. Safe for concurrent
// use; concurrent calls each get their own engine.
type Converter struct {
	cfg      converterConfig
	renderer *Renderer
	launcher EngineLauncher
	logger   *zap.Logger
}

// NewConverter creates a Converter. Without WithLauncher it renders through
// headless Chrome via go-rod.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:  defaultTimeout,
			margins:  DefaultPageMargins(),
			branding: DefaultBranding(),
			now:      time.Now,
			logger:   zap.NewNop(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.margins.Validate(); err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(c.cfg.branding)
	if err != nil {
		return nil, err
	}
	c.renderer = renderer
	c.logger = c.cfg.logger

	c.launcher = c.cfg.launcher
	if c.launcher == nil {
		c.launcher = newRodLauncher(c.cfg.engine, c.cfg.timeout, c.cfg.margins)
	}

	return c, nil
}

// Now reads the converter's clock.
func (c *Converter) Now() time.Time {
	return c.cfg.now()
}

// stamp fills the date from the clock once per call.
func (c *Converter) stamp(opts RenderOptions) RenderOptions {
	if opts.Date.IsZero() {
		opts.Date = c.cfg.now()
	}
	return opts
}

// RenderHTML returns the HTML document for one record without launching a
// browser.
func (c *Converter) RenderHTML(coa COA, opts RenderOptions) (string, error) {
	return c.renderer.Render(coa, c.stamp(opts))
}

// Convert renders a single record to PDF with a dedicated engine.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, coa COA, opts RenderOptions) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	opts = c.stamp(opts)
	html, err := c.renderer.Render(coa, opts)
	if err != nil {
		return nil, err
	}

	engine, err := c.launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer c.closeEngine(engine)

	start := time.Now()
	pdf, err = engine.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("converting order %s: %w", coa.OrderID, err)
	}

	c.logger.Debug("rendered certificate",
		zap.String("orderId", coa.OrderID),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pdf, nil
}

// ConvertBatch renders every record in input order behind one engine.
//
// The batch is all-or-nothing: the first failure closes the engine and
// returns a *BatchError with no documents. Entry names follow
// BatchEntryName, so records sharing an order ID still get distinct names.
func (c *Converter) ConvertBatch(ctx context.Context, coas []COA, opts RenderOptions) (docs []Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if len(coas) == 0 {
		return nil, ErrNoRecords
	}
	for i := range coas {
		if err := coas[i].CheckStatuses(); err != nil {
			return nil, &BatchError{Index: i + 1, OrderID: coas[i].OrderID, Err: err}
		}
	}
	opts = c.stamp(opts)

	engine, err := c.launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer c.closeEngine(engine)

	start := time.Now()
	docs = make([]Document, 0, len(coas))
	for i := range coas {
		if err := ctx.Err(); err != nil {
			return nil, &BatchError{Index: i + 1, OrderID: coas[i].OrderID, Err: err}
		}

		html, err := c.renderer.Render(coas[i], opts)
		if err != nil {
			return nil, &BatchError{Index: i + 1, OrderID: coas[i].OrderID, Err: err}
		}
		pdf, err := engine.Render(ctx, html)
		if err != nil {
			c.logger.Warn("batch aborted",
				zap.Int("index", i+1),
				zap.String("orderId", coas[i].OrderID),
				zap.Error(err),
			)
			return nil, &BatchError{Index: i + 1, OrderID: coas[i].OrderID, Err: err}
		}

		docs = append(docs, Document{Name: BatchEntryName(i+1, coas[i].OrderID), Data: pdf})
	}

	c.logger.Info("batch rendered",
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return docs, nil
}

// Export renders a batch and packs it into w as a ZIP archive.
// Nothing is written to w unless every record rendered.
func (c *Converter) Export(ctx context.Context, w io.Writer, coas []COA, opts RenderOptions) (ExportSummary, error) {
	opts = c.stamp(opts)

	docs, err := c.ConvertBatch(ctx, coas, opts)
	if err != nil {
		return ExportSummary{}, err
	}
	if err := Pack(w, docs); err != nil {
		return ExportSummary{}, err
	}

	summary := ExportSummary{Date: opts.Date, Documents: len(docs), Names: make([]string, len(docs))}
	for i, d := range docs {
		summary.Names[i] = d.Name
		summary.PDFBytes += int64(len(d.Data))
	}
	return summary, nil
}

// closeEngine tears the engine down. Close errors are logged only.
func (c *Converter) closeEngine(engine Engine) {
	if err := engine.Close(); err != nil {
		c.logger.Warn("closing rendering engine", zap.Error(err))
	}
}
