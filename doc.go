// Package coa2pdf turns Certificate of Analysis (COA) records into PDF
// documents using headless Chrome and bundles them into ZIP archives.
//
// # Quick Start
//
// Ingest spreadsheet rows, export them, and write the archive:
//
//	res, err := coa2pdf.Ingest(tsv, coa2pdf.FirstID)
//	if err != nil {
//	    log.Fatal(err) // *coa2pdf.IngestError lists every bad row
//	}
//
//	conv, err := coa2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var buf bytes.Buffer
//	_, err = conv.Export(ctx, &buf, res.Records, coa2pdf.RenderOptions{
//	    CertifiedBy: "J. Doe",
//	})
//
// # Pipeline
//
//  1. Ingest parses 11-column tab-separated rows into records, all or nothing.
//  2. Renderer builds a self-contained HTML document per record
//     (html/template, embedded stylesheet, images as data URIs).
//  3. An Engine prints the HTML to A4 PDF. The default engine is go-rod.
//  4. Pack writes the documents into a ZIP archive in input order.
//
// # Engine Lifecycle
//
// Every Convert, ConvertBatch or Export call launches exactly one engine and
// closes it before returning, on success, failure or cancellation. Engines
// are never shared between calls. Use a Limiter to bound how many calls run
// at once.
//
// # Attachments
//
// A record with a recognition site gets a second page with two gel image
// slots and a lane table. Missing images render a placeholder; use
// COA.ExportReady or CheckExport to refuse such records before rendering.
package coa2pdf
