package coa2pdf_test

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-coa2pdf"
)

// Example ingests one spreadsheet row and renders its HTML document.
// Producing PDF bytes with Convert or Export requires Chrome.
func Example() {
	res, err := coa2pdf.Ingest("ORD1\tCL1\tSAMP1\tpUC19\tAmp\tEcoRI\t1200\tCloning\tLabelA\tDH5a\tHindIII", coa2pdf.FirstID)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	conv, err := coa2pdf.NewConverter()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	html, err := conv.RenderHTML(res.Records[0], coa2pdf.RenderOptions{
		CertifiedBy: "J. Doe",
		Date:        time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("id:", res.Records[0].ID)
	fmt.Println("attachment:", strings.Contains(html, "HindIII digested"))
	// Output:
	// id: 1
	// attachment: true
}

// ExampleIngest shows the all-or-nothing row validation.
func ExampleIngest() {
	_, err := coa2pdf.Ingest("ORD1\tCL1", coa2pdf.FirstID)

	var ingestErr *coa2pdf.IngestError
	if errors.As(err, &ingestErr) {
		for _, msg := range ingestErr.Messages() {
			fmt.Println(msg)
		}
	}
	// Output: row 1: required field(s) empty: sampleName, vector, resistance, length, specifications, competence
}

// ExampleArchiveName shows the download name of an export.
func ExampleArchiveName() {
	fmt.Println(coa2pdf.ArchiveName(time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)))
	fmt.Println(coa2pdf.BatchEntryName(1, "ORD1"))
	// Output:
	// COAs_Export_2025-03-04.zip
	// COA_001_ORD1.pdf
}
