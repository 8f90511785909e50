package coa2pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ColumnCount is the fixed number of tab-separated columns per row.
const ColumnCount = 11

// FirstID is the first identifier handed out in a session.
const FirstID uint64 = 1

// MaxTabularBytes bounds the size of tabular input read by ReadTabular.
const MaxTabularBytes = 8 << 20

// Columns lists the tabular schema in wire order. The order is a de facto
// interchange format with spreadsheet tools and must not change.
var Columns = [ColumnCount]string{
	"orderId",
	"cloneName",
	"sampleName",
	"vector",
	"resistance",
	"clonePosition",
	"length",
	"specifications",
	"label",
	"competence",
	"recognitionSite",
}

// RowError describes why one input row was rejected. Row is 1-based.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return e.Message
}

func (e RowError) Unwrap() error {
	return ErrInvalidRow
}

// IngestError aggregates every rejected row of one ingestion call.
type IngestError struct {
	Rows []RowError
}

func (e *IngestError) Error() string {
	msgs := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		msgs[i] = r.Message
	}
	return fmt.Sprintf("invalid tabular data, %d problem(s): %s", len(e.Rows), strings.Join(msgs, "; "))
}

func (e *IngestError) Unwrap() error {
	return ErrInvalidRow
}

// Messages returns the per-row messages in input order.
func (e *IngestError) Messages() []string {
	msgs := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		msgs[i] = r.Message
	}
	return msgs
}

// IngestResult is the outcome of a successful ingestion.
// Next is the identifier to pass to the following call.
type IngestResult struct {
	Records []COA
	Next    uint64
}

// Ingest parses pasted tab-separated text into records.
//
// The call is all-or-nothing: if any row is invalid it returns an
// *IngestError listing every bad row and no records. Identifiers are
// assigned from next (FirstID when zero) and the advanced counter is
// returned only on success.
func Ingest(text string, next uint64) (IngestResult, error) {
	if next == 0 {
		next = FirstID
	}

	lines := candidateLines(text)
	if len(lines) == 0 {
		return IngestResult{}, ErrNoRows
	}

	records := make([]COA, 0, len(lines))
	var rowErrs []RowError

	for i, line := range lines {
		coa, rowErr := parseRow(i+1, line)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		records = append(records, coa)
	}

	if len(rowErrs) > 0 {
		return IngestResult{}, &IngestError{Rows: rowErrs}
	}
	if len(records) == 0 {
		return IngestResult{}, ErrNoRows
	}

	for i := range records {
		records[i].ID = strconv.FormatUint(next, 10)
		next++
	}

	return IngestResult{Records: records, Next: next}, nil
}

// candidateLines splits text into rows after dropping whitespace-only lines
// at either end. Interior blank lines are kept so they are reported, and
// tabs inside the first and last rows survive because only whole lines are
// removed.
func candidateLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseRow validates one line and builds a record without an identifier.
func parseRow(row int, line string) (COA, *RowError) {
	if strings.TrimSpace(line) == "" {
		return COA{}, &RowError{Row: row, Message: fmt.Sprintf("row %d is empty", row)}
	}

	cols := strings.Split(line, "\t")
	if len(cols) > ColumnCount {
		return COA{}, &RowError{
			Row:     row,
			Message: fmt.Sprintf("row %d: expected %d columns, found %d", row, ColumnCount, len(cols)),
		}
	}
	for len(cols) < ColumnCount {
		cols = append(cols, "")
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	coa := COA{
		OrderID:        cols[0],
		CloneName:      cols[1],
		SampleName:     cols[2],
		Vector:         cols[3],
		Resistance:     cols[4],
		ClonePosition:  cols[5],
		Length:         cols[6],
		Specifications: cols[7],
		Label:          cols[8],
		Competence:     cols[9],
		State:          StateUnused,
	}
	if site := cols[10]; site != "" {
		coa.RecognitionSite = &site
	}

	if missing := coa.missingFields(); len(missing) > 0 {
		return COA{}, &RowError{
			Row:     row,
			Message: fmt.Sprintf("row %d: required field(s) empty: %s", row, strings.Join(missing, ", ")),
		}
	}

	return coa, nil
}

// IDSequence hands out record identifiers for a long-lived session.
// The counter only advances when an ingestion succeeds, so identifiers are
// never reused. Safe for concurrent use.
type IDSequence struct {
	mu   sync.Mutex
	next uint64
}

// NewIDSequence creates a sequence starting at FirstID.
func NewIDSequence() *IDSequence {
	return &IDSequence{next: FirstID}
}

// Next returns the identifier the next successful ingestion will start at.
func (s *IDSequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next == 0 {
		return FirstID
	}
	return s.next
}

// Ingest parses text with the sequence's counter and commits the advanced
// counter on success.
func (s *IDSequence) Ingest(text string) (IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := Ingest(text, s.next)
	if err != nil {
		return IngestResult{}, err
	}
	s.next = res.Next
	return res, nil
}

// ReadTabular reads spreadsheet text from r. UTF-8 with or without a BOM and
// BOM-prefixed UTF-16 (spreadsheet "Unicode Text" exports) are accepted.
// The result is NFC-normalised so visually equal cells compare equal.
func ReadTabular(r io.Reader) (string, error) {
	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	limited := io.LimitReader(r, MaxTabularBytes+1)

	data, err := io.ReadAll(transform.NewReader(limited, decoder))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeInput, err)
	}
	if len(data) > MaxTabularBytes {
		return "", fmt.Errorf("%w: input exceeds %d bytes", ErrDecodeInput, MaxTabularBytes)
	}

	return norm.NFC.String(string(data)), nil
}
