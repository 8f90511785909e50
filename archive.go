package coa2pdf

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-coa2pdf/internal/dateutil"
)

// ArchivePrefix starts every export archive name.
const ArchivePrefix = "COAs_Export_"

var isoLayout = mustLayout(dateutil.ISODateFormat)

func mustLayout(format string) string {
	layout, err := dateutil.Layout(format)
	if err != nil {
		panic(err)
	}
	return layout
}

// BatchEntryName names the i-th (1-based) document of a batch:
// COA_<3-digit index>_<orderId>.pdf. The index keeps names unique when
// order IDs repeat.
func BatchEntryName(i int, orderID string) string {
	return fmt.Sprintf("COA_%03d_%s.pdf", i, safeNamePart(orderID))
}

// TimestampEntryName is the alternate scheme COA_<orderId>_<unix millis>.pdf.
// It does not guarantee uniqueness within one archive.
func TimestampEntryName(orderID string, t time.Time) string {
	return fmt.Sprintf("COA_%s_%d.pdf", safeNamePart(orderID), t.UnixMilli())
}

// ArchiveName is the download name for an export made at t. The date is
// taken in UTC, like the archive sink's date folders.
func ArchiveName(t time.Time) string {
	return ArchivePrefix + t.UTC().Format(isoLayout) + ".zip"
}

// safeNamePart keeps an order ID from introducing directories into the
// archive or a download name.
func safeNamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = NotAvailable
	}
	return strings.NewReplacer("/", "_", "\\", "_", "\x00", "_").Replace(s)
}

// Pack writes docs into w as a deflate-compressed ZIP, entries in the given
// order and named verbatim. Empty or duplicate names are rejected before
// anything is written.
func Pack(w io.Writer, docs []Document) error {
	if len(docs) == 0 {
		return ErrNoRecords
	}

	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyEntryName, i+1)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	zw := zip.NewWriter(w)
	for _, d := range docs {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: d.Name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
		}
		if _, err := f.Write(d.Data); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrArchiveWrite, d.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	return nil
}

// PackBytes is Pack into memory.
func PackBytes(docs []Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Pack(&buf, docs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
