package coa2pdf

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNames - Entry and archive naming
// ---------------------------------------------------------------------------

func TestBatchEntryName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		i       int
		orderID string
		want    string
	}{
		{1, "ORD1", "COA_001_ORD1.pdf"},
		{42, "X-9", "COA_042_X-9.pdf"},
		{1000, "A", "COA_1000_A.pdf"},
		{3, "", "COA_003_N_A.pdf"},
		{4, "../etc/passwd", "COA_004_.._etc_passwd.pdf"},
		{5, `a\b`, "COA_005_a_b.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := BatchEntryName(tt.i, tt.orderID); got != tt.want {
				t.Errorf("BatchEntryName(%d, %q) = %q, want %q", tt.i, tt.orderID, got, tt.want)
			}
		})
	}
}

func TestTimestampEntryName(t *testing.T) {
	t.Parallel()

	ts := time.UnixMilli(1741102200123)
	if got := TimestampEntryName("ORD1", ts); got != "COA_ORD1_1741102200123.pdf" {
		t.Errorf("TimestampEntryName() = %q", got)
	}
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	if got := ArchiveName(fixedDate); got != "COAs_Export_2025-03-04.zip" {
		t.Errorf("ArchiveName() = %q", got)
	}

	// Local evening times on the 4th fall on either UTC date.
	lateParis := time.Date(2025, 3, 4, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	if got := ArchiveName(lateParis); got != "COAs_Export_2025-03-04.zip" {
		t.Errorf("ArchiveName(late CET) = %q, want the UTC date", got)
	}
	lateLA := time.Date(2025, 3, 4, 20, 0, 0, 0, time.FixedZone("PST", -8*3600))
	if got := ArchiveName(lateLA); got != "COAs_Export_2025-03-05.zip" {
		t.Errorf("ArchiveName(late PST) = %q, want the UTC date", got)
	}
}

// ---------------------------------------------------------------------------
// TestPack - ZIP packaging
// ---------------------------------------------------------------------------

func TestPack(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Name: "z.pdf", Data: []byte("%PDF-z")},
		{Name: "a.pdf", Data: []byte("%PDF-a")},
		{Name: "m.pdf", Data: bytes.Repeat([]byte("x"), 4096)},
	}

	data, err := PackBytes(docs)
	if err != nil {
		t.Fatalf("PackBytes() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	if len(zr.File) != len(docs) {
		t.Fatalf("entries = %d, want %d", len(zr.File), len(docs))
	}
	for i, f := range zr.File {
		if f.Name != docs[i].Name {
			t.Errorf("entry %d = %q, want %q", i, f.Name, docs[i].Name)
		}
		if f.Method != zip.Deflate {
			t.Errorf("entry %s method = %d, want deflate", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		_ = rc.Close()
		if !bytes.Equal(got, docs[i].Data) {
			t.Errorf("entry %s content mismatch", f.Name)
		}
	}
}

func TestPack_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		docs    []Document
		wantErr error
	}{
		{"no documents", nil, ErrNoRecords},
		{"empty name", []Document{{Name: "a.pdf"}, {Name: " "}}, ErrEmptyEntryName},
		{"duplicate name", []Document{{Name: "a.pdf"}, {Name: "b.pdf"}, {Name: "a.pdf"}}, ErrDuplicateEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := Pack(&buf, tt.docs); !errors.Is(err, tt.wantErr) {
				t.Errorf("Pack() error = %v, want %v", err, tt.wantErr)
			}
			if buf.Len() != 0 {
				t.Errorf("rejected pack wrote %d bytes", buf.Len())
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPack_WriteFailure(t *testing.T) {
	t.Parallel()

	err := Pack(failingWriter{}, []Document{{Name: "a.pdf", Data: bytes.Repeat([]byte("x"), 1<<16)}})
	if !errors.Is(err, ErrArchiveWrite) {
		t.Errorf("Pack() error = %v, want ErrArchiveWrite", err)
	}
}
