package main

import (
	"errors"
	"os"

	coa2pdf "github.com/alnah/go-coa2pdf"
	"github.com/alnah/go-coa2pdf/internal/assets"
	"github.com/alnah/go-coa2pdf/internal/config"
)

// Exit codes for the coa2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, input rows, or export gate
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, coa2pdf.ErrBrowserConnect) ||
		errors.Is(err, coa2pdf.ErrPageCreate) ||
		errors.Is(err, coa2pdf.ErrPageLoad) ||
		errors.Is(err, coa2pdf.ErrPDFGeneration) ||
		errors.Is(err, coa2pdf.ErrRenderTimeout) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrUpload) ||
		errors.Is(err, ErrArchiveMissing) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, coa2pdf.ErrArchiveWrite) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrIndexRange) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrNoSink) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, coa2pdf.ErrNoRows) ||
		errors.Is(err, coa2pdf.ErrInvalidRow) ||
		errors.Is(err, coa2pdf.ErrDecodeInput) ||
		errors.Is(err, coa2pdf.ErrRequiredField) ||
		errors.Is(err, coa2pdf.ErrInvalidStatus) ||
		errors.Is(err, coa2pdf.ErrMissingImages) ||
		errors.Is(err, coa2pdf.ErrMissingSigner) ||
		errors.Is(err, coa2pdf.ErrNoRecords) ||
		errors.Is(err, coa2pdf.ErrInvalidMargin) ||
		errors.Is(err, coa2pdf.ErrInvalidBranding) ||
		errors.Is(err, assets.ErrUnsupportedImage) ||
		errors.Is(err, assets.ErrImageTooLarge) {
		return ExitUsage
	}

	return ExitGeneral
}
