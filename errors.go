package coa2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Ingestion errors.
	ErrNoRows      = errors.New("no rows found in tabular input")
	ErrInvalidRow  = errors.New("invalid row")
	ErrDecodeInput = errors.New("failed to decode tabular input")

	// Record validation errors.
	ErrRequiredField = errors.New("required field is empty")
	ErrInvalidStatus = errors.New("invalid experiment status")
	ErrMissingImages = errors.New("recognition site requires both images")
	ErrMissingSigner = errors.New("signatory is required for export")

	// Rendering errors.
	ErrTemplateRender  = errors.New("certificate template rendering failed")
	ErrInvalidMargin   = errors.New("invalid page margin")
	ErrNoRecords       = errors.New("no COA records provided")
	ErrInvalidBranding = errors.New("invalid branding")

	// Engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRenderTimeout  = errors.New("render timed out")
	ErrEngineClosed   = errors.New("rendering engine is closed")

	// Packaging errors.
	ErrEmptyEntryName = errors.New("archive entry name cannot be empty")
	ErrDuplicateEntry = errors.New("duplicate archive entry name")
	ErrArchiveWrite   = errors.New("failed to write archive")
)
