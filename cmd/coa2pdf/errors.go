package main

import "errors"

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no input specified")
	ErrReadInput      = errors.New("failed to read input")
	ErrWriteOutput    = errors.New("failed to write output")
	ErrIndexRange     = errors.New("record index out of range")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrNoSink         = errors.New("no archive sink configured")
	ErrUpload         = errors.New("failed to upload archive")
	ErrArchiveMissing = errors.New("archive not found")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)
