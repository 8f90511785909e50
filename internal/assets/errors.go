package assets

import "errors"

var (
	// ErrAssetNotFound indicates the requested style or template does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetName indicates the asset name contains separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the custom assets directory is unusable.
	ErrInvalidBasePath = errors.New("invalid assets directory")

	// ErrAssetRead indicates an I/O error while reading an asset or logo.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates a resolved path escapes the assets directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnsupportedImage indicates a logo file is not a recognised image.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge indicates a logo file exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image too large")
)
