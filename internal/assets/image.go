package assets

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxImageSize bounds logo files read by LoadImage.
const MaxImageSize = 2 << 20

// LoadImage reads an image file and returns it as a data URI suitable for an
// <img> src attribute. The content type is sniffed, not taken from the
// extension. SVG files are accepted by extension since sniffing reports XML.
func LoadImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if info.Size() > MaxImageSize {
		return "", fmt.Errorf("%w: %s is %d bytes (max %d)", ErrImageTooLarge, path, info.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	return ImageDataURI(data, strings.HasSuffix(strings.ToLower(path), ".svg"))
}

// ImageDataURI encodes raw image bytes as a base64 data URI.
func ImageDataURI(data []byte, svg bool) (string, error) {
	contentType := http.DetectContentType(data)
	if svg {
		contentType = "image/svg+xml"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
