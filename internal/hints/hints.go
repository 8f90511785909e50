// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-coa2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && !sandboxDisabled() {
		hints = append(hints, "set COA2PDF_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("COA2PDF_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set COA2PDF_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

func sandboxDisabled() bool {
	return os.Getenv("COA2PDF_NO_SANDBOX") == "1" || os.Getenv("ROD_NO_SANDBOX") == "1"
}

// ForTimeout returns a hint about increasing the per-document render timeout.
func ForTimeout() string {
	return format("large gel images slow rendering, use --timeout or COA2PDF_RENDER_TIMEOUT")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/coa2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/coa2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForIngest returns hints for rejected tabular input.
func ForIngest() string {
	return format("copy cells straight from the spreadsheet: 11 tab-separated columns, recognition site last")
}

// ForMissingImages returns hints for records blocked by the image gate.
func ForMissingImages() string {
	return format("records with a recognition site need image1 and image2, or pass --allow-missing-images")
}

// ForLogo returns hints for unreadable logo files.
func ForLogo() string {
	return format("supported formats: PNG, JPG, GIF, WEBP, SVG up to 2MB")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
