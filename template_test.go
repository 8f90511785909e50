package coa2pdf

// Notes:
// - Assertions count stable markers from the embedded template
//   (class="result", "page-break attachment") instead of comparing whole
//   documents, so stylesheet edits do not break these tests.
// - tinyPNG is a valid 1x1 PNG so imageSource sniffing accepts it.

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var fixedDate = time.Date(2025, time.March, 4, 15, 30, 0, 0, time.UTC)

func newTestRenderer(t *testing.T, b Branding) *Renderer {
	t.Helper()
	r, err := NewRenderer(b)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, coa COA, opts RenderOptions) string {
	t.Helper()
	html, err := r.Render(coa, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return html
}

// ---------------------------------------------------------------------------
// TestRender - Document structure
// ---------------------------------------------------------------------------

func TestRender_NoSiteSinglePage(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultBranding())
	html := render(t, r, completeCOA("ORD1"), RenderOptions{CertifiedBy: "J. Doe", Date: fixedDate})

	if strings.Contains(html, "page-break attachment") {
		t.Error("record without recognition site must not have an attachment page")
	}
	if got := strings.Count(html, `class="result"`); got != BaselineQCCount {
		t.Errorf("QC rows = %d, want %d", got, BaselineQCCount)
	}

	for _, want := range []string{
		"Certificate of Analysis",
		"ORD1", "CL1", "SAMP1", "pUC19", "Amp", "EcoRI", "1200", "Cloning", "LabelA", "DH5a",
		"≥ 2ug",
		"2025/03/04",
		"J. Doe",
		"ATANTARES",
		"The Molecular Passion",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestRender_AttachmentWithPlaceholders(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.RecognitionSite = StringPtr("HindIII")

	r := newTestRenderer(t, DefaultBranding())
	html := render(t, r, coa, RenderOptions{Date: fixedDate})

	if got := strings.Count(html, "page-break attachment"); got != 1 {
		t.Errorf("attachment pages = %d, want 1", got)
	}
	if got := strings.Count(html, ImagePlaceholder); got != 2 {
		t.Errorf("placeholders = %d, want 2", got)
	}
	if !strings.Contains(html, "HindIII digested") {
		t.Error("lane 2 should describe the digest")
	}
	if !strings.Contains(html, "DNA Ladder") || !strings.Contains(html, "Undigested") {
		t.Error("lane table incomplete")
	}
	if got := strings.Count(html, DefaultSignatory); got != 2 {
		t.Errorf("signatory occurrences = %d, want 2 (release and test)", got)
	}
}

func TestRender_Images(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.RecognitionSite = StringPtr("EcoRI")
	coa.Image1 = tinyPNG
	coa.Image2 = "data:image/png;base64," + tinyPNG

	r := newTestRenderer(t, DefaultBranding())

	tests := []struct {
		name             string
		include          *bool
		wantPlaceholders int
		wantImgs         int
	}{
		{"default includes images", nil, 0, 2},
		{"explicitly included", BoolPtr(true), 0, 2},
		{"excluded", BoolPtr(false), 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			html := render(t, r, coa, RenderOptions{IncludeImages: tt.include, Date: fixedDate})
			if got := strings.Count(html, ImagePlaceholder); got != tt.wantPlaceholders {
				t.Errorf("placeholders = %d, want %d", got, tt.wantPlaceholders)
			}
			if got := strings.Count(html, "data:image/png;base64,"+tinyPNG); got != tt.wantImgs {
				t.Errorf("embedded images = %d, want %d", got, tt.wantImgs)
			}
		})
	}
}

func TestRender_RejectsNonImagePayloads(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.RecognitionSite = StringPtr("EcoRI")
	coa.Image1 = "javascript:alert(1)"
	coa.Image2 = "data:text/html;base64,PHNjcmlwdD4="

	html := render(t, newTestRenderer(t, DefaultBranding()), coa, RenderOptions{Date: fixedDate})

	if got := strings.Count(html, ImagePlaceholder); got != 2 {
		t.Errorf("placeholders = %d, want 2", got)
	}
	if strings.Contains(html, "javascript:") || strings.Contains(html, "data:text/html") {
		t.Error("non-image payload leaked into the document")
	}
}

func TestRender_Experiments(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.Experiments = []Experiment{
		{ID: "e1", QCItems: "Endotoxin", Method: "LAL", AcceptanceCriteria: "< 0.1 EU/ug", Status: StatusPass},
		{ID: "e2", Status: StatusFail},
	}

	html := render(t, newTestRenderer(t, DefaultBranding()), coa, RenderOptions{Date: fixedDate})

	if got := strings.Count(html, `class="result"`); got != BaselineQCCount+2 {
		t.Errorf("QC rows = %d, want %d", got, BaselineQCCount+2)
	}
	if !strings.Contains(html, "Endotoxin") || !strings.Contains(html, "&lt; 0.1 EU/ug") {
		t.Error("experiment row not rendered")
	}
	if !strings.Contains(html, `<td class="result">Fail</td>`) {
		t.Error("failed experiment should render Fail")
	}
}

func TestRender_UnknownStatus(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.Experiments = []Experiment{NewExperiment("e1"), {ID: "e2", Status: "bogus"}}

	_, err := newTestRenderer(t, DefaultBranding()).Render(coa, RenderOptions{Date: fixedDate})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Render() error = %v, want ErrInvalidStatus", err)
	}
}

// ---------------------------------------------------------------------------
// TestRender - Fallbacks and escaping
// ---------------------------------------------------------------------------

func TestRender_NotAvailable(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.ClonePosition = ""
	coa.Label = "  "

	html := render(t, newTestRenderer(t, DefaultBranding()), coa, RenderOptions{})

	// cloning sites, label, release date
	if got := strings.Count(html, NotAvailable); got != 3 {
		t.Errorf("N/A occurrences = %d, want 3", got)
	}
	if !strings.Contains(html, DefaultSignatory) {
		t.Error("blank signatory should render the default")
	}
}

func TestRender_EscapesRecordText(t *testing.T) {
	t.Parallel()

	coa := completeCOA("<script>alert(1)</script>")
	coa.SampleName = `"><img src=x onerror=alert(1)>`

	html := render(t, newTestRenderer(t, DefaultBranding()), coa, RenderOptions{CertifiedBy: "<b>Boss</b>"})

	for _, bad := range []string{"<script>alert", "<img src=x", "<b>Boss</b>"} {
		if strings.Contains(html, bad) {
			t.Errorf("document contains unescaped %q", bad)
		}
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("order ID should appear escaped")
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	coa := completeCOA("ORD1")
	coa.RecognitionSite = StringPtr("HindIII")
	opts := RenderOptions{CertifiedBy: "J. Doe", Date: fixedDate}
	r := newTestRenderer(t, DefaultBranding())

	if render(t, r, coa, opts) != render(t, r, coa, opts) {
		t.Error("equal inputs produced different documents")
	}
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Branding
// ---------------------------------------------------------------------------

func TestNewRenderer_Branding(t *testing.T) {
	t.Parallel()

	b := Branding{
		CompanyName: "Acme Bio",
		Slogan:      "Plasmids done right",
		Logo:        tinyPNG,
		FontFamily:  "Noto Sans",
		DateFormat:  "european",
		Conclusion:  "Meets **all** specifications.",
		IntendedUse: "Research use only.",
	}

	html := render(t, newTestRenderer(t, b), completeCOA("ORD1"), RenderOptions{Date: fixedDate})

	for _, want := range []string{
		"Acme Bio",
		"Plasmids done right",
		`class="logo"`,
		`"Noto Sans"`,
		"04/03/2025",
		"<strong>all</strong>",
		"Research use only.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestNewRenderer_DefaultTexts(t *testing.T) {
	t.Parallel()

	html := render(t, newTestRenderer(t, Branding{}), completeCOA("ORD1"), RenderOptions{Date: fixedDate})

	if !strings.Contains(html, "ATANTARES") {
		t.Error("blank company name should fall back to the default")
	}
	if !strings.Contains(html, "*Intended Use: For research use only.") {
		t.Error("default intended-use footer missing")
	}
	if !strings.Contains(html, "established quality control") {
		t.Error("default conclusion missing")
	}
}

func TestNewRenderer_InvalidBranding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    Branding
	}{
		{"font family with css injection", Branding{FontFamily: "x; } body { display:none"}},
		{"logo is not an image", Branding{Logo: "data:text/plain;base64,aGk="}},
		{"logo is a remote url", Branding{Logo: "https://example.com/logo.png"}},
		{"unclosed date bracket", Branding{DateFormat: "[YYYY"}},
		{"assets dir missing", Branding{AssetsDir: "/nonexistent/coa2pdf/assets"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRenderer(tt.b)
			if !errors.Is(err, ErrInvalidBranding) {
				t.Errorf("NewRenderer() error = %v, want ErrInvalidBranding", err)
			}
		})
	}
}

func TestImageSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantOK  bool
	}{
		{"bare png", tinyPNG, true},
		{"png data uri", "data:image/png;base64," + tinyPNG, true},
		{"padded whitespace", "  " + tinyPNG + "\n", true},
		{"empty", "", false},
		{"not base64", "not base64!", false},
		{"base64 text", "aGVsbG8gd29ybGQ=", false},
		{"data uri without base64", "data:image/png," + tinyPNG, false},
		{"data uri bad payload", "data:image/png;base64,@@@", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, ok := imageSource(tt.payload)
			if ok != tt.wantOK {
				t.Fatalf("imageSource() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !strings.HasPrefix(string(src), "data:image/") {
				t.Errorf("imageSource() = %q, want data:image URI", src)
			}
		})
	}
}
