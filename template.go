package coa2pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"github.com/alnah/go-coa2pdf/internal/assets"
	"github.com/alnah/go-coa2pdf/internal/dateutil"
	"github.com/alnah/go-coa2pdf/internal/markdown"
)

// NotAvailable is printed for every empty field.
const NotAvailable = "N/A"

// ImagePlaceholder is printed in an image slot without a usable image.
const ImagePlaceholder = "Image not available"

// Fixed certificate texts.
const (
	yieldSpec   = "≥ 2ug"
	storageInfo = "Plasmid: -20°C, Stab culture: 4°C, Glycerol stock: -80°C"

	defaultConclusion = "The document certifies that the gene product described has been " +
		"manufactured and tested in accordance with established quality control " +
		"procedures and meets the specifications outlined in this certificate."
	defaultIntendedUse = "\\*Intended Use: For research use only. " +
		"Suitable for cloning, sequencing, and expression studies."
)

// Branding is the letterhead and the configurable texts of a certificate.
// Conclusion and IntendedUse are Markdown.
type Branding struct {
	CompanyName     string `json:"companyName" yaml:"companyName"`
	CompanySubtitle string `json:"companySubtitle" yaml:"companySubtitle"`
	Slogan          string `json:"slogan" yaml:"slogan"`
	// Logo is a data:image URI; see assets.LoadImage.
	Logo        string `json:"logo" yaml:"logo"`
	FontURL     string `json:"fontURL" yaml:"fontURL"`
	FontFamily  string `json:"fontFamily" yaml:"fontFamily"`
	DateFormat  string `json:"dateFormat" yaml:"dateFormat"`
	Storage     string `json:"storage" yaml:"storage"`
	Conclusion  string `json:"conclusion" yaml:"conclusion"`
	IntendedUse string `json:"intendedUse" yaml:"intendedUse"`
	// AssetsDir optionally overrides templates/coa.html or styles/coa.css.
	AssetsDir string `json:"assetsDir" yaml:"assetsDir"`
}

// DefaultBranding returns the stock letterhead and texts.
func DefaultBranding() Branding {
	return Branding{
		CompanyName:     "ATANTARES",
		CompanySubtitle: "苏州硅基生物科技有限公司",
		Slogan:          "The Molecular Passion",
		DateFormat:      dateutil.DefaultDateFormat,
		Storage:         storageInfo,
		Conclusion:      defaultConclusion,
		IntendedUse:     defaultIntendedUse,
	}
}

// withDefaults fills blank texts from DefaultBranding.
func (b Branding) withDefaults() Branding {
	d := DefaultBranding()
	if strings.TrimSpace(b.CompanyName) == "" {
		b.CompanyName = d.CompanyName
	}
	if strings.TrimSpace(b.DateFormat) == "" {
		b.DateFormat = d.DateFormat
	}
	if strings.TrimSpace(b.Storage) == "" {
		b.Storage = d.Storage
	}
	if strings.TrimSpace(b.Conclusion) == "" {
		b.Conclusion = d.Conclusion
	}
	if strings.TrimSpace(b.IntendedUse) == "" {
		b.IntendedUse = d.IntendedUse
	}
	return b
}

var fontFamilyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{0,63}$`)

// baselineQC are the five tests printed on every certificate.
var baselineQC = []qcRow{
	{"Appearance", "Visual inspection", "Colorless, clear, free of precipitate or foreign particles", "Pass"},
	{"Sequence Verification", "Sanger Sequencing", "100% match", "Pass"},
	{"Purity (A260/A280)", "UV Spectrophotometry", "1.8 - 2.0", "Pass"},
	{"Integrity", "Agarose Gel Electrophoresis", "No secondary bands or smearing", "Pass"},
	{"Restriction Digest", "Enzymatic Digestion + Gel Electrophoresis", "Expected band pattern (See Attachment)", "Pass"},
}

// BaselineQCCount is the number of fixed rows ahead of experiment rows.
var BaselineQCCount = len(baselineQC)

type certificateView struct {
	Style       template.CSS
	FontURL     string
	Brand       brandView
	General     []fieldView
	Specs       []fieldView
	Storage     string
	QC          []qcRow
	Conclusion  template.HTML
	IntendedUse template.HTML
	ReleaseDate string
	Signatory   string
	Attachment  *attachmentView
}

type brandView struct {
	Name     string
	Subtitle string
	Slogan   string
	Logo     template.URL
}

type fieldView struct {
	Label string
	Value string
}

type qcRow struct {
	Test     string
	Method   string
	Criteria string
	Result   string
}

type attachmentView struct {
	Slots     []imageSlot
	Lanes     []fieldView
	TestDate  string
	Signatory string
}

type imageSlot struct {
	Caption string
	Alt     string
	Src     template.URL
}

// Renderer turns a record into a self-contained HTML document.
// It is immutable after construction and safe for concurrent use.
type Renderer struct {
	tmpl        *template.Template
	style       template.CSS
	fontURL     string
	brand       brandView
	storage     string
	conclusion  template.HTML
	intendedUse template.HTML
	dateLayout  string
}

// NewRenderer prepares the template, stylesheet and Markdown texts once.
func NewRenderer(b Branding) (*Renderer, error) {
	b = b.withDefaults()

	resolver, err := assets.NewResolver(b.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBranding, err)
	}
	source, css, err := resolver.Pair(assets.DefaultName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	tmpl, err := template.New(assets.DefaultName).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	if family := strings.TrimSpace(b.FontFamily); family != "" {
		if !fontFamilyPattern.MatchString(family) {
			return nil, fmt.Errorf("%w: font family %q", ErrInvalidBranding, family)
		}
		css += fmt.Sprintf("\nbody { font-family: %q, Arial, \"Helvetica Neue\", Helvetica, sans-serif; }\n", family)
	}

	var logo template.URL
	if strings.TrimSpace(b.Logo) != "" {
		src, ok := imageSource(b.Logo)
		if !ok {
			return nil, fmt.Errorf("%w: logo is not a base64 image", ErrInvalidBranding)
		}
		logo = src
	}

	layout, err := dateutil.Layout(b.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBranding, err)
	}

	md := markdown.New()
	conclusion, err := md.Fragment(b.Conclusion)
	if err != nil {
		return nil, fmt.Errorf("%w: conclusion: %v", ErrInvalidBranding, err)
	}
	intendedUse, err := md.Fragment(b.IntendedUse)
	if err != nil {
		return nil, fmt.Errorf("%w: intended use: %v", ErrInvalidBranding, err)
	}

	return &Renderer{
		tmpl:    tmpl,
		style:   template.CSS(css), // #nosec G203 -- embedded or operator-supplied stylesheet
		fontURL: strings.TrimSpace(b.FontURL),
		brand: brandView{
			Name:     b.CompanyName,
			Subtitle: b.CompanySubtitle,
			Slogan:   b.Slogan,
			Logo:     logo,
		},
		storage:     b.Storage,
		conclusion:  template.HTML(conclusion),  // #nosec G203 -- goldmark output, raw HTML disabled
		intendedUse: template.HTML(intendedUse), // #nosec G203 -- goldmark output, raw HTML disabled
		dateLayout:  layout,
	}, nil
}

// Render produces the HTML document for one record. It performs no I/O and
// reads no clock, so equal inputs give byte-identical output.
//
// The attachment page is emitted iff the record has a recognition site.
// Missing images render a placeholder; image gating is the caller's concern.
// Unknown experiment statuses fail with ErrInvalidStatus.
func (r *Renderer) Render(coa COA, opts RenderOptions) (string, error) {
	if err := coa.CheckStatuses(); err != nil {
		return "", err
	}
	date := orNA(dateutil.Format(opts.Date, r.dateLayout))
	signatory := opts.Signatory()

	view := certificateView{
		Style:   r.style,
		FontURL: r.fontURL,
		Brand:   r.brand,
		General: []fieldView{
			{"Project Number", orNA(coa.OrderID)},
			{"Clone Number", orNA(coa.CloneName)},
			{"Gene Name", orNA(coa.SampleName)},
			{"Length", orNA(coa.Length)},
			{"Specification", orNA(coa.Specifications)},
			{"Label", orNA(coa.Label)},
		},
		Specs: []fieldView{
			{"Vector", orNA(coa.Vector)},
			{"Cloning Sites", orNA(coa.ClonePosition)},
			{"Resistance", orNA(coa.Resistance)},
			{"Yield", yieldSpec},
			{"Competence", orNA(coa.Competence)},
		},
		Storage:     r.storage,
		QC:          qcRows(coa.Experiments),
		Conclusion:  r.conclusion,
		IntendedUse: r.intendedUse,
		ReleaseDate: date,
		Signatory:   signatory,
	}

	if site, ok := coa.Site(); ok {
		view.Attachment = &attachmentView{
			Slots: []imageSlot{
				slot("Restriction Digest Gel", "Restriction Digest Gel", coa.Image1, opts.ImagesIncluded()),
				slot("DNA Ladder/Marker Reference", "DNA Ladder Reference", coa.Image2, opts.ImagesIncluded()),
			},
			Lanes: []fieldView{
				{"M", "DNA Ladder"},
				{"1", "Undigested"},
				{"2", site + " digested"},
			},
			TestDate:  date,
			Signatory: signatory,
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// qcRows appends one row per experiment to the baseline tests.
func qcRows(experiments []Experiment) []qcRow {
	rows := make([]qcRow, 0, len(baselineQC)+len(experiments))
	rows = append(rows, baselineQC...)
	for _, exp := range experiments {
		rows = append(rows, qcRow{
			Test:     orNA(exp.QCItems),
			Method:   orNA(exp.Method),
			Criteria: orNA(exp.AcceptanceCriteria),
			Result:   exp.Status.Label(),
		})
	}
	return rows
}

func slot(caption, alt, payload string, include bool) imageSlot {
	s := imageSlot{Caption: caption, Alt: alt}
	if !include {
		return s
	}
	if src, ok := imageSource(payload); ok {
		s.Src = src
	}
	return s
}

// imageSource validates an image payload and returns it as a data URI.
// Accepted: data:image/<type>;base64,<data> or bare base64 whose decoded
// bytes sniff as an image. Anything else is rejected so it cannot smuggle a
// non-image URL into the document.
func imageSource(payload string) (template.URL, bool) {
	p := strings.TrimSpace(payload)
	if p == "" {
		return "", false
	}

	if rest, ok := strings.CutPrefix(p, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
			return "", false
		}
		if _, err := base64.StdEncoding.DecodeString(data); err != nil {
			return "", false
		}
		return template.URL(p), true // #nosec G203 -- validated base64 image URI
	}

	raw, err := base64.StdEncoding.DecodeString(p)
	if err != nil {
		return "", false
	}
	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		return "", false
	}
	return template.URL("data:" + contentType + ";base64," + p), true // #nosec G203 -- sniffed image
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return NotAvailable
	}
	return s
}
