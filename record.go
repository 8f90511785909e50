package coa2pdf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StateUnused is the state assigned to freshly ingested records.
// Reserved for the plate-assignment workflow.
const StateUnused = "unused"

// Status is the outcome of one additional QC experiment.
type Status string

// Experiment statuses.
const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// UnmarshalJSON decodes a status case-insensitively. An empty status
// decodes to StatusPass, matching the default of a new experiment.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		raw = string(StatusPass)
	}
	*s = Status(raw)
	return nil
}

// Valid reports whether s is pass or fail.
func (s Status) Valid() bool {
	return s == StatusPass || s == StatusFail
}

// Label returns the result text printed in the QC table.
func (s Status) Label() string {
	if s == StatusPass {
		return "Pass"
	}
	return "Fail"
}

// Experiment is one additional QC row appended to a certificate's test table.
// It is owned by exactly one COA.
type Experiment struct {
	ID                 string `json:"id"`
	QCItems            string `json:"qcItems"`
	Method             string `json:"method"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	Status             Status `json:"status"`
}

// NewExperiment returns an empty experiment with the default pass status.
func NewExperiment(id string) Experiment {
	return Experiment{ID: id, Status: StatusPass}
}

// COA holds the data of one Certificate of Analysis.
//
// RecognitionSite is a structural switch: when present the rendered document
// carries an attachment page with two image slots.
type COA struct {
	ID              string       `json:"id"`
	OrderID         string       `json:"orderId"`
	CloneName       string       `json:"cloneName"`
	SampleName      string       `json:"sampleName"`
	Vector          string       `json:"vector"`
	Resistance      string       `json:"resistance"`
	ClonePosition   string       `json:"clonePosition"`
	Length          string       `json:"length"`
	Specifications  string       `json:"specifications"`
	Label           string       `json:"label"`
	Competence      string       `json:"competence"`
	RecognitionSite *string      `json:"recognitionSite"`
	Experiments     []Experiment `json:"experiments,omitempty"`
	Image1          string       `json:"image1,omitempty"`
	Image2          string       `json:"image2,omitempty"`
	State           string       `json:"state,omitempty"`
}

// Site returns the trimmed recognition site and whether one is present.
// A whitespace-only site counts as absent.
func (c *COA) Site() (string, bool) {
	if c.RecognitionSite == nil {
		return "", false
	}
	site := strings.TrimSpace(*c.RecognitionSite)
	return site, site != ""
}

// HasAttachment reports whether the rendered document includes the
// restriction digest attachment page.
func (c *COA) HasAttachment() bool {
	_, ok := c.Site()
	return ok
}

// requiredFields lists the fields that must be non-empty after trimming,
// in ingestion column order.
func (c *COA) requiredFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"orderId", c.OrderID},
		{"cloneName", c.CloneName},
		{"sampleName", c.SampleName},
		{"vector", c.Vector},
		{"resistance", c.Resistance},
		{"length", c.Length},
		{"specifications", c.Specifications},
		{"competence", c.Competence},
	}
}

// missingFields returns the names of required fields that are blank.
func (c *COA) missingFields() []string {
	var missing []string
	for _, f := range c.requiredFields() {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Validate checks the record invariants that hold for storage and editing.
// Missing images are not an error here; see ExportReady.
func (c *COA) Validate() error {
	if missing := c.missingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrRequiredField, strings.Join(missing, ", "))
	}
	return c.CheckStatuses()
}

// CheckStatuses rejects experiments whose status is neither pass nor fail.
// Rendering applies it even when required fields are missing, since an
// unknown status would otherwise print as a failed test.
func (c *COA) CheckStatuses() error {
	for i, exp := range c.Experiments {
		if !exp.Status.Valid() {
			return fmt.Errorf("%w: experiment %d has status %q", ErrInvalidStatus, i+1, exp.Status)
		}
	}
	return nil
}

// ExportReady performs the export gating check: a record with a recognition
// site needs both gel images before it may be exported. The renderer itself
// never enforces this and draws placeholders instead.
func (c *COA) ExportReady() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HasAttachment() && (strings.TrimSpace(c.Image1) == "" || strings.TrimSpace(c.Image2) == "") {
		return fmt.Errorf("%w: order %s", ErrMissingImages, c.OrderID)
	}
	return nil
}

// CheckExport applies ExportReady to every record and requires a signatory,
// mirroring the gate in front of the export action.
func CheckExport(coas []COA, certifiedBy string) error {
	if len(coas) == 0 {
		return ErrNoRecords
	}
	if strings.TrimSpace(certifiedBy) == "" {
		return ErrMissingSigner
	}
	for i := range coas {
		if err := coas[i].ExportReady(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

// StringPtr returns a pointer to s. Convenient for RecognitionSite literals.
func StringPtr(s string) *string {
	return &s
}
