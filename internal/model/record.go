package model

import (
	"fmt"
	"time"
)

// Code is a (code, display, system) triple identifying a clinical concept.
type Code struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

// Entry is the common shape of a clinical event: conditions, allergies and
// immunizations are plain entries, richer events embed it. Start is mandatory;
// a zero Stop means the interval is still open. Times are epoch milliseconds.
type Entry struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Start   int64  `json:"start"`
	Stop    int64  `json:"stop"`
	Codes   []Code `json:"codes"`
	Reasons []Code `json:"reasons,omitempty"`
}

// Observation is either a leaf with a scalar Value and Unit, or a panel
// grouping child observations with no value of its own.
type Observation struct {
	Entry
	Value        interface{}    `json:"value,omitempty"`
	Unit         string         `json:"unit,omitempty"`
	Observations []*Observation `json:"observations,omitempty"`
}

// Procedure is a performed procedure with a monetary cost.
type Procedure struct {
	Entry
	Cost float64 `json:"cost"`
}

// Duration is an explicit prescription fill duration.
type Duration struct {
	Quantity int64  `json:"quantity"`
	Unit     string `json:"unit"`
}

// Prescription carries the optional dispensing details of a medication.
// Refills, when set, overrides any duration-based dispense derivation.
type Prescription struct {
	Refills  *int64    `json:"refills,omitempty"`
	Duration *Duration `json:"duration,omitempty"`
}

// Medication is a prescribed medication with per-fill cost and optional
// prescription details.
type Medication struct {
	Entry
	Cost         float64       `json:"cost"`
	Prescription *Prescription `json:"prescription,omitempty"`
}

// CarePlan is a prescribed care plan.
type CarePlan struct {
	Entry
}

// Immunization is an administered immunization with a monetary cost.
type Immunization struct {
	Entry
	Cost float64 `json:"cost"`
}

// Instance is a single image within a series.
type Instance struct {
	Title    string `json:"title,omitempty"`
	SOPClass Code   `json:"sop_class"`
}

// Series is one acquisition series within an imaging study.
type Series struct {
	BodySite  Code       `json:"body_site"`
	Modality  Code       `json:"modality"`
	Instances []Instance `json:"instances"`
}

// ImagingStudy groups one or more series of images taken during an encounter.
type ImagingStudy struct {
	Start  int64    `json:"start"`
	Series []Series `json:"series"`
}

// Provider is the treating provider reference attached to an encounter.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Encounter is a single visit and the clinical events recorded during it.
type Encounter struct {
	Entry
	Provider       *Provider       `json:"provider,omitempty"`
	Conditions     []*Entry        `json:"conditions,omitempty"`
	Allergies      []*Entry        `json:"allergies,omitempty"`
	Observations   []*Observation  `json:"observations,omitempty"`
	Procedures     []*Procedure    `json:"procedures,omitempty"`
	Medications    []*Medication   `json:"medications,omitempty"`
	Immunizations  []*Immunization `json:"immunizations,omitempty"`
	CarePlans      []*CarePlan     `json:"careplans,omitempty"`
	ImagingStudies []*ImagingStudy `json:"imaging_studies,omitempty"`
}

// Patient is the full simulated clinical history for one person, as produced
// by the simulation engine. The exporters treat it as read only.
type Patient struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	BirthDate  int64                  `json:"birth_date"`
	Death      int64                  `json:"death,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	QOL        map[int]float64        `json:"qol,omitempty"`
	QALY       map[int]float64        `json:"qaly,omitempty"`
	DALY       map[int]float64        `json:"daly,omitempty"`
	Encounters []*Encounter           `json:"encounters,omitempty"`
}

// Alive reports whether the patient is alive as of the given simulated time.
func (p *Patient) Alive(asOf int64) bool {
	return p.Death == 0 || p.Death > asOf
}

// AgeInYears returns the patient's age in whole years at the given time.
func (p *Patient) AgeInYears(at int64) int {
	birth := time.UnixMilli(p.BirthDate).UTC()
	t := time.UnixMilli(at).UTC()

	age := t.Year() - birth.Year()
	if t.Month() < birth.Month() || (t.Month() == birth.Month() && t.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// Attribute returns the named attribute rendered as a string, or the empty
// string when the attribute is absent.
func (p *Patient) Attribute(name string) string {
	v, ok := p.Attributes[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
