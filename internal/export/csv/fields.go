package csv

import (
	"strconv"

	"github.com/jwalitptl/health-export/internal/export"
	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/pkg/errors"
)

// Projection functions: each maps one clinical entity to the ordered field
// list of its table row. They are pure; surrogate ids are passed in by the
// exporter so foreign keys exist before any dependent row.

func patientFields(p *model.Patient, asOf int64) []string {
	dateOfDeath := ""
	if !p.Alive(asOf) {
		dateOfDeath = export.DateFromTimestamp(p.Death)
	}
	return []string{
		p.ID,
		export.Clean(p.Name),
		export.DateFromTimestamp(p.BirthDate),
		dateOfDeath,
		export.Clean(p.Attribute("race")),
		export.Clean(p.Attribute("gender")),
		export.Clean(p.Attribute("zip")),
		export.Clean(p.Attribute("state")),
		export.Clean(p.Attribute("socioeconomic_category")),
	}
}

func encounterFields(encounterID, personID string, enc *model.Encounter) ([]string, error) {
	coding, err := export.PrimaryCode("encounter", enc.Codes)
	if err != nil {
		return nil, err
	}

	providerID := ""
	if enc.Provider != nil {
		providerID = enc.Provider.ID
	}
	stop := ""
	if enc.Stop != 0 {
		stop = export.ISO8601Timestamp(enc.Stop)
	}
	return []string{
		encounterID,
		personID,
		providerID,
		export.Clean(enc.Name),
		enc.Type,
		export.ISO8601Timestamp(enc.Start),
		stop,
		coding.Code,
		export.Clean(coding.Display),
		coding.System,
	}, nil
}

func conditionFields(personID string, condition *model.Entry) ([]string, error) {
	coding, err := export.PrimaryCode("condition", condition.Codes)
	if err != nil {
		return nil, err
	}

	stop := ""
	if condition.Stop != 0 {
		stop = export.DateFromTimestamp(condition.Stop)
	}
	return []string{
		personID,
		export.Clean(condition.Name),
		condition.Type,
		export.DateFromTimestamp(condition.Start),
		stop,
		coding.Code,
		export.Clean(coding.Display),
		coding.System,
	}, nil
}

func allergyFields(personID, encounterID string, allergy *model.Entry) ([]string, error) {
	coding, err := export.PrimaryCode("allergy", allergy.Codes)
	if err != nil {
		return nil, err
	}

	stop := ""
	if allergy.Stop != 0 {
		stop = export.DateFromTimestamp(allergy.Stop)
	}
	return []string{
		export.DateFromTimestamp(allergy.Start),
		stop,
		personID,
		encounterID,
		coding.Code,
		export.Clean(coding.Display),
	}, nil
}

func observationFields(personID, encounterID string, obs *model.Observation) ([]string, error) {
	coding, err := export.PrimaryCode("observation", obs.Codes)
	if err != nil {
		return nil, err
	}

	return []string{
		personID,
		encounterID,
		export.Clean(obs.Name),
		export.ObservationType(obs),
		export.DateFromTimestamp(obs.Start),
		export.ObservationValue(obs),
		obs.Unit,
		coding.Code,
		export.Clean(coding.Display),
		coding.System,
	}, nil
}

func procedureFields(personID, encounterID string, procedure *model.Procedure) ([]string, error) {
	coding, err := export.PrimaryCode("procedure", procedure.Codes)
	if err != nil {
		return nil, err
	}

	reasonCode, reasonDisplay := export.PrimaryReason(procedure.Reasons)
	return []string{
		export.DateFromTimestamp(procedure.Start),
		personID,
		encounterID,
		coding.Code,
		export.Clean(coding.Display),
		export.FormatMoney(procedure.Cost),
		reasonCode,
		reasonDisplay,
	}, nil
}

func medicationFields(medicationID, personID, encounterID string, provider *model.Provider,
	medication *model.Medication, asOf int64) ([]string, error) {
	coding, err := export.PrimaryCode("medication", medication.Codes)
	if err != nil {
		return nil, err
	}

	providerID := ""
	if provider != nil {
		providerID = provider.ID
	}
	stop := ""
	if medication.Stop != 0 {
		stop = export.DateFromTimestamp(medication.Stop)
	}
	dispenses := export.Dispenses(medication, asOf)
	reasonCode, reasonDisplay := export.PrimaryReason(medication.Reasons)

	return []string{
		medicationID,
		personID,
		providerID,
		encounterID,
		export.Clean(medication.Name),
		medication.Type,
		export.DateFromTimestamp(medication.Start),
		stop,
		coding.Code,
		export.Clean(coding.Display),
		coding.System,
		export.FormatMoney(medication.Cost),
		strconv.FormatInt(dispenses, 10),
		export.TotalCost(medication.Cost, dispenses),
		reasonCode,
		reasonDisplay,
	}, nil
}

func immunizationFields(personID, encounterID string, immunization *model.Immunization) ([]string, error) {
	coding, err := export.PrimaryCode("immunization", immunization.Codes)
	if err != nil {
		return nil, err
	}

	return []string{
		export.DateFromTimestamp(immunization.Start),
		personID,
		encounterID,
		coding.Code,
		export.Clean(coding.Display),
		export.FormatMoney(immunization.Cost),
	}, nil
}

func careplanFields(careplanID, personID, encounterID string, careplan *model.CarePlan) ([]string, error) {
	coding, err := export.PrimaryCode("careplan", careplan.Codes)
	if err != nil {
		return nil, err
	}

	stop := ""
	if careplan.Stop != 0 {
		stop = export.DateFromTimestamp(careplan.Stop)
	}
	reasonCode, reasonDisplay := export.PrimaryReason(careplan.Reasons)
	return []string{
		careplanID,
		export.DateFromTimestamp(careplan.Start),
		stop,
		personID,
		encounterID,
		coding.Code,
		export.Clean(coding.Display),
		reasonCode,
		reasonDisplay,
	}, nil
}

func imagingStudyFields(studyID, personID, encounterID string, study *model.ImagingStudy) ([]string, error) {
	// Only the first series and its first instance are exported.
	if len(study.Series) == 0 || len(study.Series[0].Instances) == 0 {
		return nil, errors.MissingCode("imaging study")
	}
	series := study.Series[0]
	instance := series.Instances[0]

	return []string{
		studyID,
		export.DateFromTimestamp(study.Start),
		personID,
		encounterID,
		series.BodySite.Code,
		export.Clean(series.BodySite.Display),
		series.Modality.Code,
		export.Clean(series.Modality.Display),
		instance.SOPClass.Code,
		export.Clean(instance.SOPClass.Display),
	}, nil
}

func qualityOfLifeFields(personID string, year int, qol, qaly, daly float64) []string {
	return []string{
		personID,
		strconv.Itoa(year),
		formatMeasure(qol),
		formatMeasure(qaly),
		formatMeasure(daly),
	}
}
