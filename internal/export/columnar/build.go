package columnar

import (
	"sort"
	"strconv"

	"github.com/jwalitptl/health-export/internal/export"
	"github.com/jwalitptl/health-export/internal/model"
)

// Row builders. Same projection contracts as the row-oriented backend where
// the tables overlap, with the columnar-only derived fields (onset age) added.

func buildPatientRow(p *model.Patient, asOf int64) PatientRow {
	dateOfDeath := ""
	if !p.Alive(asOf) {
		dateOfDeath = export.DateFromTimestamp(p.Death)
	}
	return PatientRow{
		Subject:     p.ID,
		Name:        p.Name,
		DateOfBirth: export.DateFromTimestamp(p.BirthDate),
		DateOfDeath: dateOfDeath,

		Race:                    p.Attribute("race"),
		Gender:                  p.Attribute("gender"),
		Zip:                     p.Attribute("zip"),
		Address:                 p.Attribute("address"),
		City:                    p.Attribute("city"),
		SocioeconomicCategory:   p.Attribute("socioeconomic_category"),
		Alcoholic:               p.Attribute("alcoholic"),
		AlcoholicHistory:        p.Attribute("alcoholic_history"),
		AsthmaType:              p.Attribute("asthma_type"),
		BirthType:               p.Attribute("birth_type"),
		CauseOfDeath:            p.Attribute("cause_of_death"),
		CoronaryHeartDisease:    p.Attribute("coronary_heart_disease"),
		Deceased:                p.Attribute("deceased"),
		Diabetes:                p.Attribute("diabetes"),
		FirstLanguage:           p.Attribute("first_language"),
		Homeless:                p.Attribute("homeless"),
		HomelessnessCategory:    p.Attribute("homelessness_category"),
		InstancesOfHomelessness: p.Attribute("instances_of_homelessness"),
		Infertile:               p.Attribute("infertile"),
		Hypertension:            p.Attribute("hypertension"),
		LungCancer:              p.Attribute("lung_cancer"),
		OpioidAddiction:         p.Attribute("opioid_addiction"),
		Osteoporosis:            p.Attribute("osteoporosis"),
		Prediabetes:             p.Attribute("prediabetes"),
		SexualOrientation:       p.Attribute("sexual_orientation"),
		SexuallyActive:          p.Attribute("sexually_active"),
		Smoker:                  p.Attribute("smoker"),
		SmokerHistory:           p.Attribute("smoker_history"),
		Veteran:                 p.Attribute("veteran"),
	}
}

func buildEncounterRow(encounterID, personID string, enc *model.Encounter) (EncounterRow, error) {
	coding, err := export.PrimaryCode("encounter", enc.Codes)
	if err != nil {
		return EncounterRow{}, err
	}

	practitioner := ""
	if enc.Provider != nil {
		practitioner = enc.Provider.ID
	}
	end := ""
	if enc.Stop != 0 {
		end = export.ISO8601Timestamp(enc.Stop)
	}
	return EncounterRow{
		Identifier:   encounterID,
		Subject:      personID,
		Practitioner: practitioner,
		Name:         enc.Name,
		Type:         enc.Type,
		Start:        export.ISO8601Timestamp(enc.Start),
		End:          end,
		Code:         coding.Code,
		Display:      coding.Display,
		System:       coding.System,
	}, nil
}

func buildConditionRow(personID string, onsetAge int, condition *model.Entry) (ConditionRow, error) {
	coding, err := export.PrimaryCode("condition", condition.Codes)
	if err != nil {
		return ConditionRow{}, err
	}

	abatement := ""
	if condition.Stop != 0 {
		abatement = export.ISO8601Timestamp(condition.Stop)
	}
	return ConditionRow{
		Subject:           personID,
		OnsetAge:          int64(onsetAge),
		Name:              condition.Name,
		Type:              condition.Type,
		OnsetDateTime:     export.ISO8601Timestamp(condition.Start),
		AbatementDateTime: abatement,
		Code:              coding.Code,
		Display:           coding.Display,
		System:            coding.System,
	}, nil
}

func buildObservationRow(personID, encounterID string, obs *model.Observation) (ObservationRow, error) {
	coding, err := export.PrimaryCode("observation", obs.Codes)
	if err != nil {
		return ObservationRow{}, err
	}

	return ObservationRow{
		Subject:   personID,
		Encounter: encounterID,
		Name:      obs.Name,
		Type:      export.ObservationType(obs),
		Start:     export.DateFromTimestamp(obs.Start),
		Value:     export.ObservationValue(obs),
		Unit:      obs.Unit,
		Code:      coding.Code,
		Display:   coding.Display,
		System:    coding.System,
	}, nil
}

func buildProcedureRow(personID, encounterID string, procedure *model.Procedure) (ProcedureRow, error) {
	coding, err := export.PrimaryCode("procedure", procedure.Codes)
	if err != nil {
		return ProcedureRow{}, err
	}

	reasonCode, reasonDisplay := export.PrimaryReason(procedure.Reasons)
	return ProcedureRow{
		Date:              export.DateFromTimestamp(procedure.Start),
		Subject:           personID,
		Encounter:         encounterID,
		Code:              coding.Code,
		Display:           coding.Display,
		Cost:              export.FormatMoney(procedure.Cost),
		ReasonCode:        reasonCode,
		ReasonDescription: reasonDisplay,
	}, nil
}

func buildMedicationRow(medicationID, personID, encounterID string, provider *model.Provider,
	medication *model.Medication, asOf int64) (MedicationRow, error) {
	coding, err := export.PrimaryCode("medication", medication.Codes)
	if err != nil {
		return MedicationRow{}, err
	}

	practitioner := ""
	if provider != nil {
		practitioner = provider.ID
	}
	end := ""
	if medication.Stop != 0 {
		end = export.DateFromTimestamp(medication.Stop)
	}
	dispenses := export.Dispenses(medication, asOf)
	reasonCode, reasonDisplay := export.PrimaryReason(medication.Reasons)

	return MedicationRow{
		Identifier:        medicationID,
		Subject:           personID,
		Practitioner:      practitioner,
		Encounter:         encounterID,
		Name:              medication.Name,
		Type:              medication.Type,
		Start:             export.DateFromTimestamp(medication.Start),
		End:               end,
		Code:              coding.Code,
		Display:           coding.Display,
		System:            coding.System,
		Cost:              export.FormatMoney(medication.Cost),
		Dispenses:         dispenses,
		TotalCost:         export.TotalCost(medication.Cost, dispenses),
		ReasonCode:        reasonCode,
		ReasonDescription: reasonDisplay,
	}, nil
}

func buildMeasureRow(personID string, year int, qol, qaly, daly float64) MeasureRow {
	return MeasureRow{
		Subject: personID,
		Year:    int64(year),
		QOL:     formatMeasure(qol),
		QALY:    formatMeasure(qaly),
		DALY:    formatMeasure(daly),
	}
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// whitelistedAttributes returns the patient's whitelisted attribute names in
// deterministic order.
func whitelistedAttributes(p *model.Patient) []string {
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		if _, ok := attributeWhitelist[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sortedYears(m map[int]float64) []int {
	years := make([]int, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
