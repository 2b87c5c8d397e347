package columnar

// Fixed table set of the columnar backend. Each flush commits one output unit
// per table, encoded against the row schemas below. Costs and life-year
// measures are decimal-as-string; dispenses, onset age and year are integers.
const (
	TablePatient           = "patient"
	TableEncounter         = "encounter"
	TableCondition         = "condition"
	TableObservation       = "observation"
	TableProcedure         = "procedure"
	TableMedicationRequest = "medicationrequest"
	TableMeasure           = "measure"
	TableState             = "state"
)

// TableOrder fixes the encode/commit order within a flush.
var TableOrder = []string{
	TablePatient,
	TableMedicationRequest,
	TableEncounter,
	TableCondition,
	TableObservation,
	TableProcedure,
	TableMeasure,
	TableState,
}

// PatientRow carries identity plus the fixed patient-level attribute columns.
// This column set differs from the row-oriented patients table on purpose.
type PatientRow struct {
	Subject     string `parquet:"subject" db:"subject"`
	Name        string `parquet:"name" db:"name"`
	DateOfBirth string `parquet:"date_of_birth" db:"date_of_birth"`
	DateOfDeath string `parquet:"date_of_death" db:"date_of_death"`

	Race                    string `parquet:"race" db:"race"`
	Gender                  string `parquet:"gender" db:"gender"`
	Zip                     string `parquet:"zip" db:"zip"`
	Address                 string `parquet:"address" db:"address"`
	City                    string `parquet:"city" db:"city"`
	SocioeconomicCategory   string `parquet:"socioeconomic_category" db:"socioeconomic_category"`
	Alcoholic               string `parquet:"alcoholic" db:"alcoholic"`
	AlcoholicHistory        string `parquet:"alcoholic_history" db:"alcoholic_history"`
	AsthmaType              string `parquet:"asthma_type" db:"asthma_type"`
	BirthType               string `parquet:"birth_type" db:"birth_type"`
	CauseOfDeath            string `parquet:"cause_of_death" db:"cause_of_death"`
	CoronaryHeartDisease    string `parquet:"coronary_heart_disease" db:"coronary_heart_disease"`
	Deceased                string `parquet:"deceased" db:"deceased"`
	Diabetes                string `parquet:"diabetes" db:"diabetes"`
	FirstLanguage           string `parquet:"first_language" db:"first_language"`
	Homeless                string `parquet:"homeless" db:"homeless"`
	HomelessnessCategory    string `parquet:"homelessness_category" db:"homelessness_category"`
	InstancesOfHomelessness string `parquet:"instances_of_homelessness" db:"instances_of_homelessness"`
	Infertile               string `parquet:"infertile" db:"infertile"`
	Hypertension            string `parquet:"hypertension" db:"hypertension"`
	LungCancer              string `parquet:"lung_cancer" db:"lung_cancer"`
	OpioidAddiction         string `parquet:"opioid_addiction" db:"opioid_addiction"`
	Osteoporosis            string `parquet:"osteoporosis" db:"osteoporosis"`
	Prediabetes             string `parquet:"prediabetes" db:"prediabetes"`
	SexualOrientation       string `parquet:"sexual_orientation" db:"sexual_orientation"`
	SexuallyActive          string `parquet:"sexually_active" db:"sexually_active"`
	Smoker                  string `parquet:"smoker" db:"smoker"`
	SmokerHistory           string `parquet:"smoker_history" db:"smoker_history"`
	Veteran                 string `parquet:"veteran" db:"veteran"`
}

type EncounterRow struct {
	Identifier   string `parquet:"identifier" db:"identifier"`
	Subject      string `parquet:"subject" db:"subject"`
	Practitioner string `parquet:"practitioner" db:"practitioner"`
	Name         string `parquet:"name" db:"name"`
	Type         string `parquet:"type" db:"type"`
	Start        string `parquet:"start" db:"start"`
	End          string `parquet:"end" db:"end"`
	Code         string `parquet:"code" db:"code"`
	Display      string `parquet:"display" db:"display"`
	System       string `parquet:"system" db:"system"`
}

type ConditionRow struct {
	Subject           string `parquet:"subject" db:"subject"`
	OnsetAge          int64  `parquet:"onsetage" db:"onsetage"`
	Name              string `parquet:"name" db:"name"`
	Type              string `parquet:"type" db:"type"`
	OnsetDateTime     string `parquet:"onsetdatetime" db:"onsetdatetime"`
	AbatementDateTime string `parquet:"abatementdatetime" db:"abatementdatetime"`
	Code              string `parquet:"code" db:"code"`
	Display           string `parquet:"display" db:"display"`
	System            string `parquet:"system" db:"system"`
}

type ObservationRow struct {
	Subject   string `parquet:"subject" db:"subject"`
	Encounter string `parquet:"encounter" db:"encounter"`
	Name      string `parquet:"name" db:"name"`
	Type      string `parquet:"type" db:"type"`
	Start     string `parquet:"start" db:"start"`
	Value     string `parquet:"value" db:"value"`
	Unit      string `parquet:"unit" db:"unit"`
	Code      string `parquet:"code" db:"code"`
	Display   string `parquet:"display" db:"display"`
	System    string `parquet:"system" db:"system"`
}

type ProcedureRow struct {
	Date              string `parquet:"date" db:"date"`
	Subject           string `parquet:"subject" db:"subject"`
	Encounter         string `parquet:"encounter" db:"encounter"`
	Code              string `parquet:"code" db:"code"`
	Display           string `parquet:"display" db:"display"`
	Cost              string `parquet:"cost" db:"cost"`
	ReasonCode        string `parquet:"reason_code" db:"reason_code"`
	ReasonDescription string `parquet:"reason_description" db:"reason_description"`
}

type MedicationRow struct {
	Identifier        string `parquet:"identifier" db:"identifier"`
	Subject           string `parquet:"subject" db:"subject"`
	Practitioner      string `parquet:"practitioner" db:"practitioner"`
	Encounter         string `parquet:"encounter" db:"encounter"`
	Name              string `parquet:"name" db:"name"`
	Type              string `parquet:"type" db:"type"`
	Start             string `parquet:"start" db:"start"`
	End               string `parquet:"end" db:"end"`
	Code              string `parquet:"code" db:"code"`
	Display           string `parquet:"display" db:"display"`
	System            string `parquet:"system" db:"system"`
	Cost              string `parquet:"cost" db:"cost"`
	Dispenses         int64  `parquet:"dispenses" db:"dispenses"`
	TotalCost         string `parquet:"total_cost" db:"total_cost"`
	ReasonCode        string `parquet:"reason_code" db:"reason_code"`
	ReasonDescription string `parquet:"reason_description" db:"reason_description"`
}

type MeasureRow struct {
	Subject string `parquet:"subject" db:"subject"`
	Year    int64  `parquet:"year" db:"year"`
	QOL     string `parquet:"qol" db:"qol"`
	QALY    string `parquet:"qaly" db:"qaly"`
	DALY    string `parquet:"daly" db:"daly"`
}

type StateRow struct {
	Subject string `parquet:"subject" db:"subject"`
	Name    string `parquet:"name" db:"name"`
	Value   string `parquet:"value" db:"value"`
}

// Batch is the full projected output of one flush: every queued patient's
// rows for every table. The batch is named after its first patient.
type Batch struct {
	FirstPatientID string

	Patients     []PatientRow
	Encounters   []EncounterRow
	Conditions   []ConditionRow
	Observations []ObservationRow
	Procedures   []ProcedureRow
	Medications  []MedicationRow
	Measures     []MeasureRow
	States       []StateRow
}

// Counts returns the per-table row counts of the batch.
func (b *Batch) Counts() map[string]int {
	return map[string]int{
		TablePatient:           len(b.Patients),
		TableEncounter:         len(b.Encounters),
		TableCondition:         len(b.Conditions),
		TableObservation:       len(b.Observations),
		TableProcedure:         len(b.Procedures),
		TableMedicationRequest: len(b.Medications),
		TableMeasure:           len(b.Measures),
		TableState:             len(b.States),
	}
}
