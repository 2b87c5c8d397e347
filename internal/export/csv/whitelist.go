package csv

// attributeWhitelist is the curated set of patient attributes exported to the
// attributes table by the row-oriented backend. The columnar backend keeps its
// own, separately curated list; the two overlap but are intentionally not
// identical per-consumer curation.
var attributeWhitelist = map[string]struct{}{
	"address":                         {},
	"adherence probability":           {},
	"alcoholic":                       {},
	"alcoholic_history":               {},
	"asthma_type":                     {},
	"atopic":                          {},
	"atrial_fibrillation":             {},
	"atrial_fibrillation_risk":        {},
	"birth_type":                      {},
	"cardio_risk":                     {},
	"cause_of_death":                  {},
	"colorectal_cancer_stage":         {},
	"coronary_heart_disease":          {},
	"cr_chemo_count":                  {},
	"diabetes":                        {},
	"diabetes_amputation_necessary":   {},
	"diabetes_severity":               {},
	"diabetic_eye_damage":             {},
	"diabetic_nerve_damage":           {},
	"education":                       {},
	"first_language":                  {},
	"gender":                          {},
	"homeless":                        {},
	"homelessness_category":           {},
	"hypertension":                    {},
	"income":                          {},
	"infertile":                       {},
	"instances_of_homelessness":       {},
	"Lung Cancer Type":                {},
	"lung_cancer":                     {},
	"lung_cancer_nondiagnosis_counter": {},
	"macular_edema":                   {},
	"nephropathy":                     {},
	"neuropathy":                      {},
	"nonproliferative_retinopathy":    {},
	"number_of_children":              {},
	"occupation_level":                {},
	"opioid_addiction":                {},
	"osteoporosis":                    {},
	"outgrew_food_allergies":          {},
	"prediabetes":                     {},
	"quit alcoholism age":             {},
	"quit alcoholism probability":     {},
	"quit smoking age":                {},
	"quit smoking probability":        {},
	"retinopathy":                     {},
	"RH_NEG":                          {},
	"sexual_orientation":              {},
	"sexually_active":                 {},
	"smoker":                          {},
	"smoker_history":                  {},
	"socioeconomic_category":          {},
	"stroke_history":                  {},
	"stroke_points":                   {},
	"stroke_risk":                     {},
	"veteran":                         {},
}
