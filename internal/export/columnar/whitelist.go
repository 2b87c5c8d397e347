package columnar

// attributeWhitelist is the columnar backend's curated set of patient
// attributes exported to the state table. It is maintained separately from
// the row-oriented backend's list; the difference is intentional per-consumer
// curation and the two must not be unified.
var attributeWhitelist = map[string]struct{}{
	"address":                                 {},
	"adherence probability":                   {},
	"age_18_50_before_delay":                  {},
	"age_18_50_after_delay":                   {},
	"age_50_plus_before_delay":                {},
	"age_50_plus_after_delay":                 {},
	"alcoholic":                               {},
	"alcoholic_history":                       {},
	"alk":                                     {},
	"asthma_type":                             {},
	"atopic":                                  {},
	"atrial_fibrillation":                     {},
	"atrial_fibrillation_risk":                {},
	"birth_type":                              {},
	"cardio_risk":                             {},
	"cause_of_death":                          {},
	"colorectal_cancer_stage":                 {},
	"coronary_heart_disease":                  {},
	"cr_chemo_count":                          {},
	"diabetes":                                {},
	"diabetes_amputation_necessary":           {},
	"diabetes_severity":                       {},
	"diabetic_eye_damage":                     {},
	"diabetic_nerve_damage":                   {},
	"education":                               {},
	"egfr":                                    {},
	"first_language":                          {},
	"gender":                                  {},
	"Hunt-Hess_Grade":                         {},
	"homeless":                                {},
	"homelessness_category":                   {},
	"hypertension":                            {},
	"income":                                  {},
	"infertile":                               {},
	"instances_of_homelessness":               {},
	"is_sah":                                  {},
	"kras":                                    {},
	"Lung Cancer Type":                        {},
	"lung_cancer":                             {},
	"lung_cancer_nondiagnosis_counter":        {},
	"macular_edema":                           {},
	"nephropathy":                             {},
	"neuropathy":                              {},
	"nonproliferative_retinopathy":            {},
	"number_of_children":                      {},
	"occupation_level":                        {},
	"onset_age_eighteen_to_fifty_after_delay": {},
	"onset_age_eighteen_to_fifty_before_delay": {},
	"onset_age_fifty_plus_after_delay":         {},
	"onset_age_fifty_plus_before_delay":        {},
	"opioid_addiction":                         {},
	"osteoporosis":                             {},
	"outgrew_food_allergies":                   {},
	"pd1":                                      {},
	"prediabetes":                              {},
	"quit alcoholism age":                      {},
	"quit alcoholism probability":              {},
	"quit smoking age":                         {},
	"quit smoking probability":                 {},
	"retinopathy":                              {},
	"RH_NEG":                                   {},
	"sah_suspect":                              {},
	"sexual_orientation":                       {},
	"sexually_active":                          {},
	"smoker":                                   {},
	"smoker_history":                           {},
	"socioeconomic_category":                   {},
	"stroke_history":                           {},
	"stroke_points":                            {},
	"stroke_risk":                              {},
	"veteran":                                  {},
}
