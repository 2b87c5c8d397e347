// Package csv implements the row-oriented export backend: one comma-separated
// file per table, a single header row, append-only, one patient per call.
package csv

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jwalitptl/health-export/internal/export"
	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/pkg/errors"
	"github.com/jwalitptl/health-export/pkg/logger"
	"github.com/jwalitptl/health-export/pkg/metrics"
)

const (
	tablePatients       = "patients"
	tableEncounters     = "encounters"
	tableConditions     = "conditions"
	tableAllergies      = "allergies"
	tableObservations   = "observations"
	tableProcedures     = "procedures"
	tableMedications    = "medications"
	tableImmunizations  = "immunizations"
	tableCarePlans      = "careplans"
	tableImagingStudies = "imaging_studies"
	tableAttributes     = "attributes"
	tableQualityOfLife  = "quality_of_life"
)

var tableHeaders = map[string]string{
	tablePatients:       "id,name,date_of_birth,date_of_death,race,gender,zip,state,socioeconomic_status",
	tableEncounters:     "id,person_id,provider_id,name,type,start,stop,code,display,system",
	tableConditions:     "person_id,name,type,start,stop,code,display,system",
	tableAllergies:      "start,stop,patient,encounter,code,description",
	tableObservations:   "person_id,encounter_id,name,type,start,value,unit,code,display,system",
	tableProcedures:     "date,patient,encounter,code,description,cost,reason_code,reason_description",
	tableMedications:    "id,person_id,provider_id,encounter_id,name,type,start,stop,code,display,system,cost,dispenses,total_cost,reason_code,reason_description",
	tableImmunizations:  "date,patient,encounter,code,description,cost",
	tableCarePlans:      "id,start,stop,patient,encounter,code,description,reason_code,reason_description",
	tableImagingStudies: "id,date,patient,encounter,bodysite_code,bodysite_description,modality_code,modality_description,sop_code,sop_description",
	tableAttributes:     "person_id,name,value",
	tableQualityOfLife:  "person_id,year,qol,qaly,daly",
}

// tableOrder fixes the stream open/flush order.
var tableOrder = []string{
	tablePatients, tableEncounters, tableConditions, tableAllergies,
	tableObservations, tableProcedures, tableMedications, tableImmunizations,
	tableCarePlans, tableImagingStudies, tableAttributes, tableQualityOfLife,
}

// Exporter owns one append-only stream per table. A single mutex spans
// "write all rows for one patient, then flush all streams", so one export
// call always commits a consistent cross-table snapshot.
type Exporter struct {
	mu      sync.Mutex
	files   map[string]*os.File
	writers map[string]*bufio.Writer
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates the output directory, opens every table stream and writes the
// header rows. An I/O failure here is fatal to the caller: the pipeline cannot
// run without its sinks.
func New(dir string, log *logger.Logger, m *metrics.Metrics) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO("creating csv output directory", err)
	}

	e := &Exporter{
		files:   make(map[string]*os.File, len(tableOrder)),
		writers: make(map[string]*bufio.Writer, len(tableOrder)),
		log:     log,
		metrics: m,
	}
	for _, table := range tableOrder {
		f, err := os.Create(filepath.Join(dir, table+".csv"))
		if err != nil {
			e.Close()
			return nil, errors.IO("opening "+table+" stream", err)
		}
		w := bufio.NewWriter(f)
		if _, err := w.WriteString(tableHeaders[table] + "\n"); err != nil {
			e.Close()
			return nil, errors.IO("writing "+table+" header", err)
		}
		e.files[table] = f
		e.writers[table] = w
	}
	return e, nil
}

// Close flushes and closes every table stream.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, table := range tableOrder {
		if w, ok := e.writers[table]; ok {
			if err := w.Flush(); err != nil && firstErr == nil {
				firstErr = errors.IO("flushing "+table+" stream", err)
			}
		}
		if f, ok := e.files[table]; ok {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = errors.IO("closing "+table+" stream", err)
			}
		}
	}
	return firstErr
}

// Export appends one patient's full history to the table streams. Entities
// with no codes are skipped and counted rather than aborting the patient;
// I/O errors propagate immediately.
func (e *Exporter) Export(p *model.Patient, asOf int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writeRow(tablePatients, patientFields(p, asOf)); err != nil {
		return err
	}

	for _, enc := range p.Encounters {
		encounterID := export.NewID()
		fields, err := encounterFields(encounterID, p.ID, enc)
		if err != nil {
			e.skip(tableEncounters, p.ID, err)
			continue
		}
		if err := e.writeRow(tableEncounters, fields); err != nil {
			return err
		}

		if err := e.exportEncounter(p, enc, encounterID, asOf); err != nil {
			return err
		}
	}

	for _, name := range whitelistedAttributes(p) {
		if err := e.writeRow(tableAttributes, []string{p.ID, name, p.Attribute(name)}); err != nil {
			return err
		}
	}

	for _, year := range sortedYears(p.QOL) {
		fields := qualityOfLifeFields(p.ID, year, p.QOL[year], p.QALY[year], p.DALY[year])
		if err := e.writeRow(tableQualityOfLife, fields); err != nil {
			return err
		}
	}

	if err := e.flushAll(); err != nil {
		return err
	}

	e.metrics.PatientsExported.Inc()
	e.log.Debug("exported patient to csv", "patient", p.ID)
	return nil
}

func (e *Exporter) exportEncounter(p *model.Patient, enc *model.Encounter, encounterID string, asOf int64) error {
	for _, condition := range enc.Conditions {
		fields, err := conditionFields(p.ID, condition)
		if werr := e.writeEntity(tableConditions, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, allergy := range enc.Allergies {
		fields, err := allergyFields(p.ID, encounterID, allergy)
		if werr := e.writeEntity(tableAllergies, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, obs := range enc.Observations {
		err := export.VisitLeaves(obs, func(leaf *model.Observation) error {
			fields, err := observationFields(p.ID, encounterID, leaf)
			return e.writeEntity(tableObservations, p.ID, fields, err)
		})
		if err != nil {
			return err
		}
	}
	for _, procedure := range enc.Procedures {
		fields, err := procedureFields(p.ID, encounterID, procedure)
		if werr := e.writeEntity(tableProcedures, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, medication := range enc.Medications {
		fields, err := medicationFields(export.NewID(), p.ID, encounterID, enc.Provider, medication, asOf)
		if werr := e.writeEntity(tableMedications, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, immunization := range enc.Immunizations {
		fields, err := immunizationFields(p.ID, encounterID, immunization)
		if werr := e.writeEntity(tableImmunizations, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, careplan := range enc.CarePlans {
		fields, err := careplanFields(export.NewID(), p.ID, encounterID, careplan)
		if werr := e.writeEntity(tableCarePlans, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	for _, study := range enc.ImagingStudies {
		fields, err := imagingStudyFields(export.NewID(), p.ID, encounterID, study)
		if werr := e.writeEntity(tableImagingStudies, p.ID, fields, err); werr != nil {
			return werr
		}
	}
	return nil
}

// writeEntity commits one projected row, treating a projection failure as a
// skip-and-count (the data-integrity contract) and an I/O failure as fatal.
func (e *Exporter) writeEntity(table, patientID string, fields []string, projErr error) error {
	if projErr != nil {
		e.skip(table, patientID, projErr)
		return nil
	}
	return e.writeRow(table, fields)
}

func (e *Exporter) skip(table, patientID string, err error) {
	e.metrics.EntitiesSkipped.WithLabelValues(table).Inc()
	e.log.Warn("skipping entity", "table", table, "patient", patientID, "reason", err.Error())
}

func (e *Exporter) writeRow(table string, fields []string) error {
	w := e.writers[table]
	if _, err := w.WriteString(strings.Join(fields, ",")); err != nil {
		return errors.IO("writing "+table+" row", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return errors.IO("writing "+table+" row", err)
	}
	e.metrics.RowsWritten.WithLabelValues(table).Inc()
	return nil
}

func (e *Exporter) flushAll() error {
	for _, table := range tableOrder {
		if err := e.writers[table].Flush(); err != nil {
			return errors.IO("flushing "+table+" stream", err)
		}
	}
	return nil
}

// whitelistedAttributes returns the patient's whitelisted attribute names in
// deterministic order. Unknown keys are dropped silently.
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

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
