// Package columnar implements the batched columnar export backend: a bounded
// FIFO of whole patient records that, on flush, projects every queued patient
// into per-table row lists and commits one compressed parquet output unit per
// table per batch, plus a manifest entry per table.
package columnar

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/health-export/internal/export"
	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/internal/telemetry"
	"github.com/jwalitptl/health-export/pkg/errors"
	"github.com/jwalitptl/health-export/pkg/logger"
	"github.com/jwalitptl/health-export/pkg/metrics"
)

const manifestTimeLayout = "2006-01-02 15:04:05.000"

// Sink receives every committed batch after its output units are written.
// The postgres loader implements this to make batches queryable.
type Sink interface {
	LoadBatch(ctx context.Context, batch *Batch) error
}

// Exporter buffers up to capacity patients and flushes them as one batch.
// The enqueue-or-flush decision and the flush itself run under one mutex:
// no submission is accepted while a flush is in progress, and the capacity
// bound can never be exceeded by concurrent submitters.
type Exporter struct {
	mu    sync.Mutex
	queue []*model.Patient

	capacity    int
	outputDir   string
	metadataDir string

	log      *logger.Logger
	metrics  *metrics.Metrics
	reporter telemetry.Reporter
	sinks    []Sink
}

// New creates the output and metadata directories and an empty accumulator.
func New(outputDir string, capacity int, log *logger.Logger, m *metrics.Metrics,
	reporter telemetry.Reporter, sinks ...Sink) (*Exporter, error) {
	if capacity < 1 {
		capacity = 1
	}
	metadataDir := filepath.Join(outputDir, "metadata")
	if err := os.MkdirAll(metadataDir, 0o755); err != nil {
		return nil, errors.IO("creating columnar output directories", err)
	}
	if reporter == nil {
		reporter = telemetry.Noop{}
	}

	return &Exporter{
		queue:       make([]*model.Patient, 0, capacity),
		capacity:    capacity,
		outputDir:   outputDir,
		metadataDir: metadataDir,
		log:         log,
		metrics:     m,
		reporter:    reporter,
		sinks:       sinks,
	}, nil
}

// Submit enqueues one patient. When the queue is already at capacity the
// currently queued patients are flushed first, then the new patient is
// enqueued; the flush never includes the patient being submitted.
func (e *Exporter) Submit(ctx context.Context, p *model.Patient, asOf int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) >= e.capacity {
		if err := e.flushLocked(ctx, asOf); err != nil {
			return err
		}
	}
	e.queue = append(e.queue, p)
	e.metrics.PatientQueueSize.Set(float64(len(e.queue)))
	return nil
}

// Finalize flushes any remaining queued patients. Every submitted patient is
// flushed exactly once across the run.
func (e *Exporter) Finalize(ctx context.Context, asOf int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return nil
	}
	return e.flushLocked(ctx, asOf)
}

func (e *Exporter) flushLocked(ctx context.Context, asOf int64) error {
	start := time.Now()

	batch := &Batch{FirstPatientID: e.queue[0].ID}
	for _, p := range e.queue {
		e.appendPatient(batch, p, asOf)
	}

	paths, err := writeBatch(e.outputDir, batch)
	if err != nil {
		return err
	}
	if err := e.writeManifest(batch, paths); err != nil {
		return err
	}

	counts := batch.Counts()
	for _, table := range TableOrder {
		e.metrics.RowsWritten.WithLabelValues(table).Add(float64(counts[table]))
		e.log.Info("committed table", "table", table, "rows", counts[table], "path", paths[table])
	}
	e.reporter.ReportFlush(ctx, counts)

	for _, sink := range e.sinks {
		if err := sink.LoadBatch(ctx, batch); err != nil {
			return err
		}
	}

	flushed := len(e.queue)
	e.queue = e.queue[:0]
	e.metrics.PatientQueueSize.Set(0)
	e.metrics.BatchesFlushed.Inc()
	e.metrics.BatchFlushDuration.Observe(time.Since(start).Seconds())
	e.log.Info("flushed batch", "patients", flushed, "batch", batch.FirstPatientID)
	return nil
}

// appendPatient projects one patient's record into the batch. Entities with
// no codes are skipped and counted; the count mismatch stays visible in the
// manifest/telemetry totals rather than disappearing silently.
func (e *Exporter) appendPatient(batch *Batch, p *model.Patient, asOf int64) {
	batch.Patients = append(batch.Patients, buildPatientRow(p, asOf))
	e.metrics.PatientsExported.Inc()

	for _, enc := range p.Encounters {
		encounterID := export.NewID()
		row, err := buildEncounterRow(encounterID, p.ID, enc)
		if err != nil {
			e.skip(TableEncounter, p.ID, err)
			continue
		}
		batch.Encounters = append(batch.Encounters, row)

		for _, medication := range enc.Medications {
			row, err := buildMedicationRow(export.NewID(), p.ID, encounterID, enc.Provider, medication, asOf)
			if err != nil {
				e.skip(TableMedicationRequest, p.ID, err)
				continue
			}
			batch.Medications = append(batch.Medications, row)
		}
		for _, condition := range enc.Conditions {
			row, err := buildConditionRow(p.ID, p.AgeInYears(condition.Start), condition)
			if err != nil {
				e.skip(TableCondition, p.ID, err)
				continue
			}
			batch.Conditions = append(batch.Conditions, row)
		}
		for _, obs := range enc.Observations {
			export.VisitLeaves(obs, func(leaf *model.Observation) error {
				row, err := buildObservationRow(p.ID, encounterID, leaf)
				if err != nil {
					e.skip(TableObservation, p.ID, err)
					return nil
				}
				batch.Observations = append(batch.Observations, row)
				return nil
			})
		}
		for _, procedure := range enc.Procedures {
			row, err := buildProcedureRow(p.ID, encounterID, procedure)
			if err != nil {
				e.skip(TableProcedure, p.ID, err)
				continue
			}
			batch.Procedures = append(batch.Procedures, row)
		}
	}

	for _, year := range sortedYears(p.QOL) {
		batch.Measures = append(batch.Measures, buildMeasureRow(p.ID, year, p.QOL[year], p.QALY[year], p.DALY[year]))
	}
	for _, name := range whitelistedAttributes(p) {
		batch.States = append(batch.States, StateRow{Subject: p.ID, Name: name, Value: p.Attribute(name)})
	}
}

func (e *Exporter) skip(table, patientID string, err error) {
	e.metrics.EntitiesSkipped.WithLabelValues(table).Inc()
	e.log.Warn("skipping entity", "table", table, "patient", patientID, "reason", err.Error())
}

// writeManifest appends one `table,path,timestamp` line per table to the
// flush's manifest file under the metadata directory.
func (e *Exporter) writeManifest(batch *Batch, paths map[string]string) error {
	name := filepath.Join(e.metadataDir, "meta-"+batch.FirstPatientID+".txt")
	f, err := os.Create(name)
	if err != nil {
		return errors.IO("creating manifest "+name, err)
	}
	defer f.Close()

	ts := time.Now().Format(manifestTimeLayout)
	var sb strings.Builder
	for _, table := range TableOrder {
		sb.WriteString(table)
		sb.WriteByte(',')
		sb.WriteString(paths[table])
		sb.WriteByte(',')
		sb.WriteString(ts)
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return errors.IO("writing manifest "+name, err)
	}
	return nil
}
