// Package loader makes committed columnar batches queryable by bulk loading
// them into postgres, one transaction per batch.
package loader

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/health-export/internal/config"
	"github.com/jwalitptl/health-export/internal/export/columnar"
	"github.com/jwalitptl/health-export/pkg/logger"
)

// schema holds the DDL for every batch table, keyed by table name. Column
// names and types mirror the columnar row schemas: text everywhere, bigint
// for the integer-typed fields (dispenses, onsetage, year); decimals stay
// text to preserve the exact two-digit rendering.
var schema = map[string]string{
	columnar.TablePatient: `CREATE TABLE IF NOT EXISTS patient (
		subject TEXT, name TEXT, date_of_birth TEXT, date_of_death TEXT,
		race TEXT, gender TEXT, zip TEXT, address TEXT, city TEXT,
		socioeconomic_category TEXT, alcoholic TEXT, alcoholic_history TEXT,
		asthma_type TEXT, birth_type TEXT, cause_of_death TEXT,
		coronary_heart_disease TEXT, deceased TEXT, diabetes TEXT,
		first_language TEXT, homeless TEXT, homelessness_category TEXT,
		instances_of_homelessness TEXT, infertile TEXT, hypertension TEXT,
		lung_cancer TEXT, opioid_addiction TEXT, osteoporosis TEXT,
		prediabetes TEXT, sexual_orientation TEXT, sexually_active TEXT,
		smoker TEXT, smoker_history TEXT, veteran TEXT)`,
	columnar.TableEncounter: `CREATE TABLE IF NOT EXISTS encounter (
		identifier TEXT, subject TEXT, practitioner TEXT, name TEXT, type TEXT,
		start TEXT, "end" TEXT, code TEXT, display TEXT, system TEXT)`,
	columnar.TableCondition: `CREATE TABLE IF NOT EXISTS condition (
		subject TEXT, onsetage BIGINT, name TEXT, type TEXT,
		onsetdatetime TEXT, abatementdatetime TEXT, code TEXT, display TEXT, system TEXT)`,
	columnar.TableObservation: `CREATE TABLE IF NOT EXISTS observation (
		subject TEXT, encounter TEXT, name TEXT, type TEXT, start TEXT,
		value TEXT, unit TEXT, code TEXT, display TEXT, system TEXT)`,
	columnar.TableProcedure: `CREATE TABLE IF NOT EXISTS procedure (
		date TEXT, subject TEXT, encounter TEXT, code TEXT, display TEXT,
		cost TEXT, reason_code TEXT, reason_description TEXT)`,
	columnar.TableMedicationRequest: `CREATE TABLE IF NOT EXISTS medicationrequest (
		identifier TEXT, subject TEXT, practitioner TEXT, encounter TEXT,
		name TEXT, type TEXT, start TEXT, "end" TEXT, code TEXT, display TEXT,
		system TEXT, cost TEXT, dispenses BIGINT, total_cost TEXT,
		reason_code TEXT, reason_description TEXT)`,
	columnar.TableMeasure: `CREATE TABLE IF NOT EXISTS measure (
		subject TEXT, year BIGINT, qol TEXT, qaly TEXT, daly TEXT)`,
	columnar.TableState: `CREATE TABLE IF NOT EXISTS state (
		subject TEXT, name TEXT, value TEXT)`,
}

var insertStatements = map[string]string{
	columnar.TablePatient: `INSERT INTO patient VALUES (
		:subject, :name, :date_of_birth, :date_of_death, :race, :gender, :zip,
		:address, :city, :socioeconomic_category, :alcoholic, :alcoholic_history,
		:asthma_type, :birth_type, :cause_of_death, :coronary_heart_disease,
		:deceased, :diabetes, :first_language, :homeless, :homelessness_category,
		:instances_of_homelessness, :infertile, :hypertension, :lung_cancer,
		:opioid_addiction, :osteoporosis, :prediabetes, :sexual_orientation,
		:sexually_active, :smoker, :smoker_history, :veteran)`,
	columnar.TableEncounter: `INSERT INTO encounter VALUES (
		:identifier, :subject, :practitioner, :name, :type, :start, :end,
		:code, :display, :system)`,
	columnar.TableCondition: `INSERT INTO condition VALUES (
		:subject, :onsetage, :name, :type, :onsetdatetime, :abatementdatetime,
		:code, :display, :system)`,
	columnar.TableObservation: `INSERT INTO observation VALUES (
		:subject, :encounter, :name, :type, :start, :value, :unit,
		:code, :display, :system)`,
	columnar.TableProcedure: `INSERT INTO procedure VALUES (
		:date, :subject, :encounter, :code, :display, :cost,
		:reason_code, :reason_description)`,
	columnar.TableMedicationRequest: `INSERT INTO medicationrequest VALUES (
		:identifier, :subject, :practitioner, :encounter, :name, :type, :start,
		:end, :code, :display, :system, :cost, :dispenses, :total_cost,
		:reason_code, :reason_description)`,
	columnar.TableMeasure: `INSERT INTO measure VALUES (
		:subject, :year, :qol, :qaly, :daly)`,
	columnar.TableState: `INSERT INTO state VALUES (
		:subject, :name, :value)`,
}

// Loader implements columnar.Sink against a postgres database.
type Loader struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewDB opens and pings the target database.
func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func New(db *sqlx.DB, log *logger.Logger) *Loader {
	return &Loader{db: db, log: log}
}

// EnsureSchema creates every batch table if it does not exist.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	for table, ddl := range schema {
		if _, err := l.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table, err)
		}
	}
	return nil
}

// LoadBatch inserts every table of the batch in one transaction, so a batch
// is either fully queryable or absent.
func (l *Loader) LoadBatch(ctx context.Context, batch *columnar.Batch) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, columnar.TablePatient, batch.Patients); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableEncounter, batch.Encounters); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableCondition, batch.Conditions); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableObservation, batch.Observations); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableProcedure, batch.Procedures); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableMedicationRequest, batch.Medications); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableMeasure, batch.Measures); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, columnar.TableState, batch.States); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	l.log.Info("loaded batch into database", "batch", batch.FirstPatientID)
	return nil
}

func insertRows[T any](ctx context.Context, tx *sqlx.Tx, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.NamedExecContext(ctx, insertStatements[table], rows); err != nil {
		return fmt.Errorf("failed to insert %s rows: %w", table, err)
	}
	return nil
}
