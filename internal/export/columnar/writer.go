package columnar

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/jwalitptl/health-export/pkg/errors"
)

// writeTable encodes one table's rows as a single snappy-compressed parquet
// file, schema derived from the row struct tags. An empty row list still
// commits a valid, zero-row output unit.
func writeTable[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IO("creating table directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.IO("creating "+path, err)
	}

	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return errors.IO("encoding "+path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return errors.IO("committing "+path, err)
	}
	if err := f.Close(); err != nil {
		return errors.IO("closing "+path, err)
	}
	return nil
}

// writeBatch commits every table of the batch under dir and returns the
// per-table output unit paths keyed by table name.
func writeBatch(dir string, b *Batch) (map[string]string, error) {
	paths := make(map[string]string, len(TableOrder))
	for _, table := range TableOrder {
		paths[table] = filepath.Join(dir, table, table+"-"+b.FirstPatientID+".parquet")
	}

	if err := writeTable(paths[TablePatient], b.Patients); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableMedicationRequest], b.Medications); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableEncounter], b.Encounters); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableCondition], b.Conditions); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableObservation], b.Observations); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableProcedure], b.Procedures); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableMeasure], b.Measures); err != nil {
		return nil, err
	}
	if err := writeTable(paths[TableState], b.States); err != nil {
		return nil, err
	}
	return paths, nil
}
