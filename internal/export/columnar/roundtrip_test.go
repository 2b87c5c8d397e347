package columnar

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csvexport "github.com/jwalitptl/health-export/internal/export/csv"
)

func countCSVRows(t *testing.T, dir, table string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, table+".csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return len(lines) - 1 // header
}

// Both backends project the same entities for the tables they share, so the
// summed per-table row counts across all flushed batches must equal the
// row-oriented backend's output for the same patient set.
func TestRowCountsMatchRowOrientedBackend(t *testing.T) {
	ctx := context.Background()
	asOf := ts(2000, time.January, 1)
	patients := []string{"p1", "p2", "p3", "p4", "p5"}

	csvDir := t.TempDir()
	csvExporter, err := csvexport.New(csvDir, testLogger(), testMetrics)
	require.NoError(t, err)
	defer csvExporter.Close()

	sink := &recordingSink{}
	e, err := New(t.TempDir(), 2, testLogger(), testMetrics, nil, sink)
	require.NoError(t, err)

	for _, id := range patients {
		p := samplePatient(id)
		require.NoError(t, csvExporter.Export(p, asOf))
		require.NoError(t, e.Submit(ctx, p, asOf))
	}
	require.NoError(t, e.Finalize(ctx, asOf))
	require.Len(t, sink.batches, 3)

	totals := make(map[string]int)
	for _, b := range sink.batches {
		for table, n := range b.Counts() {
			totals[table] += n
		}
	}

	assert.Equal(t, countCSVRows(t, csvDir, "patients"), totals[TablePatient])
	assert.Equal(t, countCSVRows(t, csvDir, "encounters"), totals[TableEncounter])
	assert.Equal(t, countCSVRows(t, csvDir, "conditions"), totals[TableCondition])
	assert.Equal(t, countCSVRows(t, csvDir, "observations"), totals[TableObservation])
	assert.Equal(t, countCSVRows(t, csvDir, "procedures"), totals[TableProcedure])
	assert.Equal(t, countCSVRows(t, csvDir, "medications"), totals[TableMedicationRequest])
	assert.Equal(t, countCSVRows(t, csvDir, "quality_of_life"), totals[TableMeasure])
	// The attributes/state tables use separately curated whitelists and are
	// deliberately excluded from the comparison.
}
