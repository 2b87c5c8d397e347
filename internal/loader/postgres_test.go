package loader

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-export/internal/export/columnar"
	"github.com/jwalitptl/health-export/pkg/logger"
)

func newMockLoader(t *testing.T) (*Loader, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return New(db, logger.NewLogger(nil)), mock
}

func TestEnsureSchema(t *testing.T) {
	l, mock := newMockLoader(t)
	mock.MatchExpectationsInOrder(false)
	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, l.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBatch(t *testing.T) {
	l, mock := newMockLoader(t)

	batch := &columnar.Batch{
		FirstPatientID: "p1",
		Patients:       []columnar.PatientRow{{Subject: "p1", Name: "Jane Doe"}},
		Encounters:     []columnar.EncounterRow{{Identifier: "e1", Subject: "p1"}},
		Observations: []columnar.ObservationRow{
			{Subject: "p1", Encounter: "e1", Value: "120"},
			{Subject: "p1", Encounter: "e1", Value: "80"},
		},
		States: []columnar.StateRow{{Subject: "p1", Name: "smoker", Value: "false"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO patient").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO encounter").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO observation").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO state").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, l.LoadBatch(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBatchRollsBackOnError(t *testing.T) {
	l, mock := newMockLoader(t)

	batch := &columnar.Batch{
		FirstPatientID: "p1",
		Patients:       []columnar.PatientRow{{Subject: "p1"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO patient").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := l.LoadBatch(context.Background(), batch)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
