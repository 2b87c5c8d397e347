package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/pkg/errors"
)

const day = int64(24 * 60 * 60 * 1000)

func TestClean(t *testing.T) {
	assert.Equal(t, "Fracture of arm", Clean("Fracture,of\narm"))
	assert.Equal(t, "a b", Clean("a\r\nb"))
	assert.Equal(t, "trimmed", Clean("  trimmed,  "))
	assert.Equal(t, "", Clean(""))
}

func TestTemporalRendering(t *testing.T) {
	at := time.Date(2015, time.March, 7, 13, 22, 5, 0, time.UTC).UnixMilli()
	assert.Equal(t, "2015-03-07", DateFromTimestamp(at))
	assert.Equal(t, "2015-03-07T13:22:05Z", ISO8601Timestamp(at))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "255.00", FormatMoney(255))
	assert.Equal(t, "9.99", FormatMoney(9.99))
	assert.Equal(t, "0.10", FormatMoney(0.1))
}

func TestTotalCostTruncates(t *testing.T) {
	// 255.379 * 3 = 766.137, truncated rather than rounded.
	assert.Equal(t, "766.13", TotalCost(255.379, 3))
	assert.Equal(t, "10.00", TotalCost(10.00, 1))
}

func TestPrimaryCode(t *testing.T) {
	codes := []model.Code{
		{System: "SNOMED-CT", Code: "44054006", Display: "Diabetes"},
		{System: "SNOMED-CT", Code: "15777000", Display: "Prediabetes"},
	}
	code, err := PrimaryCode("condition", codes)
	require.NoError(t, err)
	assert.Equal(t, "44054006", code.Code)

	_, err = PrimaryCode("condition", nil)
	require.Error(t, err)
	assert.True(t, errors.IsMissingCode(err))
}

func TestPrimaryReason(t *testing.T) {
	code, display := PrimaryReason(nil)
	assert.Empty(t, code)
	assert.Empty(t, display)

	code, display = PrimaryReason([]model.Code{{Code: "10509002", Display: "Acute bronchitis, (disorder)"}})
	assert.Equal(t, "10509002", code)
	assert.Equal(t, "Acute bronchitis  (disorder)", display)
}

func TestConvertTime(t *testing.T) {
	assert.Equal(t, int64(1000), ConvertTime("seconds", 1))
	assert.Equal(t, int64(60*1000), ConvertTime("minutes", 1))
	assert.Equal(t, day, ConvertTime("days", 1))
	assert.Equal(t, 30*day, ConvertTime("months", 1))
	assert.Equal(t, 365*day, ConvertTime("years", 1))
	assert.Equal(t, int64(42), ConvertTime("unknown", 42))
}

func TestDispenses(t *testing.T) {
	refills := int64(5)
	start := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name string
		med  *model.Medication
		asOf int64
		want int64
	}{
		{
			name: "explicit refills win",
			med: &model.Medication{
				Entry:        model.Entry{Start: start, Stop: start + 10*day},
				Prescription: &model.Prescription{Refills: &refills},
			},
			asOf: start + 200*day,
			want: 5,
		},
		{
			name: "explicit fill duration",
			med: &model.Medication{
				Entry: model.Entry{Start: start, Stop: start + 90*day},
				Prescription: &model.Prescription{
					Duration: &model.Duration{Quantity: 2, Unit: "weeks"},
				},
			},
			asOf: start + 200*day,
			want: 6,
		},
		{
			name: "open interval defaults to monthly fills until asOf",
			med:  &model.Medication{Entry: model.Entry{Start: start}},
			asOf: start + 95*day,
			want: 3,
		},
		{
			name: "short prescription clamps to one",
			med:  &model.Medication{Entry: model.Entry{Start: start, Stop: start + 2*day}},
			asOf: start + 200*day,
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dispenses(tt.med, tt.asOf))
		})
	}
}

func TestObservationValueAndType(t *testing.T) {
	numeric := &model.Observation{Value: 98.6}
	assert.Equal(t, "98.6", ObservationValue(numeric))
	assert.Equal(t, "numeric", ObservationType(numeric))

	count := &model.Observation{Value: int64(4)}
	assert.Equal(t, "4", ObservationValue(count))
	assert.Equal(t, "numeric", ObservationType(count))

	text := &model.Observation{Value: "Never smoker"}
	assert.Equal(t, "Never smoker", ObservationValue(text))
	assert.Equal(t, "text", ObservationType(text))

	panel := &model.Observation{}
	assert.Equal(t, "", ObservationValue(panel))
	assert.Equal(t, "", ObservationType(panel))
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100000)
	for i := 0; i < 100000; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
