// Package export holds the projection helpers shared by the row-oriented and
// columnar backends: text sanitization, temporal and monetary rendering,
// dispense derivation and surrogate id generation.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-export/internal/model"
	"github.com/jwalitptl/health-export/pkg/errors"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z"
)

// Clean replaces embedded commas and line breaks with a single space and trims
// the result, so free text can never shift columns in the row-oriented output.
func Clean(src string) string {
	r := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", ",", " ")
	return strings.TrimSpace(r.Replace(src))
}

// DateFromTimestamp renders epoch milliseconds as a UTC calendar date.
func DateFromTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(dateLayout)
}

// ISO8601Timestamp renders epoch milliseconds as a UTC ISO-8601 timestamp.
func ISO8601Timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}

// FormatMoney renders a cost with exactly two fractional digits and a
// locale-invariant decimal point.
func FormatMoney(cost float64) string {
	return strconv.FormatFloat(cost, 'f', 2, 64)
}

// TotalCost is unit cost times dispense count, truncated (not rounded) to two
// decimal places.
func TotalCost(unitCost float64, dispenses int64) string {
	total := unitCost * float64(dispenses)
	return FormatMoney(math.Trunc(total*100) / 100)
}

// PrimaryCode returns the canonical (first) code of an entity, or a
// missing-code data-integrity error when the code list is empty.
func PrimaryCode(entity string, codes []model.Code) (model.Code, error) {
	if len(codes) == 0 {
		return model.Code{}, errors.MissingCode(entity)
	}
	return codes[0], nil
}

// PrimaryReason returns the first reason code and display, or empty strings
// when the entity has no recorded reasons.
func PrimaryReason(reasons []model.Code) (code, display string) {
	if len(reasons) == 0 {
		return "", ""
	}
	return reasons[0].Code, Clean(reasons[0].Display)
}

// ConvertTime converts a quantity of a named time unit to milliseconds. The
// month convention is 30 days, the year convention 365 days.
func ConvertTime(unit string, quantity int64) int64 {
	switch unit {
	case "seconds":
		return quantity * 1000
	case "minutes":
		return quantity * 60 * 1000
	case "hours":
		return quantity * 60 * 60 * 1000
	case "days":
		return quantity * 24 * 60 * 60 * 1000
	case "weeks":
		return quantity * 7 * 24 * 60 * 60 * 1000
	case "months":
		return quantity * 30 * 24 * 60 * 60 * 1000
	case "years":
		return quantity * 365 * 24 * 60 * 60 * 1000
	default:
		return quantity
	}
}

// Dispenses derives the dispense count for a medication. An explicit refill
// count wins; otherwise the active duration is divided by the explicit fill
// duration when present, or by one month as the default refill assumption.
// Integer division can truncate short prescriptions to zero, so the result is
// clamped to at least one.
func Dispenses(m *model.Medication, asOf int64) int64 {
	stop := m.Stop
	if stop == 0 {
		stop = asOf
	}
	duration := stop - m.Start

	var dispenses int64
	switch {
	case m.Prescription != nil && m.Prescription.Refills != nil:
		dispenses = *m.Prescription.Refills
	case m.Prescription != nil && m.Prescription.Duration != nil:
		fill := ConvertTime(m.Prescription.Duration.Unit, m.Prescription.Duration.Quantity)
		dispenses = duration / fill
	default:
		dispenses = duration / ConvertTime("months", 1)
	}

	if dispenses < 1 {
		dispenses = 1
	}
	return dispenses
}

// ObservationValue renders a leaf observation's scalar value. Numeric values
// keep their shortest exact decimal form; everything else goes through the
// generic string conversion.
func ObservationValue(o *model.Observation) string {
	switch v := o.Value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ObservationType classifies a leaf observation as numeric or text.
func ObservationType(o *model.Observation) string {
	switch o.Value.(type) {
	case float64, int, int64:
		return "numeric"
	case nil:
		return ""
	default:
		return "text"
	}
}

// NewID generates a surrogate identifier, unique for the lifetime of the
// export run. Collision probability is that of a random 128-bit UUID.
func NewID() string {
	return uuid.NewString()
}
