package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-export/internal/model"
)

func TestVisitLeavesFlattensPanels(t *testing.T) {
	panel := &model.Observation{
		Entry: model.Entry{Name: "Blood pressure"},
		Observations: []*model.Observation{
			{Entry: model.Entry{Name: "Systolic"}, Value: 120.0, Unit: "mmHg"},
			{Entry: model.Entry{Name: "Diastolic"}, Value: 80.0, Unit: "mmHg"},
			{Entry: model.Entry{Name: "Empty panel"}},
		},
	}

	var visited []string
	err := VisitLeaves(panel, func(o *model.Observation) error {
		visited = append(visited, ObservationValue(o))
		return nil
	})
	require.NoError(t, err)

	// Only value-bearing leaves produce rows; panels and empty nodes do not.
	assert.Equal(t, []string{"120", "80"}, visited)
}

func TestVisitLeavesSingleLeaf(t *testing.T) {
	leaf := &model.Observation{Entry: model.Entry{Name: "Body Weight"}, Value: 72.5, Unit: "kg"}

	count := 0
	err := VisitLeaves(leaf, func(o *model.Observation) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVisitLeavesPropagatesError(t *testing.T) {
	panel := &model.Observation{
		Observations: []*model.Observation{
			{Value: 1.0},
			{Value: 2.0},
		},
	}

	count := 0
	err := VisitLeaves(panel, func(o *model.Observation) error {
		count++
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, 1, count)
}
