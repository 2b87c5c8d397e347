package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingCode(t *testing.T) {
	err := MissingCode("condition")
	assert.Equal(t, "condition has no codes", err.Error())
	assert.True(t, IsMissingCode(err))

	wrapped := fmt.Errorf("exporting patient: %w", err)
	assert.True(t, IsMissingCode(wrapped))
}

func TestIO(t *testing.T) {
	cause := assert.AnError
	err := IO("writing patients row", cause)
	assert.Equal(t, "writing patients row failed: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsMissingCode(err))
}
