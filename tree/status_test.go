package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "FAILURE", Failure.String())
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "Status(99)", Status(99).String())
}

func TestParseStatus_RoundTrip(t *testing.T) {
	for _, s := range []Status{Success, Failure, Running, Error} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("BOGUS")
	require.Error(t, err)
}

// TestStatus_Succeeded verifies the control-flow predicate: RUNNING counts
// as a success, so an in-progress child interrupts a sequence without
// counting as a failure.
func TestStatus_Succeeded(t *testing.T) {
	assert.True(t, Success.Succeeded())
	assert.True(t, Running.Succeeded())
	assert.False(t, Failure.Succeeded())
	assert.False(t, Error.Succeeded())

	assert.False(t, Success.Failed())
	assert.True(t, Failure.Failed())
	assert.True(t, Error.Failed())

	assert.True(t, Running.InProgress())
	assert.False(t, Success.InProgress())
}
