package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTokenRoundTrip(t *testing.T) {
	tokens := []string{"waiting_room", "triage", "questioning", "laboratory_test", "results_by_doctor", "discharged"}
	for _, token := range tokens {
		stage, ok := StageFromToken(token)
		require.True(t, ok, "token %q must be known", token)
		assert.Equal(t, token, stage.Token())
	}
}

func TestStageFromTokenUnknown(t *testing.T) {
	_, ok := StageFromToken("under_observation")
	assert.False(t, ok)
}

func TestPriorityNormalization(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityFromToken("urgent"))
	assert.Equal(t, PriorityStandard, PriorityFromToken("standard"))
	// Anything else normalizes to Standard on read.
	assert.Equal(t, PriorityStandard, PriorityFromToken("routine"))
	assert.Equal(t, PriorityStandard, PriorityFromToken(""))
}

func TestVisitActive(t *testing.T) {
	assert.True(t, Visit{Stage: StageWaitingRoom}.Active())
	assert.False(t, Visit{Stage: StageDischarged}.Active())
}
