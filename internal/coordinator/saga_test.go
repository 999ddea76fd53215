package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingStep(name string, trail *[]string, fail error) StepFunc {
	return StepFunc{
		StepName: name,
		Do: func(context.Context) error {
			*trail = append(*trail, "do:"+name)
			return fail
		},
		Undo: func(context.Context) error {
			*trail = append(*trail, "undo:"+name)
			return nil
		},
	}
}

func TestOrchestratorRunsAllSteps(t *testing.T) {
	var trail []string
	err := NewOrchestrator("confirm",
		recordingStep("a", &trail, nil),
		recordingStep("b", &trail, nil),
	).Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"do:a", "do:b"}, trail)
}

func TestOrchestratorCompensatesInReverse(t *testing.T) {
	var trail []string
	boom := errors.New("boom")
	err := NewOrchestrator("confirm",
		recordingStep("a", &trail, nil),
		recordingStep("b", &trail, nil),
		recordingStep("c", &trail, boom),
		recordingStep("d", &trail, nil),
	).Start(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "confirm: c:")
	assert.Equal(t, []string{"do:a", "do:b", "do:c", "undo:b", "undo:a"}, trail)
}

func TestStepFuncWithoutUndo(t *testing.T) {
	s := StepFunc{StepName: "noop", Do: func(context.Context) error { return nil }}
	assert.NoError(t, s.Compensate(context.Background()))
}
