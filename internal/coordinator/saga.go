// Package coordinator runs a sequence of steps and undoes the completed ones,
// newest first, when a later step fails.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
)

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// StepFunc adapts a pair of functions to Step. A nil undo means the step
// has nothing to compensate.
type StepFunc struct {
	StepName string
	Do       func(ctx context.Context) error
	Undo     func(ctx context.Context) error
}

func (s StepFunc) Name() string { return s.StepName }

func (s StepFunc) Execute(ctx context.Context) error { return s.Do(ctx) }

func (s StepFunc) Compensate(ctx context.Context) error {
	if s.Undo == nil {
		return nil
	}
	return s.Undo(ctx)
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	name  string
	steps []Step
}

func NewOrchestrator(name string, steps ...Step) *Orchestrator {
	return &Orchestrator{name: name, steps: steps}
}

// Start runs the saga steps sequentially.
// If a step fails, it triggers the compensation of all previously successful steps.
func (o *Orchestrator) Start(ctx context.Context) error {
	var successfulSteps []Step

	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing step", "saga", o.name, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "step failed, starting rollback", "saga", o.name, "step", step.Name(), "error", err)
			o.rollback(ctx, successfulSteps)
			return fmt.Errorf("%s: %s: %w", o.name, step.Name(), err)
		}
		successfulSteps = append(successfulSteps, step)
	}
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) {
	// Compensation runs even if the request context was cancelled.
	ctx = context.WithoutCancel(ctx)
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to compensate step", "saga", o.name, "step", step.Name(), "error", err)
		}
	}
}
