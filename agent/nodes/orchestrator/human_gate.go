package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	statex "github.com/tanpawarit/transfer-orchestrator/agent/state"
)

// HumanGate writes the pending approval record and returns the final
// snapshot. The gate is asserted here and nowhere else; the review's own
// human_must_decide block is not consulted.
func HumanGate(in *GraphState) (contractx.WorkflowState, error) {
	if err := requireState(in); err != nil {
		return contractx.WorkflowState{}, err
	}
	if err := in.expect(StageReviewed); err != nil {
		return contractx.WorkflowState{}, err
	}

	in.Store.Set(KeyHumanGate, contractx.PendingGate())
	if err := in.advance(StageGated); err != nil {
		return contractx.WorkflowState{}, err
	}

	return StateFromSnapshot(in.Store.Snapshot())
}

// StateFromSnapshot converts a run snapshot into the caller-facing state.
// It refuses any snapshot without a required human gate. The source text
// stays in the run; callers get the fields without it.
func StateFromSnapshot(snap map[string]any) (contractx.WorkflowState, error) {
	gate, ok := statex.Value[contractx.HumanGateRecord](snap, KeyHumanGate)
	if !ok || !gate.Required {
		return contractx.WorkflowState{}, contractx.ErrGateMissing
	}

	fields, ok := statex.Value[contractx.FieldRecord](snap, KeyFields)
	if !ok {
		return contractx.WorkflowState{}, missingKey(KeyFields)
	}
	fields.SourceText = ""
	validation, ok := statex.Value[contractx.ValidationResult](snap, KeyValidation)
	if !ok {
		return contractx.WorkflowState{}, missingKey(KeyValidation)
	}
	review, ok := statex.Value[contractx.ReviewResult](snap, KeyReview)
	if !ok {
		return contractx.WorkflowState{}, missingKey(KeyReview)
	}
	path, ok := statex.Value[contractx.Path](snap, KeyPath)
	if !ok {
		return contractx.WorkflowState{}, missingKey(KeyPath)
	}

	return contractx.WorkflowState{
		Fields:     fields,
		Validation: validation,
		Review:     review,
		Path:       path,
		HumanGate:  gate,
	}, nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: %s missing from snapshot", contractx.ErrValidation, key)
}
