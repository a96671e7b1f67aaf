package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	statex "github.com/tanpawarit/transfer-orchestrator/agent/state"
)

// Route records the path label. It does not change the stage and never
// causes review to be skipped.
func Route(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	if err := in.expect(StageValidated); err != nil {
		return nil, err
	}

	validation, ok := statex.Typed[contractx.ValidationResult](in.Store, KeyValidation)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing from state", contractx.ErrValidation, KeyValidation)
	}

	in.Store.Set(KeyPath, contractx.PathFor(validation))
	return in, nil
}
