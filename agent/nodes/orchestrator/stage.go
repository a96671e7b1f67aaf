package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

// Stage is the position of a run in the fixed sequence
// START -> EXTRACTED -> VALIDATED -> REVIEWED -> GATED.
type Stage int

const (
	StageStart Stage = iota
	StageExtracted
	StageValidated
	StageReviewed
	StageGated
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "START"
	case StageExtracted:
		return "EXTRACTED"
	case StageValidated:
		return "VALIDATED"
	case StageReviewed:
		return "REVIEWED"
	case StageGated:
		return "GATED"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

func (s Stage) Terminal() bool {
	return s == StageGated
}

// advance moves exactly one step forward.
func (g *GraphState) advance(next Stage) error {
	if g.Stage.Terminal() || next != g.Stage+1 {
		return fmt.Errorf("%w: %s -> %s", contractx.ErrInvalidTransition, g.Stage, next)
	}
	g.Stage = next
	return nil
}

func (g *GraphState) expect(stage Stage) error {
	if g.Stage != stage {
		return fmt.Errorf("%w: at %s, want %s", contractx.ErrInvalidTransition, g.Stage, stage)
	}
	return nil
}
