package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	llmx "github.com/tanpawarit/transfer-orchestrator/agent/llm"
	promptx "github.com/tanpawarit/transfer-orchestrator/agent/prompt"
)

const DefaultReviewTemperature = 0.2

type Reviewer struct {
	generator   *llmx.Structured[contractx.ReviewResult]
	temperature float64
}

func NewReviewer(ctx context.Context, model contractx.ChatModel, prompts promptx.PromptSet, temperature float64) (*Reviewer, error) {
	generator, err := llmx.CompileStructured[contractx.ReviewResult](ctx, ToolGenerateReview, prompts.ReviewTemplate(), model)
	if err != nil {
		return nil, err
	}
	return &Reviewer{
		generator:   generator,
		temperature: temperature,
	}, nil
}

// Review drafts the narrative review. FieldRecord.SourceText is never sent.
func (r *Reviewer) Review(
	ctx context.Context,
	fields contractx.FieldRecord,
	validation contractx.ValidationResult,
) (contractx.ReviewResult, error) {
	fieldsJSON, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return contractx.ReviewResult{}, fmt.Errorf("%w: marshal fields: %v", contractx.ErrValidation, err)
	}
	validationJSON, err := json.MarshalIndent(validation, "", "  ")
	if err != nil {
		return contractx.ReviewResult{}, fmt.Errorf("%w: marshal validation: %v", contractx.ErrValidation, err)
	}

	out, err := r.generator.Generate(ctx, promptx.ReviewVars(string(fieldsJSON), string(validationJSON)), r.temperature)
	if err != nil {
		return contractx.ReviewResult{}, err
	}

	out.CaseSummary = strings.TrimSpace(out.CaseSummary)
	out.CustomerMessageDraft = strings.TrimSpace(out.CustomerMessageDraft)
	out.InternalNote = strings.TrimSpace(out.InternalNote)
	out.RecommendedNextStep = contractx.NextStep(enumToken(string(out.RecommendedNextStep)))
	out.HumanMustDecide.Decision = enumToken(out.HumanMustDecide.Decision)
	out.HumanMustDecide.Why = strings.TrimSpace(out.HumanMustDecide.Why)
	if out.Checklist == nil {
		out.Checklist = []string{}
	}

	return out, nil
}
