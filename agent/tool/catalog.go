package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	promptx "github.com/tanpawarit/transfer-orchestrator/agent/prompt"
)

const (
	ToolExtractFields  = "extract_fields"
	ToolValidateFields = "validate_fields"
	ToolGenerateReview = "generate_review"

	ArgText       = "text"
	ArgFields     = "fields"
	ArgValidation = "validation"
)

type CatalogConfig struct {
	Model              contractx.ChatModel
	Prompts            promptx.PromptSet
	ExtractTemperature float64
	ReviewTemperature  float64
	// Now is the validation clock. Defaults to time.Now.
	Now func() time.Time
}

// BuildTransferRegistry returns a fresh registry holding the three transfer
// tools.
func BuildTransferRegistry(cfg CatalogConfig, mw ...Middleware) (*Registry, error) {
	reg := NewRegistry(mw...)
	if err := RegisterTransferTools(reg, cfg); err != nil {
		return nil, err
	}
	return reg, nil
}

func RegisterTransferTools(reg *Registry, cfg CatalogConfig) error {
	if reg == nil {
		return errors.New("tool registry is required")
	}
	if cfg.Model == nil {
		return fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if err := cfg.Prompts.Validate(); err != nil {
		return err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	extractor, err := NewExtractor(context.Background(), cfg.Model, cfg.Prompts, cfg.ExtractTemperature)
	if err != nil {
		return err
	}
	reviewer, err := NewReviewer(context.Background(), cfg.Model, cfg.Prompts, cfg.ReviewTemperature)
	if err != nil {
		return err
	}

	reg.Register(ToolExtractFields, func(ctx context.Context, args Args) (any, error) {
		text, err := ArgAs[string](args, ArgText)
		if err != nil {
			return nil, err
		}
		fields, err := extractor.Extract(ctx, text)
		if err != nil {
			return nil, err
		}
		return fields, nil
	})

	reg.Register(ToolValidateFields, func(ctx context.Context, args Args) (any, error) {
		fields, err := ArgAs[contractx.FieldRecord](args, ArgFields)
		if err != nil {
			return nil, err
		}
		return ValidateFields(fields, now()), nil
	})

	reg.Register(ToolGenerateReview, func(ctx context.Context, args Args) (any, error) {
		fields, err := ArgAs[contractx.FieldRecord](args, ArgFields)
		if err != nil {
			return nil, err
		}
		validation, err := ArgAs[contractx.ValidationResult](args, ArgValidation)
		if err != nil {
			return nil, err
		}
		review, err := reviewer.Review(ctx, fields, validation)
		if err != nil {
			return nil, err
		}
		return review, nil
	})

	return nil
}
