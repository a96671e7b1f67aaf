package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

var (
	//go:embed template/extract_system.txt
	extractSystemRaw string

	//go:embed template/extract_user.txt
	extractUserRaw string

	//go:embed template/review_system.txt
	reviewSystemRaw string

	//go:embed template/review_user.txt
	reviewUserRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	ExtractSystem string
	ExtractUser   string
	ReviewSystem  string
	ReviewUser    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		ExtractSystem: strings.TrimSpace(extractSystemRaw),
		ExtractUser:   strings.TrimSpace(extractUserRaw),
		ReviewSystem:  strings.TrimSpace(reviewSystemRaw),
		ReviewUser:    strings.TrimSpace(reviewUserRaw),
	}
}

func (p PromptSet) Validate() error {
	for name, v := range map[string]string{
		"extract_system": p.ExtractSystem,
		"extract_user":   p.ExtractUser,
		"review_system":  p.ReviewSystem,
		"review_user":    p.ReviewUser,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
		}
	}
	return nil
}

// Template variables. Literal braces in the user templates are written
// as {{ and }}.
const (
	VarDocumentText   = "document_text"
	VarFieldsJSON     = "fields_json"
	VarValidationJSON = "validation_json"
)

// ExtractionTemplate pairs the extraction prompts as an FString chat template.
func (p PromptSet) ExtractionTemplate() einoprompt.ChatTemplate {
	return einoprompt.FromMessages(schema.FString,
		schema.SystemMessage(p.ExtractSystem),
		schema.UserMessage(p.ExtractUser),
	)
}

// ReviewTemplate pairs the review prompts as an FString chat template.
func (p PromptSet) ReviewTemplate() einoprompt.ChatTemplate {
	return einoprompt.FromMessages(schema.FString,
		schema.SystemMessage(p.ReviewSystem),
		schema.UserMessage(p.ReviewUser),
	)
}

func ExtractionVars(documentText string) map[string]any {
	return map[string]any{VarDocumentText: documentText}
}

func ReviewVars(fieldsJSON, validationJSON string) map[string]any {
	return map[string]any{
		VarFieldsJSON:     fieldsJSON,
		VarValidationJSON: validationJSON,
	}
}
