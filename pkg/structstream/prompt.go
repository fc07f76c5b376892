package structstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deepankarm/structstream/pkg/llm"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

const defaultSystemPrompt = "You are an information extraction engine. " +
	"Read the text provided by the user and extract the requested data. " +
	"Only use information present in the text. Answer with JSON only."

// schemaInstructions describes s the way a model can follow without
// provider-side schema enforcement.
func schemaInstructions(s *shape.Shape) (string, error) {
	schemaJSON, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please provide your response as a valid JSON object that conforms to the following JSON schema:\n\n")
	b.WriteString("```json\n")
	b.Write(schemaJSON)
	b.WriteString("\n```\n\n")

	b.WriteString("Your response must be valid JSON only, following these guidelines:\n")
	b.WriteString("1. Do not include any explanations, markdown code blocks, or additional text before or after the JSON.\n")
	b.WriteString("2. Ensure all required fields are included.\n")

	fields := s.Fields()
	var required []string
	for _, f := range fields {
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	if len(required) > 0 {
		fmt.Fprintf(&b, "3. The required fields are: %s.\n", strings.Join(required, ", "))
	}

	var notes []string
	for _, f := range fields {
		if f.Instruction != "" {
			notes = append(notes, fmt.Sprintf("   - %s: %s", f.Name, f.Instruction))
		}
		if f.Shape.Kind() == shape.KindEnum {
			notes = append(notes, fmt.Sprintf("   - %s must be one of: %s", f.Name, strings.Join(f.Shape.EnumValues(), ", ")))
		}
	}
	if len(notes) > 0 {
		b.WriteString("4. Field descriptions:\n")
		for _, n := range notes {
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

// buildMessages returns the conversation for the first attempt.
func buildMessages(s *shape.Shape, text string, cfg *config) ([]llm.Message, error) {
	system := cfg.systemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	if cfg.strategy != llm.StrategyJSONSchema {
		instructions, err := schemaInstructions(s)
		if err != nil {
			return nil, err
		}
		system += "\n\n" + instructions
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: text},
	}, nil
}

// repairMessages extends a conversation with the rejected output and the
// validation report so the model can correct itself.
func repairMessages(messages []llm.Message, raw string, errs ValidationErrors) []llm.Message {
	out := make([]llm.Message, 0, len(messages)+2)
	out = append(out, messages...)
	if raw != "" {
		out = append(out, llm.Message{Role: llm.RoleAssistant, Content: raw})
	}
	out = append(out, llm.Message{Role: llm.RoleUser, Content: repairPrompt(errs)})
	return out
}

func repairPrompt(errs ValidationErrors) string {
	var b strings.Builder
	b.WriteString("Your previous response did not match the required format. The following problems were found:\n")
	b.WriteString(errs.Report())
	b.WriteString("\n\nRespond again with the corrected JSON only.")
	return b.String()
}
