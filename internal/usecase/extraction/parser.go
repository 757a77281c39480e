package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// Parser validates model output against a template's field schema
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes the model's JSON response and normalizes it to the
// template schema: every field name appears as a key, and fields the
// model omitted are set to null. Keys outside the schema are dropped.
// A response that is not a JSON object fails; there is no retry here.
func (p *Parser) Parse(content string, fields []entities.TemplateField) (map[string]interface{}, error) {
	// Model might wrap the object in markdown code blocks
	content = extractJSON(content)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	result := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		value, ok := raw[field.Name]
		if !ok {
			result[field.Name] = nil
			continue
		}
		result[field.Name] = value
	}

	return result, nil
}

// MissingRequired returns the names of required fields whose extracted
// value is null or an empty string.
func (p *Parser) MissingRequired(data map[string]interface{}, fields []entities.TemplateField) []string {
	var missing []string
	for _, field := range fields {
		if !field.Required {
			continue
		}
		value, ok := data[field.Name]
		if !ok || value == nil {
			missing = append(missing, field.Name)
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
