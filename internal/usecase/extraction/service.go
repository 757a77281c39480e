package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/salescribe-team/salescribe/errors"
	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

// ChatClient is the LLM surface extraction needs
type ChatClient interface {
	ChatJSON(ctx context.Context, system, user string) (string, error)
}

// Service turns a confirmed transcript into structured report data
// using the user's template as the extraction schema.
type Service interface {
	Extract(ctx context.Context, transcript string, template *entities.UserTemplate) (map[string]interface{}, error)
}

type extractionService struct {
	chat   ChatClient
	parser *Parser
	logger *zap.Logger
}

// NewService constructs a new extraction service
func NewService(chat ChatClient, logger *zap.Logger) Service {
	return &extractionService{
		chat:   chat,
		parser: NewParser(),
		logger: logger,
	}
}

const systemPrompt = `You are a data extraction assistant for sales reports. ` +
	`You receive a transcript of a spoken sales report and a field schema. ` +
	`Extract the value of each field from the transcript. ` +
	`Respond with a single JSON object whose keys are exactly the field names. ` +
	`Use null for any field the transcript does not mention. ` +
	`Do not invent values and do not add keys outside the schema.`

// Extract sends the transcript and schema to the model and parses the
// result. One attempt only: a malformed response is an error, not a
// retry loop, since the transcript stays available for manual review.
func (s *extractionService) Extract(ctx context.Context, transcript string, template *entities.UserTemplate) (map[string]interface{}, error) {
	if template == nil || len(template.Fields) == 0 {
		return nil, apperrors.ErrExtractionFailed(fmt.Errorf("no template fields to extract"))
	}

	userPrompt := buildUserPrompt(transcript, template.Fields)

	content, err := s.chat.ChatJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, apperrors.ErrOpenAIFailed("chat completion", err)
	}

	data, err := s.parser.Parse(content, template.Fields)
	if err != nil {
		s.logger.Warn("extraction response did not parse",
			zap.String("template_id", template.ID.String()),
			zap.Error(err))
		return nil, apperrors.ErrExtractionFailed(err)
	}

	if missing := s.parser.MissingRequired(data, template.Fields); len(missing) > 0 {
		s.logger.Info("extraction left required fields empty",
			zap.String("template_id", template.ID.String()),
			zap.Strings("fields", missing))
	}

	return data, nil
}

func buildUserPrompt(transcript string, fields []entities.TemplateField) string {
	var b strings.Builder
	b.WriteString("Field schema:\n")
	for _, field := range fields {
		requirement := "optional"
		if field.Required {
			requirement = "required"
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", field.Name, field.Type, requirement)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
