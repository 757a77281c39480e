package entities

import "errors"

// Domain errors
var (
	// Profile errors
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidRole  = errors.New("invalid role")

	// Transcript errors
	ErrTranscriptResolved = errors.New("transcript is not pending")

	// Template errors
	ErrInvalidTemplateName = errors.New("invalid template name")
	ErrTemplateNoFields    = errors.New("template has no fields")
	ErrInvalidFieldName    = errors.New("invalid field name")
	ErrDuplicateFieldName  = errors.New("duplicate field name")
	ErrInvalidFieldType    = errors.New("invalid field type")
)
