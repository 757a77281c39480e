package entities

import (
	"time"

	"github.com/google/uuid"
)

// FieldType tags a template field with an expected value kind.
// Tags are declarative: extraction leaves value coercion to the model.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeEmail  FieldType = "email"
	FieldTypePhone  FieldType = "phone"
)

// IsValid checks if the field type is a known tag
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeEmail, FieldTypePhone:
		return true
	}
	return false
}

// TemplateField is one entry of a user-defined extraction schema
type TemplateField struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// UserTemplate is a user-defined extraction schema applied to transcripts
type UserTemplate struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Fields    []TemplateField `json:"fields" gorm:"type:jsonb;serializer:json"`
	IsDefault bool            `json:"is_default" gorm:"default:false;index"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (UserTemplate) TableName() string {
	return "user_templates"
}

// NewUserTemplate creates a template for a user
func NewUserTemplate(userID uuid.UUID, name string, fields []TemplateField) *UserTemplate {
	return &UserTemplate{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Fields:    fields,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Validate checks structural validity of the template
func (t *UserTemplate) Validate() error {
	if t.Name == "" {
		return ErrInvalidTemplateName
	}
	if len(t.Fields) == 0 {
		return ErrTemplateNoFields
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return ErrInvalidFieldName
		}
		if seen[f.Name] {
			return ErrDuplicateFieldName
		}
		seen[f.Name] = true
		if !f.Type.IsValid() {
			return ErrInvalidFieldType
		}
	}
	return nil
}
