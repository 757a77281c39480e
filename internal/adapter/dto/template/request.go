package template

// FieldRequest is one field in a template create/update payload
type FieldRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Type     string `json:"type" validate:"required,oneof=text number date email phone"`
	Required bool   `json:"required"`
}

// CreateTemplateRequest creates a new report template
type CreateTemplateRequest struct {
	Name      string         `json:"name" validate:"required,min=1,max=255"`
	Fields    []FieldRequest `json:"fields" validate:"required,min=1,max=50,dive"`
	IsDefault bool           `json:"is_default"`
}

// UpdateTemplateRequest replaces a template's name and fields
type UpdateTemplateRequest struct {
	Name   string         `json:"name" validate:"required,min=1,max=255"`
	Fields []FieldRequest `json:"fields" validate:"required,min=1,max=50,dive"`
}
