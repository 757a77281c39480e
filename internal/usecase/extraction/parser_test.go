package extraction

import (
	"testing"

	"github.com/salescribe-team/salescribe/internal/domain/entities"
)

var testFields = []entities.TemplateField{
	{Name: "client_name", Type: entities.FieldTypeText, Required: true},
	{Name: "deal_value", Type: entities.FieldTypeNumber, Required: true},
	{Name: "follow_up_date", Type: entities.FieldTypeDate, Required: false},
}

func TestParse_NormalizesToSchema(t *testing.T) {
	p := NewParser()

	content := `{"client_name":"Acme Corp","deal_value":15000,"extra_key":"dropped"}`
	data, err := p.Parse(content, testFields)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if data["client_name"] != "Acme Corp" {
		t.Fatalf("unexpected client_name %v", data["client_name"])
	}
	if data["deal_value"] != float64(15000) {
		t.Fatalf("unexpected deal_value %v", data["deal_value"])
	}
	if value, ok := data["follow_up_date"]; !ok || value != nil {
		t.Fatalf("missing optional field should be present as null, got %v (present=%v)", value, ok)
	}
	if _, ok := data["extra_key"]; ok {
		t.Fatal("keys outside the schema must be dropped")
	}
}

func TestParse_StripsMarkdownFences(t *testing.T) {
	p := NewParser()

	content := "```json\n{\"client_name\":\"Acme\",\"deal_value\":1}\n```"
	data, err := p.Parse(content, testFields)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if data["client_name"] != "Acme" {
		t.Fatalf("unexpected client_name %v", data["client_name"])
	}
}

func TestParse_RejectsNonJSON(t *testing.T) {
	p := NewParser()

	if _, err := p.Parse("I could not find any fields.", testFields); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestMissingRequired(t *testing.T) {
	p := NewParser()

	data := map[string]interface{}{
		"client_name":    "  ",
		"deal_value":     nil,
		"follow_up_date": nil,
	}
	missing := p.MissingRequired(data, testFields)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing required fields got %v", missing)
	}
}
