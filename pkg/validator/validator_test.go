package validator

import "testing"

func TestIsE164(t *testing.T) {
	cases := []struct {
		number string
		valid  bool
	}{
		{"+14155550100", true},
		{"+442071838750", true},
		{"+85212345678", true},
		{"+1", true},
		{"+123456789012345", true},

		{"", false},
		{"14155550100", false},
		{"+04155550100", false},
		{"+1234567890123456", false},
		{"+1 415 555 0100", false},
		{"+1-415-555-0100", false},
		{"415-555-0100", false},
		{"+", false},
		{"+1415555a100", false},
	}

	for _, tc := range cases {
		if got := IsE164(tc.number); got != tc.valid {
			t.Errorf("IsE164(%q) = %v, want %v", tc.number, got, tc.valid)
		}
	}
}

func TestValidate_E164Tag(t *testing.T) {
	type payload struct {
		Phone string `validate:"required,e164"`
	}

	v := New()
	if err := v.Validate(&payload{Phone: "+14155550100"}); err != nil {
		t.Fatalf("expected valid phone to pass, got %v", err)
	}
	if err := v.Validate(&payload{Phone: "not-a-phone"}); err == nil {
		t.Fatal("expected invalid phone to fail validation")
	}
}
