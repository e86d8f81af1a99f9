package validation

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
		Mode string `validate:"required,oneof=add set"`
	}

	if errs := ValidateStruct(req{Name: "x", Mode: "add"}); len(errs) != 0 {
		t.Errorf("valid struct produced errors: %v", errs)
	}

	errs := ValidateStruct(req{Mode: "replace"})
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}

	msg := Describe(errs)
	if !strings.Contains(msg, "required") || !strings.Contains(msg, "oneof=add set") {
		t.Errorf("Describe = %q", msg)
	}
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  lunch at warung  ", "lunch at warung"},
		{"tab\tand newline\nkept", "tab\tand newline\nkept"},
		{"control\x00\x1bchars dropped", "controlchars dropped"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeDescription(tt.in); got != tt.want {
			t.Errorf("SanitizeDescription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
