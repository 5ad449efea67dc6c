package section

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vendra/formwizard/pkg/fieldmap"
)

func complianceSection() Definition {
	return Definition{
		ID:                 "compliance",
		DisplayName:        "Compliance",
		FieldNames:         []string{"controlledItems", "endUseMarket", "exportLicense"},
		RequiredFieldNames: []string{"controlledItems"},
		ConditionalRules: []ConditionalRule{
			{
				WhenField:         "controlledItems",
				WhenEquals:        "yes",
				ThenRequireFields: []string{"endUseMarket"},
			},
		},
	}
}

func TestValidateConditionalRequirement(t *testing.T) {
	t.Parallel()

	def := complianceSection()

	t.Run("rule dormant when answer is no", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{"controlledItems": "no"})
		if !res.Valid {
			t.Fatalf("expected valid, got errors %v", res.FieldErrors)
		}
	})

	t.Run("rule fires when answer is yes", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{
			"controlledItems": "yes",
			"endUseMarket":    []string{},
		})
		if res.Valid {
			t.Fatalf("expected invalid")
		}
		if _, ok := res.FieldErrors["endUseMarket"]; !ok {
			t.Fatalf("expected error on endUseMarket, got %v", res.FieldErrors)
		}
	})

	t.Run("rule fires against hydrated boolean", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{"controlledItems": true})
		if res.Valid {
			t.Fatalf("expected invalid for hydrated true without endUseMarket")
		}
		if _, ok := res.FieldErrors["endUseMarket"]; !ok {
			t.Fatalf("expected error on endUseMarket, got %v", res.FieldErrors)
		}
	})

	t.Run("requirement is per pass not permanent", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{
			"controlledItems": "yes",
			"endUseMarket":    []string{"EU"},
		})
		if !res.Valid {
			t.Fatalf("expected valid, got %v", res.FieldErrors)
		}
		res = def.Validate(map[string]any{"controlledItems": "no"})
		if !res.Valid {
			t.Fatalf("expected valid after switching back to no, got %v", res.FieldErrors)
		}
	})
}

func TestValidateRequiredFieldsOutsideFieldNames(t *testing.T) {
	t.Parallel()

	// Required fields another section owns are not re-displayed here, so they
	// appear only in the required sets.
	def := Definition{
		ID:                 "compliance",
		FieldNames:         []string{"controlledItems"},
		RequiredFieldNames: []string{"controlledItems", "exportLicense"},
		ConditionalRules: []ConditionalRule{
			{
				WhenField:         "controlledItems",
				WhenEquals:        "yes",
				ThenRequireFields: []string{"endUseMarket"},
			},
		},
	}

	t.Run("absent required fields fail even when not displayed", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{"controlledItems": "yes"})
		if res.Valid {
			t.Fatalf("expected invalid, got errors %v", res.FieldErrors)
		}
		want := map[string]string{
			"exportLicense": "exportLicense is required",
			"endUseMarket":  "endUseMarket is required",
		}
		if diff := cmp.Diff(want, res.FieldErrors); diff != "" {
			t.Fatalf("FieldErrors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("valid once every required field is present", func(t *testing.T) {
		t.Parallel()
		res := def.Validate(map[string]any{
			"controlledItems": "yes",
			"exportLicense":   "https://cdn.example.com/files/license.pdf",
			"endUseMarket":    []string{"EU"},
		})
		if !res.Valid {
			t.Fatalf("expected valid, got %v", res.FieldErrors)
		}
	})
}

func TestValidateRequiredAndFormat(t *testing.T) {
	t.Parallel()

	def := Definition{
		ID:                 "profile",
		FieldNames:         []string{"companyName", "taxID", "employeeCount"},
		RequiredFieldNames: []string{"companyName", "taxID"},
		FormatRules: map[string][]RuleFunc{
			"taxID": {
				MustPattern(`^[A-Z]{2}\d{8}$`, "taxID must look like XX12345678"),
				MaxLen(10, "taxID is too long"),
			},
			"employeeCount": {
				Range(1, 100000, "employeeCount must be between 1 and 100000"),
			},
		},
	}

	tests := []struct {
		name       string
		values     map[string]any
		wantValid  bool
		wantErrors map[string]string
	}{
		{
			name: "all good",
			values: map[string]any{
				"companyName":   "Acme",
				"taxID":         "DE12345678",
				"employeeCount": "250",
			},
			wantValid: true,
		},
		{
			name:      "missing required fields reported independently",
			values:    map[string]any{"employeeCount": "250"},
			wantValid: false,
			wantErrors: map[string]string{
				"companyName": "companyName is required",
				"taxID":       "taxID is required",
			},
		},
		{
			name: "first failing predicate wins per field",
			values: map[string]any{
				"companyName": "Acme",
				"taxID":       "not-a-tax-id-at-all",
			},
			wantValid: false,
			wantErrors: map[string]string{
				"taxID": "taxID must look like XX12345678",
			},
		},
		{
			name: "format rules skip empty optional fields",
			values: map[string]any{
				"companyName":   "Acme",
				"taxID":         "DE12345678",
				"employeeCount": "",
			},
			wantValid: true,
		},
		{
			name: "range rule rejects out of bounds",
			values: map[string]any{
				"companyName":   "Acme",
				"taxID":         "DE12345678",
				"employeeCount": "0",
			},
			wantValid: false,
			wantErrors: map[string]string{
				"employeeCount": "employeeCount must be between 1 and 100000",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := def.Validate(tt.values)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors %v)", res.Valid, tt.wantValid, res.FieldErrors)
			}
			if !tt.wantValid {
				if diff := cmp.Diff(tt.wantErrors, res.FieldErrors); diff != "" {
					t.Fatalf("FieldErrors mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"blank string", "   ", true},
		{"empty string slice", []string{}, true},
		{"empty any slice", []any{}, true},
		{"incomplete date", fieldmap.CompositeDate{Year: "2020"}, true},
		{"complete date", fieldmap.CompositeDate{Day: "1", Month: "2", Year: "2020"}, false},
		{"zero number", float64(0), false},
		{"false", false, false},
		{"populated list", []string{"x"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsEmpty(tt.value); got != tt.want {
				t.Fatalf("IsEmpty(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	first := Definition{ID: "company", FieldNames: []string{"companyName"}}
	second := complianceSection()

	r, err := NewRegistry(first, second)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"company", "compliance"}, r.Order()); diff != "" {
		t.Fatalf("Order mismatch (-want +got):\n%s", diff)
	}
	if got := r.Index("compliance"); got != 1 {
		t.Fatalf("Index = %d, want 1", got)
	}
	if got := r.Index("missing"); got != -1 {
		t.Fatalf("Index for unknown section = %d, want -1", got)
	}

	if _, err := r.Validate("missing", nil); err == nil {
		t.Fatalf("expected error for unknown section")
	}

	if _, err := NewRegistry(first, first); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := NewRegistry(); err == nil {
		t.Fatalf("expected empty registry error")
	}
}
