package note

import (
	"errors"
	"testing"

	"github.com/plumenote/plume/internal/config"
)

func defaultRules(t *testing.T) []FieldRule {
	t.Helper()
	rules, err := RulesFromConfig(config.Default().Validate)
	if err != nil {
		t.Fatalf("rules from default config: %v", err)
	}
	return rules
}

func defaultEnv() Env {
	return Env{
		SortTagChars: "0123456789.-_ ",
		Extensions:   []string{"md", "markdown", "txt"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		fields        map[string]any
		wantField     string
		wantPredicate Predicate
	}{
		{
			name: "complete valid header",
			fields: map[string]any{
				"title":    "Meeting",
				"subtitle": "Notes",
				"author":   "alice",
				"date":     "2023-01-02",
				"lang":     "en-US",
				"sort_tag": "20230102",
				"file_ext": "md",
			},
		},
		{
			name:          "missing title reported before later violations",
			fields:        map[string]any{"sort_tag": "not a tag!"},
			wantField:     "title",
			wantPredicate: IsDefined,
		},
		{
			name:          "title of wrong type",
			fields:        map[string]any{"title": 5},
			wantField:     "title",
			wantPredicate: IsString,
		},
		{
			name:          "blank title",
			fields:        map[string]any{"title": "   "},
			wantField:     "title",
			wantPredicate: IsNotEmptyString,
		},
		{
			name:          "compound date",
			fields:        map[string]any{"title": "x", "date": []any{"2023"}},
			wantField:     "date",
			wantPredicate: IsNotCompound,
		},
		{
			name:          "sort tag with foreign characters",
			fields:        map[string]any{"title": "x", "sort_tag": "2023a"},
			wantField:     "sort_tag",
			wantPredicate: HasOnlySortTagChars,
		},
		{
			name:   "numeric sort tag is coerced before the charset check",
			fields: map[string]any{"title": "x", "sort_tag": 20230102},
		},
		{
			name:          "unrecognized extension",
			fields:        map[string]any{"title": "x", "file_ext": "exe"},
			wantField:     "file_ext",
			wantPredicate: IsRecognizedExtension,
		},
		{
			name:   "extension compares case-insensitively",
			fields: map[string]any{"title": "x", "file_ext": "MD"},
		},
		{
			name:   "absent optional fields are skipped",
			fields: map[string]any{"title": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fields, defaultRules(t), defaultEnv())

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Predicate != tt.wantPredicate {
				t.Errorf("violation = %s/%s, want %s/%s",
					verr.Field, verr.Predicate, tt.wantField, tt.wantPredicate)
			}
		})
	}
}

func TestValidate_CompoundLeaves(t *testing.T) {
	rules := []FieldRule{{Field: "author", Predicates: []Predicate{IsString}}}

	// Without IsNotCompound, compound values are validated leaf-wise.
	err := Validate(map[string]any{"author": []any{"alice", "bob"}}, rules, defaultEnv())
	if err != nil {
		t.Errorf("list of strings should pass: %v", err)
	}

	err = Validate(map[string]any{"author": []any{"alice", 5}}, rules, defaultEnv())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Predicate != IsString {
		t.Errorf("mixed list should fail IsString, got %v", err)
	}

	// Nested mappings are descended into.
	nested := map[string]any{"author": map[string]any{"first": "alice", "age": 30}}
	if err := Validate(nested, rules, defaultEnv()); err == nil {
		t.Error("nested non-string leaf should fail")
	}
}

func TestValidate_PredicateOrderWithinField(t *testing.T) {
	rules := []FieldRule{
		{Field: "date", Predicates: []Predicate{IsNotCompound, IsString}},
	}

	err := Validate(map[string]any{"date": []any{"x"}}, rules, defaultEnv())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if verr.Predicate != IsNotCompound {
		t.Errorf("first declared predicate should be reported, got %s", verr.Predicate)
	}
}

func TestValidate_NumberAndBool(t *testing.T) {
	env := defaultEnv()

	rules := []FieldRule{{Field: "weight", Predicates: []Predicate{IsNumber}}}
	if err := Validate(map[string]any{"weight": 3}, rules, env); err != nil {
		t.Errorf("int should pass IsNumber: %v", err)
	}
	if err := Validate(map[string]any{"weight": "3"}, rules, env); err == nil {
		t.Error("string should fail IsNumber")
	}

	rules = []FieldRule{{Field: "draft", Predicates: []Predicate{IsBool}}}
	if err := Validate(map[string]any{"draft": true}, rules, env); err != nil {
		t.Errorf("bool should pass IsBool: %v", err)
	}
	if err := Validate(map[string]any{"draft": "yes"}, rules, env); err == nil {
		t.Error("string should fail IsBool")
	}
}

func TestParsePredicate(t *testing.T) {
	p, err := ParsePredicate("IsNotEmptyString")
	if err != nil || p != IsNotEmptyString {
		t.Errorf("ParsePredicate = %v, %v", p, err)
	}

	if _, err := ParsePredicate("DoesWhatIWant"); err == nil {
		t.Error("unknown predicate should fail")
	}
}

func TestRulesFromConfig_UnknownPredicate(t *testing.T) {
	_, err := RulesFromConfig([]config.FieldRuleConfig{
		{Field: "title", Predicates: []string{"IsDefined", "Bogus"}},
	})
	if err == nil {
		t.Fatal("expected an error for the unknown predicate")
	}
}
