package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/plumenote/plume/internal/config"
)

// Predicate is one check applied to a front-matter field. Predicates are
// associative per field and evaluated in declared order; the first failing
// predicate of the first failing field is the one reported.
type Predicate int

const (
	NoOp Predicate = iota
	IsDefined
	IsString
	IsNotEmptyString
	IsNumber
	IsBool
	IsNotCompound
	HasOnlySortTagChars
	IsRecognizedExtension
)

var predicateNames = map[Predicate]string{
	NoOp:                  "NoOp",
	IsDefined:             "IsDefined",
	IsString:              "IsString",
	IsNotEmptyString:      "IsNotEmptyString",
	IsNumber:              "IsNumber",
	IsBool:                "IsBool",
	IsNotCompound:         "IsNotCompound",
	HasOnlySortTagChars:   "HasOnlySortTagChars",
	IsRecognizedExtension: "IsRecognizedExtension",
}

func (p Predicate) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Predicate(%d)", int(p))
}

// ParsePredicate converts a configuration string into a Predicate.
func ParsePredicate(name string) (Predicate, error) {
	for p, n := range predicateNames {
		if n == name {
			return p, nil
		}
	}
	return NoOp, fmt.Errorf("unknown validation predicate %q", name)
}

// FieldRule binds an ordered predicate list to a field name.
type FieldRule struct {
	Field      string
	Predicates []Predicate
}

// RulesFromConfig converts the configuration's validation table.
func RulesFromConfig(table []config.FieldRuleConfig) ([]FieldRule, error) {
	rules := make([]FieldRule, 0, len(table))
	for _, rc := range table {
		rule := FieldRule{Field: rc.Field}
		for _, name := range rc.Predicates {
			p, err := ParsePredicate(name)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", rc.Field, err)
			}
			rule.Predicates = append(rule.Predicates, p)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Env carries the configuration the predicates consult.
type Env struct {
	// SortTagChars is the character set HasOnlySortTagChars checks against.
	SortTagChars string

	// Extensions are the values IsRecognizedExtension accepts (note and
	// foreign extensions combined).
	Extensions []string
}

// ValidationError reports the first violated predicate.
type ValidationError struct {
	Field     string
	Predicate Predicate
	FoundType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("front matter field %q: predicate %s violated (found %s)",
		e.Field, e.Predicate, e.FoundType)
}

// Validate applies the ordered rule table to a parsed field mapping and
// returns the first violation, or nil.
//
// A field absent from the header only fails when IsDefined is among its
// predicates. Compound values (lists, mappings) are validated leaf-wise by
// IsString/IsNumber/IsBool when the rule does not also carry IsNotCompound.
func Validate(fields map[string]any, rules []FieldRule, env Env) error {
	for _, rule := range rules {
		value, defined := fields[rule.Field]
		allowCompound := !hasPredicate(rule.Predicates, IsNotCompound)

		for _, p := range rule.Predicates {
			if p == IsDefined {
				if !defined {
					return &ValidationError{Field: rule.Field, Predicate: p, FoundType: "absent"}
				}
				continue
			}
			if !defined {
				continue
			}
			if err := check(rule.Field, p, value, allowCompound, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasPredicate(ps []Predicate, want Predicate) bool {
	for _, p := range ps {
		if p == want {
			return true
		}
	}
	return false
}

func check(field string, p Predicate, value any, allowCompound bool, env Env) error {
	fail := func() error {
		return &ValidationError{Field: field, Predicate: p, FoundType: typeName(value)}
	}

	switch p {
	case NoOp:
		return nil

	case IsNotCompound:
		if isCompound(value) {
			return fail()
		}
		return nil

	case IsString, IsNotEmptyString:
		return eachLeaf(value, allowCompound, fail, func(leaf any) bool {
			s, ok := leaf.(string)
			if !ok {
				// YAML scalars parsed as dates still print as strings.
				if _, isTime := leaf.(time.Time); isTime {
					return true
				}
				return false
			}
			return p == IsString || strings.TrimSpace(s) != ""
		})

	case IsNumber:
		return eachLeaf(value, allowCompound, fail, func(leaf any) bool {
			switch leaf.(type) {
			case int, int64, uint64, float64:
				return true
			}
			return false
		})

	case IsBool:
		return eachLeaf(value, allowCompound, fail, func(leaf any) bool {
			_, ok := leaf.(bool)
			return ok
		})

	case HasOnlySortTagChars:
		s := Scalar(value)
		for _, r := range s {
			if !strings.ContainsRune(env.SortTagChars, r) {
				return fail()
			}
		}
		return nil

	case IsRecognizedExtension:
		s := Scalar(value)
		if s == "" {
			return nil
		}
		for _, ext := range env.Extensions {
			if strings.EqualFold(s, ext) {
				return nil
			}
		}
		return fail()
	}

	return nil
}

// eachLeaf applies ok to every scalar leaf of value. Compound values fail
// outright when leaf-wise validation is disabled for the rule.
func eachLeaf(value any, allowCompound bool, fail func() error, ok func(any) bool) error {
	if !isCompound(value) {
		if !ok(value) {
			return fail()
		}
		return nil
	}
	if !allowCompound {
		return fail()
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if err := eachLeaf(item, allowCompound, fail, ok); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, item := range v {
			if err := eachLeaf(item, allowCompound, fail, ok); err != nil {
				return err
			}
		}
	}
	return nil
}

func isCompound(value any) bool {
	switch value.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64, float64:
		return "number"
	case time.Time:
		return "date"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", value)
	}
}
