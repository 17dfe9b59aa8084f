package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Storage keys of the two identity questions. They live in dedicated columns
// rather than in the opaque fields mapping.
const (
	AthleteNameKey = "athlete_name"
	EmailKey       = "email"
)

func IsIdentityKey(name string) bool {
	return name == AthleteNameKey || name == EmailKey
}

type Kind string

const (
	KindText           Kind = "text"
	KindNumber         Kind = "number"
	KindDate           Kind = "date"
	KindTime           Kind = "time"
	KindSelect         Kind = "select"
	KindRadio          Kind = "radio"
	KindCheckbox       Kind = "checkbox"
	KindCheckboxSingle Kind = "checkbox_single"
	KindTextarea       Kind = "textarea"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindDate, KindTime, KindSelect, KindRadio,
		KindCheckbox, KindCheckboxSingle, KindTextarea:
		return true
	}
	return false
}

// HasOptions reports whether questions of this kind pick from an option set.
func (k Kind) HasOptions() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

type Section struct {
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

type Question struct {
	Name     string     `yaml:"name" json:"name"`
	Label    string     `yaml:"label" json:"label"`
	Kind     Kind       `yaml:"type" json:"type"`
	Options  []string   `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool       `yaml:"required" json:"required"`
	ShowIf   *Predicate `yaml:"show_if,omitempty" json:"show_if,omitempty"`
}

type Test int

const (
	TestEquals Test = iota + 1
	TestIn
	TestContains
)

func (t Test) String() string {
	switch t {
	case TestEquals:
		return "equals"
	case TestIn:
		return "in"
	case TestContains:
		return "contains"
	}
	return fmt.Sprintf("Test(%d)", int(t))
}

// Predicate makes a question's relevance depend on the value of one other
// question. Predicates do not compose.
type Predicate struct {
	DependsOn string
	Test      Test
	Values    []string
}

func Equals(field, value string) *Predicate {
	return &Predicate{DependsOn: field, Test: TestEquals, Values: []string{value}}
}

func In(field string, values ...string) *Predicate {
	return &Predicate{DependsOn: field, Test: TestIn, Values: values}
}

func Contains(field, value string) *Predicate {
	return &Predicate{DependsOn: field, Test: TestContains, Values: []string{value}}
}

// Eval tests the predicate against the value currently held by the field it
// depends on. A missing field never satisfies a predicate.
func (p *Predicate) Eval(lookup func(name string) (Value, bool)) bool {
	v, ok := lookup(p.DependsOn)
	if !ok {
		return false
	}

	switch p.Test {
	case TestEquals:
		return !v.IsList() && v.String() == p.Values[0]
	case TestIn:
		if v.IsList() {
			return false
		}
		for _, want := range p.Values {
			if v.String() == want {
				return true
			}
		}
		return false
	case TestContains:
		return v.Contains(p.Values[0])
	}
	return false
}

// predicateDoc is the catalog form: {field: x, equals: y} | {field: x, in: [...]} | {field: x, contains: y}
type predicateDoc struct {
	Field    string   `yaml:"field" json:"field"`
	Equals   *string  `yaml:"equals,omitempty" json:"equals,omitempty"`
	In       []string `yaml:"in,omitempty" json:"in,omitempty"`
	Contains *string  `yaml:"contains,omitempty" json:"contains,omitempty"`
}

func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	var doc predicateDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	if doc.Field == "" {
		return fmt.Errorf("line %d: show_if: missing field", node.Line)
	}

	tests := 0
	if doc.Equals != nil {
		*p = *Equals(doc.Field, *doc.Equals)
		tests++
	}
	if doc.In != nil {
		*p = *In(doc.Field, doc.In...)
		tests++
	}
	if doc.Contains != nil {
		*p = *Contains(doc.Field, *doc.Contains)
		tests++
	}
	if tests != 1 {
		return fmt.Errorf("line %d: show_if on %q: exactly one of equals, in, contains is required", node.Line, doc.Field)
	}
	return nil
}

func (p Predicate) MarshalJSON() ([]byte, error) {
	doc := predicateDoc{Field: p.DependsOn}
	switch p.Test {
	case TestEquals:
		doc.Equals = &p.Values[0]
	case TestIn:
		doc.In = p.Values
	case TestContains:
		doc.Contains = &p.Values[0]
	}
	return marshalJSON(doc)
}
