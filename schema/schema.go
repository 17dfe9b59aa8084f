// Package schema holds the intake questionnaire: an ordered catalog of
// sections and questions, loaded once from an embedded YAML document and
// never modified afterwards.
package schema

import (
	_ "embed"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mbolis/boxer-intake/model"
)

//go:embed questions.yaml
var catalog []byte

type Registry struct {
	sections  []model.Section
	questions []model.Question
	byName    map[string]model.Question
}

// Load parses the embedded catalog.
func Load() (*Registry, error) {
	return Parse(catalog)
}

// Parse builds a Registry from a YAML catalog and checks it: names are unique,
// kinds are known, option kinds have options, and every show_if refers to
// another question.
func Parse(data []byte) (*Registry, error) {
	var doc struct {
		Sections []model.Section `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "schema: parse")
	}

	reg := &Registry{
		sections: doc.Sections,
		byName:   make(map[string]model.Question),
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}

	for _, s := range reg.sections {
		for _, q := range s.Questions {
			if !model.IsIdentityKey(q.Name) {
				reg.questions = append(reg.questions, q)
			}
		}
	}
	return reg, nil
}

// validate reports every problem found, not only the first one.
func (reg *Registry) validate() error {
	var result *multierror.Error
	if len(reg.sections) == 0 {
		result = multierror.Append(result, errors.New("no sections"))
	}
	for i, s := range reg.sections {
		if s.Title == "" {
			result = multierror.Append(result, errors.Errorf("sections[%d].title is required", i))
		}
		for j, q := range s.Questions {
			switch {
			case q.Name == "":
				result = multierror.Append(result, errors.Errorf("sections[%d].questions[%d].name is required", i, j))
				continue
			case !q.Kind.Valid():
				result = multierror.Append(result, errors.Errorf("%s: unknown type %q", q.Name, q.Kind))
			case q.Kind.HasOptions() && len(q.Options) == 0:
				result = multierror.Append(result, errors.Errorf("%s: type %s needs options", q.Name, q.Kind))
			}
			if _, dup := reg.byName[q.Name]; dup {
				result = multierror.Append(result, errors.Errorf("%s: duplicate name", q.Name))
			}
			reg.byName[q.Name] = q
		}
	}

	for _, s := range reg.sections {
		for _, q := range s.Questions {
			if q.ShowIf == nil {
				continue
			}
			if q.ShowIf.DependsOn == q.Name {
				result = multierror.Append(result, errors.Errorf("%s: show_if refers to itself", q.Name))
			} else if _, ok := reg.byName[q.ShowIf.DependsOn]; !ok {
				result = multierror.Append(result, errors.Errorf("%s: show_if refers to unknown field %q", q.Name, q.ShowIf.DependsOn))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(err, "schema: validation failed")
	}
	return nil
}

// Sections returns the catalog in render order.
func (reg *Registry) Sections() []model.Section {
	return reg.sections
}

// Questions returns every question in catalog order, without the identity
// questions.
func (reg *Registry) Questions() []model.Question {
	return reg.questions
}

func (reg *Registry) Lookup(name string) (model.Question, bool) {
	q, ok := reg.byName[name]
	return q, ok
}

// Names returns the storage keys of Questions, in order.
func (reg *Registry) Names() []string {
	names := make([]string, len(reg.questions))
	for i, q := range reg.questions {
		names[i] = q.Name
	}
	return names
}
