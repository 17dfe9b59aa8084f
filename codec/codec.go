// Package codec maps raw form submissions to records and records to
// tabular export rows.
package codec

import (
	"net/url"
	"sort"
	"strings"

	"github.com/mbolis/boxer-intake/model"
	"github.com/mbolis/boxer-intake/schema"
)

// Submission is a decoded form post, ready to be stored.
type Submission struct {
	AthleteName *string
	Email       *string
	Fields      model.Fields
	Meta        model.Meta
}

// Decode turns submitted form values into a Submission.
//
// A key submitted once becomes a trimmed scalar; a key submitted more than
// once becomes the list of its trimmed, non-empty values. Keys unknown to the
// registry are kept. Required flags are not enforced. A known question whose
// show_if is false for this submission and whose value is blank is dropped.
//
// Known keys come first in catalog order, unknown keys follow sorted.
func Decode(reg *schema.Registry, form url.Values, meta model.Meta) Submission {
	sub := Submission{
		AthleteName: identity(form, model.AthleteNameKey),
		Email:       identity(form, model.EmailKey),
		Meta:        meta,
	}

	for _, name := range orderedKeys(reg, form) {
		sub.Fields.Set(name, decodeValue(form[name]))
	}

	for _, name := range sub.Fields.Keys() {
		q, ok := reg.Lookup(name)
		if !ok || q.ShowIf == nil {
			continue
		}
		v, _ := sub.Fields.Get(name)
		if v.Blank() && !q.ShowIf.Eval(sub.Fields.Lookup) {
			sub.Fields.Delete(name)
		}
	}

	return sub
}

func decodeValue(values []string) model.Value {
	if len(values) == 1 {
		return model.Scalar(strings.TrimSpace(values[0]))
	}
	list := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return model.List(list...)
}

func identity(form url.Values, key string) *string {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func orderedKeys(reg *schema.Registry, form url.Values) []string {
	keys := make([]string, 0, len(form))
	for _, name := range reg.Names() {
		if _, ok := form[name]; ok {
			keys = append(keys, name)
		}
	}

	var unknown []string
	for name := range form {
		if model.IsIdentityKey(name) {
			continue
		}
		if _, ok := reg.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	return append(keys, unknown...)
}
