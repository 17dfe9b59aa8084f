package model

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

const metaKey = "_meta"

// UploadCategory ties a multipart form field to the short category used in
// stored filenames and to the data blob key holding the stored references.
type UploadCategory struct {
	Name  string
	Field string
	Label string
}

func (c UploadCategory) DataKey() string {
	return c.Name + "_uploads"
}

var UploadCategories = []UploadCategory{
	{Name: "food", Field: "food_diary_upload", Label: "Food diary"},
	{Name: "supp", Field: "supplement_labels_upload", Label: "Supplement labels"},
	{Name: "weigh", Field: "weighin_sheet_upload", Label: "Weigh-in sheet"},
}

type Meta struct {
	SubmittedAt string `json:"submitted_at_utc"`
	UserAgent   string `json:"user_agent"`
}

// NewMeta stamps a submission with the server clock in UTC.
func NewMeta(now time.Time, userAgent string) Meta {
	return Meta{
		SubmittedAt: FormatTimestamp(now),
		UserAgent:   userAgent,
	}
}

type Record struct {
	ID          int64               `json:"id"`
	CreatedAt   time.Time           `json:"created_at_utc"`
	AthleteName *string             `json:"athlete_name"`
	Email       *string             `json:"email"`
	Fields      Fields              `json:"fields"`
	Meta        Meta                `json:"_meta"`
	UploadRefs  map[string][]string `json:"uploads,omitempty"`
}

func (r *Record) Name() string {
	if r.AthleteName == nil {
		return ""
	}
	return *r.AthleteName
}

func (r *Record) EmailAddress() string {
	if r.Email == nil {
		return ""
	}
	return *r.Email
}

// MarshalData encodes the opaque part of a record (fields, meta and upload
// references) as one flat JSON object: field members first, then "_meta",
// then one "<category>_uploads" member per category with references.
func (r *Record) MarshalData() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := r.Fields.writeMembers(&buf, false); err != nil {
		return nil, err
	}

	mb, err := marshalJSON(r.Meta)
	if err != nil {
		return nil, err
	}
	if r.Fields.Len() > 0 {
		buf.WriteByte(',')
	}
	if err = writeMember(&buf, metaKey, mb); err != nil {
		return nil, err
	}

	for _, c := range UploadCategories {
		refs, ok := r.UploadRefs[c.Name]
		if !ok {
			continue
		}
		if refs == nil {
			refs = []string{}
		}
		rb, err := marshalJSON(refs)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		if err = writeMember(&buf, c.DataKey(), rb); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalData splits a data blob back into fields, meta and upload
// references. Field keys come back sorted.
func (r *Record) UnmarshalData(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Meta = Meta{}
	if mb, ok := raw[metaKey]; ok {
		if err := json.Unmarshal(mb, &r.Meta); err != nil {
			return err
		}
		delete(raw, metaKey)
	}

	r.UploadRefs = nil
	for _, c := range UploadCategories {
		rb, ok := raw[c.DataKey()]
		if !ok {
			continue
		}
		var refs []string
		if err := json.Unmarshal(rb, &refs); err != nil {
			// not a reference list: leave it to the opaque fields
			continue
		}
		if r.UploadRefs == nil {
			r.UploadRefs = make(map[string][]string)
		}
		if refs == nil {
			refs = []string{}
		}
		r.UploadRefs[c.Name] = refs
		delete(raw, c.DataKey())
	}

	r.Fields = Fields{}
	return r.Fields.setAllSorted(raw)
}

// FormatTimestamp renders t in UTC as ISO-8601 with microseconds and an
// explicit +00:00 offset.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000-07:00")
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
