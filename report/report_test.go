package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/boxer-intake/model"
)

func fieldsOf(values map[string]model.Value) model.Fields {
	var f model.Fields
	for k, v := range values {
		f.Set(k, v)
	}
	return f
}

func TestCutPercent(t *testing.T) {
	f := fieldsOf(map[string]model.Value{
		"walk_around_weight": model.Scalar("70"),
		"typical_cut_amount": model.Scalar(" 4 "),
	})
	pct := CutPercent(f)
	require.NotNil(t, pct)
	assert.InDelta(t, 5.714285, *pct, 1e-6)
	assert.Equal(t, "5.7%", FormatPercent(*pct))
}

func TestCutPercent_Absent(t *testing.T) {
	tests := []struct {
		name string
		walk *model.Value
		cut  *model.Value
	}{
		{"walk zero", valuePtr(model.Scalar("0")), valuePtr(model.Scalar("4"))},
		{"walk negative", valuePtr(model.Scalar("-70")), valuePtr(model.Scalar("4"))},
		{"walk blank", valuePtr(model.Scalar("  ")), valuePtr(model.Scalar("4"))},
		{"walk non-numeric", valuePtr(model.Scalar("seventy")), valuePtr(model.Scalar("4"))},
		{"walk NaN", valuePtr(model.Scalar("NaN")), valuePtr(model.Scalar("4"))},
		{"walk missing", nil, valuePtr(model.Scalar("4"))},
		{"walk is a list", valuePtr(model.List("70")), valuePtr(model.Scalar("4"))},
		{"cut missing", valuePtr(model.Scalar("70")), nil},
		{"cut blank", valuePtr(model.Scalar("70")), valuePtr(model.Scalar(""))},
		{"cut non-numeric", valuePtr(model.Scalar("70")), valuePtr(model.Scalar("a lot"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f model.Fields
			if tt.walk != nil {
				f.Set("walk_around_weight", *tt.walk)
			}
			if tt.cut != nil {
				f.Set("typical_cut_amount", *tt.cut)
			}
			assert.Nil(t, CutPercent(f))
		})
	}
}

func valuePtr(v model.Value) *model.Value { return &v }

func TestCutPercent_ZeroCut(t *testing.T) {
	f := fieldsOf(map[string]model.Value{
		"walk_around_weight": model.Scalar("70"),
		"typical_cut_amount": model.Scalar("0"),
	})
	pct := CutPercent(f)
	require.NotNil(t, pct)
	assert.Equal(t, 0.0, *pct)
	assert.Empty(t, RedFlags(f, pct))
}

func TestRedFlags_FixedOrder(t *testing.T) {
	f := fieldsOf(map[string]model.Value{
		"cut_methods":  model.List("Laxatives or diuretics"),
		"cut_symptoms": model.List("Missed weight", "Dizziness or fainting"),
	})
	assert.Equal(t, []string{FlagLaxatives, FlagDizziness, FlagMissed}, RedFlags(f, nil))
}

func TestRedFlags_All(t *testing.T) {
	f := fieldsOf(map[string]model.Value{
		"walk_around_weight": model.Scalar("70"),
		"typical_cut_amount": model.Scalar("4"),
		"cut_methods":        model.List("Sauna / hot baths", "Laxatives or diuretics"),
		"cut_symptoms":       model.List("Injury occurrence during cuts", "Missed weight", "Dizziness or fainting"),
	})
	s := Summarize(model.Record{ID: 3, Fields: f})

	assert.Equal(t, []string{
		FlagLaxatives,
		FlagDizziness,
		FlagMissed,
		FlagInjury,
		"Typical cut ≥ 5% of walk-around (5.7%)",
	}, s.RedFlags)
	assert.Equal(t, "5.7%", s.CutPercentText)
}

func TestRedFlags_ScalarsAreEmptySets(t *testing.T) {
	f := fieldsOf(map[string]model.Value{
		"cut_methods":  model.Scalar("Laxatives or diuretics"),
		"cut_symptoms": model.Scalar("Missed weight"),
	})
	flags := RedFlags(f, nil)
	assert.NotNil(t, flags)
	assert.Empty(t, flags)
}

func TestRedFlags_ThresholdBoundary(t *testing.T) {
	five := 5.0
	below := 4.99
	assert.Equal(t, []string{"Typical cut ≥ 5% of walk-around (5.0%)"}, RedFlags(model.Fields{}, &five))
	assert.Empty(t, RedFlags(model.Fields{}, &below))
}

func TestSummarize(t *testing.T) {
	name := "Jo"
	f := fieldsOf(map[string]model.Value{
		"competition_weight_class": model.Scalar("-71kg"),
		"walk_around_weight":       model.Scalar("75"),
		"current_bodyweight":       model.Scalar("74"),
		"typical_cut_amount":       model.Scalar("3"),
		"next_fight_date":          model.Scalar("2026-11-01"),
		"fights_per_year":          model.Scalar("6"),
		"weekly_training_hours":    model.Scalar("12"),
	})
	s := Summarize(model.Record{ID: 9, AthleteName: &name, Fields: f})

	assert.Equal(t, int64(9), s.ID)
	assert.Equal(t, "Jo", *s.AthleteName)
	assert.Nil(t, s.Email)
	assert.Equal(t, "-71kg", s.WeightClass)
	assert.Equal(t, "75", s.WalkAroundWeight)
	assert.Equal(t, "74", s.CurrentBodyweight)
	assert.Equal(t, "3", s.TypicalCutAmount)
	assert.Equal(t, "4.0%", s.CutPercentText)
	assert.Equal(t, "2026-11-01", s.NextFightDate)
	assert.Equal(t, "6", s.FightsPerYear)
	assert.Equal(t, "12", s.TrainingHoursWeek)
	assert.Empty(t, s.RedFlags)
	assert.Equal(t, 7, s.Fields.Len())
}

func TestSummarize_RawIsWholeBlob(t *testing.T) {
	rec := model.Record{
		ID:         4,
		Meta:       model.Meta{SubmittedAt: "2025-01-02T03:04:05.000006+00:00", UserAgent: "curl/8"},
		UploadRefs: map[string][]string{"food": {"4_food_diary.pdf"}, "supp": {}, "weigh": {}},
	}
	rec.Fields.Set("walk_around_weight", model.Scalar("70"))

	s := Summarize(rec)
	assert.JSONEq(t, `{
		"walk_around_weight": "70",
		"_meta": {"submitted_at_utc": "2025-01-02T03:04:05.000006+00:00", "user_agent": "curl/8"},
		"food_uploads": ["4_food_diary.pdf"],
		"supp_uploads": [],
		"weigh_uploads": []
	}`, string(s.Raw))
}
