// Package report derives the coach summary of one intake: cut percentage
// and rule-based red flags.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbolis/boxer-intake/model"
)

const cutPercentThreshold = 5.0

// Red flag messages, in evaluation order.
const (
	FlagLaxatives = "Uses laxatives/diuretics during cuts"
	FlagDizziness = "Dizziness/fainting during cuts"
	FlagMissed    = "History of missed weight"
	FlagInjury    = "Injury occurrence during cuts"
)

type Summary struct {
	ID                int64     `json:"id"`
	CreatedAt         time.Time `json:"created_at_utc"`
	AthleteName       *string   `json:"athlete_name"`
	Email             *string   `json:"email"`
	WeightClass       string    `json:"weight_class,omitempty"`
	WalkAroundWeight  string    `json:"walk_around_weight,omitempty"`
	CurrentBodyweight string    `json:"current_bodyweight,omitempty"`
	TypicalCutAmount  string    `json:"typical_cut_amount,omitempty"`
	CutPercent        *float64  `json:"cut_percent,omitempty"`
	CutPercentText    string    `json:"cut_percent_of_walk_around,omitempty"`
	NextFightDate     string    `json:"next_fight_date,omitempty"`
	FightsPerYear     string    `json:"fights_per_year,omitempty"`
	TrainingHoursWeek string    `json:"training_hours_week,omitempty"`
	RedFlags          []string  `json:"red_flags"`

	// Raw is the whole stored blob: answers, _meta and upload references.
	Raw    json.RawMessage `json:"raw"`
	Fields model.Fields    `json:"-"`
}

// Summarize never fails: blank or malformed numbers are treated as absent.
func Summarize(rec model.Record) Summary {
	s := Summary{
		ID:                rec.ID,
		CreatedAt:         rec.CreatedAt,
		AthleteName:       rec.AthleteName,
		Email:             rec.Email,
		WeightClass:       scalar(rec.Fields, "competition_weight_class"),
		WalkAroundWeight:  scalar(rec.Fields, "walk_around_weight"),
		CurrentBodyweight: scalar(rec.Fields, "current_bodyweight"),
		TypicalCutAmount:  scalar(rec.Fields, "typical_cut_amount"),
		NextFightDate:     scalar(rec.Fields, "next_fight_date"),
		FightsPerYear:     scalar(rec.Fields, "fights_per_year"),
		TrainingHoursWeek: scalar(rec.Fields, "weekly_training_hours"),
		Fields:            rec.Fields,
	}

	raw, err := rec.MarshalData()
	if err != nil {
		raw, _ = rec.Fields.MarshalJSON()
	}
	s.Raw = raw

	s.CutPercent = CutPercent(rec.Fields)
	if s.CutPercent != nil {
		s.CutPercentText = FormatPercent(*s.CutPercent)
	}
	s.RedFlags = RedFlags(rec.Fields, s.CutPercent)
	return s
}

// CutPercent is typical_cut_amount as a percentage of walk_around_weight, or
// nil when either is missing or the walk-around weight is not positive.
func CutPercent(fields model.Fields) *float64 {
	walk, ok := number(fields, "walk_around_weight")
	if !ok || walk <= 0 {
		return nil
	}
	cut, ok := number(fields, "typical_cut_amount")
	if !ok {
		return nil
	}
	pct := cut / walk * 100
	return &pct
}

// RedFlags evaluates every rule independently and returns the triggered
// messages in fixed order, whatever the order of the answers.
func RedFlags(fields model.Fields, cutPercent *float64) []string {
	methods := set(fields, "cut_methods")
	symptoms := set(fields, "cut_symptoms")

	flags := []string{}
	if methods["Laxatives or diuretics"] {
		flags = append(flags, FlagLaxatives)
	}
	if symptoms["Dizziness or fainting"] {
		flags = append(flags, FlagDizziness)
	}
	if symptoms["Missed weight"] {
		flags = append(flags, FlagMissed)
	}
	if symptoms["Injury occurrence during cuts"] {
		flags = append(flags, FlagInjury)
	}
	if cutPercent != nil && *cutPercent >= cutPercentThreshold {
		flags = append(flags, fmt.Sprintf("Typical cut ≥ 5%% of walk-around (%s)", FormatPercent(*cutPercent)))
	}
	return flags
}

func FormatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

func scalar(fields model.Fields, name string) string {
	v, ok := fields.Get(name)
	if !ok || v.IsList() {
		return ""
	}
	return v.String()
}

func number(fields model.Fields, name string) (float64, bool) {
	text := strings.TrimSpace(scalar(fields, name))
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// set holds the items of a list answer; scalar or missing answers give an
// empty set.
func set(fields model.Fields, name string) map[string]bool {
	v, ok := fields.Get(name)
	if !ok || !v.IsList() {
		return map[string]bool{}
	}
	items := make(map[string]bool, len(v.Strings()))
	for _, item := range v.Strings() {
		items[item] = true
	}
	return items
}
