// Package transformer converts the raw string fields of a parsed export into
// typed personnel records and enforces the domain invariants that decide
// whether a record survives. Both stages are fail-soft: coercion never
// errors (failures yield typed unknown/invalid markers) and validation drops
// or flags rows while counting every decision.
package transformer

import (
	"strings"
	"time"

	"efetivo/internal/roster"
	"efetivo/internal/schema"
)

// dateLayouts is the ladder tried for every date field: the Brazilian
// dd/mm/yyyy form first, then the ISO and dashed variants seen in older
// export revisions.
var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// truthy lists the yes-like tokens (folded) that mark the permanence bonus.
// Anything else, including empty, is false.
var truthy = map[string]struct{}{
	"sim": {}, "s": {}, "yes": {}, "y": {},
}

// daysPerYear converts a start-date delta into fractional service years.
const daysPerYear = 365.25

// RowResult pairs a coerced record with the semantic fields whose raw values
// could not be converted. Failures are counted, never raised.
type RowResult struct {
	Record roster.Record
	Failed []schema.Field
}

// Coercer performs per-field, per-row conversion with field-specific rules.
// Now is injectable so service years and future-date checks are
// deterministic in tests; when nil, time.Now is used.
type Coercer struct {
	Now func() time.Time
}

func (c *Coercer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Coerce converts one raw row into a record using the resolved column map.
// It is safe to call concurrently from multiple workers.
func (c *Coercer) Coerce(cols *schema.Columns, row []string) RowResult {
	res := RowResult{Record: roster.Record{
		ID:           cols.Value(row, schema.FieldID),
		Name:         strings.TrimSpace(cols.Value(row, schema.FieldName)),
		WorkUnitCode: cols.Value(row, schema.FieldWorkUnitCode),
		WorkUnit:     strings.TrimSpace(cols.Value(row, schema.FieldWorkUnit)),
		Rank:         strings.TrimSpace(cols.Value(row, schema.FieldRank)),
		Age:          roster.AgeUnknown,
		ServiceYears: roster.ServiceYearsUnknown,
	}}

	res.Record.CPF = c.coerceCPF(cols.Value(row, schema.FieldCPF), &res)
	res.Record.Age = c.coerceAge(cols.Value(row, schema.FieldAge), &res)
	res.Record.BirthDate = c.coerceDate(cols.Value(row, schema.FieldBirthDate), schema.FieldBirthDate, &res)
	res.Record.StartDate = c.coerceDate(cols.Value(row, schema.FieldStartDate), schema.FieldStartDate, &res)
	res.Record.ReceivesBonus = coerceBonus(cols.Value(row, schema.FieldBonus))

	if !res.Record.StartDate.IsZero() {
		res.Record.ServiceYears = c.now().Sub(res.Record.StartDate).Hours() / 24 / daysPerYear
	}
	return res
}

// coerceAge strips whitespace, accepts a decimal comma, and parses the
// leading run of digits, ignoring trailing noise ("35 anos" -> 35). Failure
// yields AgeUnknown, never zero.
func (c *Coercer) coerceAge(raw string, res *RowResult) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return roster.AgeUnknown
	}
	s = strings.ReplaceAll(s, ",", ".")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		res.fail(schema.FieldAge)
		return roster.AgeUnknown
	}
	age := 0
	for _, d := range s[:end] {
		age = age*10 + int(d-'0')
	}
	return age
}

// coerceDate walks the layout ladder; failure yields the zero time and a
// counted coercion failure so callers can see the proportion of unparseable
// dates.
func (c *Coercer) coerceDate(raw string, f schema.Field, res *RowResult) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	res.fail(f)
	return time.Time{}
}

// coerceCPF strips all non-digit characters and accepts only an exact
// 11-digit result; anything else is the Invalid marker (empty string).
// Normalization is idempotent: an already-normalized CPF passes unchanged.
func (c *Coercer) coerceCPF(raw string, res *RowResult) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		res.fail(schema.FieldCPF)
		return ""
	}
	return digits
}

func coerceBonus(raw string) bool {
	_, ok := truthy[schema.Fold(raw)]
	return ok
}

func (r *RowResult) fail(f schema.Field) { r.Failed = append(r.Failed, f) }
