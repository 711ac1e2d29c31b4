package transformer

import (
	"time"

	"github.com/zeebo/xxh3"

	"efetivo/internal/roster"
)

// Validator applies the domain invariants over coerced records, in order:
// required-field drop, age-bound drop, duplicate-identifier flag, future
// start-date flag. Drops and flags are counted in the report; nothing here
// errors.
type Validator struct {
	// AgeMin and AgeMax bound the accepted age, inclusive. Both zero selects
	// the 18..70 default. The exact bound moved between export revisions, so
	// it is configuration, not a constant.
	AgeMin, AgeMax int

	// StrictAge also drops rows whose age could not be parsed. Default keeps
	// them with age unknown.
	StrictAge bool

	// MaxAgeDropFraction is the policy escape hatch: when the age bound
	// would drop more than this fraction of the incoming rows, the bound is
	// skipped entirely and the relaxation is reported. Zero selects 0.5.
	MaxAgeDropFraction float64

	// Now is injectable for the future-start-date check; nil means time.Now.
	Now func() time.Time
}

func (v *Validator) bounds() (int, int) {
	if v.AgeMin == 0 && v.AgeMax == 0 {
		return 18, 70
	}
	return v.AgeMin, v.AgeMax
}

func (v *Validator) maxDrop() float64 {
	if v.MaxAgeDropFraction <= 0 {
		return 0.5
	}
	return v.MaxAgeDropFraction
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate filters results into surviving records, updating rep with drop
// and flag counts, coercion-failure counts, and the age-relaxation warning
// when the policy fires. The input order is preserved.
func (v *Validator) Validate(results []RowResult, rep *roster.Report) []roster.Record {
	min, max := v.bounds()

	// Decide the age policy up front: silently discarding the majority of a
	// dataset is worse than reporting a suspicious bound.
	ageBound := true
	if n := v.countAgeDrops(results, min, max); len(results) > 0 &&
		float64(n) > v.maxDrop()*float64(len(results)) {
		ageBound = false
		rep.Warn(roster.WarnAgeBoundRelaxed)
	}

	now := v.now()
	seenCPF := make(map[uint64]struct{}, len(results))
	kept := make([]roster.Record, 0, len(results))

	for _, res := range results {
		for _, f := range res.Failed {
			rep.CoercionFailed(string(f))
		}
		rec := res.Record

		if rec.Name == "" || rec.WorkUnit == "" || rec.Rank == "" {
			rep.Drop(roster.DropMissingRequired)
			continue
		}
		if ageBound {
			if rec.HasAge() && (rec.Age < min || rec.Age > max) {
				rep.Drop(roster.DropAgeOutOfRange)
				continue
			}
			if v.StrictAge && !rec.HasAge() {
				rep.Drop(roster.DropAgeUnknown)
				continue
			}
		}

		if rec.CPF != "" {
			h := xxh3.HashString(rec.CPF)
			if _, dup := seenCPF[h]; dup {
				rep.Flag(roster.FlagDuplicateCPF)
			}
			seenCPF[h] = struct{}{}
		}
		if rec.HasStartDate() && rec.StartDate.After(now) {
			rep.Flag(roster.FlagFutureStartDate)
		}

		kept = append(kept, rec)
	}
	return kept
}

// countAgeDrops counts rows the configured bound would remove, including
// unknown ages under strict filtering.
func (v *Validator) countAgeDrops(results []RowResult, min, max int) int {
	n := 0
	for _, res := range results {
		rec := res.Record
		switch {
		case rec.HasAge() && (rec.Age < min || rec.Age > max):
			n++
		case v.StrictAge && !rec.HasAge():
			n++
		}
	}
	return n
}
