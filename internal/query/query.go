// Package query applies composable predicates over a normalized table.
// Predicates compose by conjunction only; filtering never mutates the source
// table, it produces a View holding row indices into it.
package query

import (
	"efetivo/internal/roster"
	"efetivo/internal/schema"
)

// Predicate decides whether a record belongs to a view.
type Predicate func(roster.Record) bool

// ByRank matches records whose rank equals rank exactly.
func ByRank(rank string) Predicate {
	return func(r roster.Record) bool { return r.Rank == rank }
}

// ByWorkUnits matches records whose work unit description is one of units.
// Comparison is case- and accent-insensitive, matching how unit names drift
// between export revisions.
func ByWorkUnits(units ...string) Predicate {
	set := make(map[string]struct{}, len(units))
	for _, u := range units {
		set[schema.Fold(u)] = struct{}{}
	}
	return func(r roster.Record) bool {
		_, ok := set[schema.Fold(r.WorkUnit)]
		return ok
	}
}

// ByBonus matches records by their permanence-bonus flag.
func ByBonus(receives bool) Predicate {
	return func(r roster.Record) bool { return r.ReceivesBonus == receives }
}

// ByAgeRange matches records with a known age in [min, max]. Records with an
// unknown age never match.
func ByAgeRange(min, max int) Predicate {
	return func(r roster.Record) bool {
		return r.HasAge() && r.Age >= min && r.Age <= max
	}
}

// View is an immutable selection of rows from a table. The zero View is
// empty.
type View struct {
	table *roster.Table
	idx   []int
}

// Filter selects the rows of t satisfying every predicate. With zero
// predicates it returns a view over the full table (the identity filter).
func Filter(t *roster.Table, preds ...Predicate) View {
	idx := make([]int, 0, t.Len())
outer:
	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		for _, p := range preds {
			if !p(rec) {
				continue outer
			}
		}
		idx = append(idx, i)
	}
	return View{table: t, idx: idx}
}

// Refine applies further predicates to an existing view, returning a new
// one. The receiver is unchanged.
func (v View) Refine(preds ...Predicate) View {
	idx := make([]int, 0, len(v.idx))
outer:
	for _, i := range v.idx {
		rec := v.table.At(i)
		for _, p := range preds {
			if !p(rec) {
				continue outer
			}
		}
		idx = append(idx, i)
	}
	return View{table: v.table, idx: idx}
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.idx) }

// At returns the i-th record of the view.
func (v View) At(i int) roster.Record { return v.table.At(v.idx[i]) }

// Records materializes the view into a fresh slice.
func (v View) Records() []roster.Record {
	out := make([]roster.Record, len(v.idx))
	for i, ix := range v.idx {
		out[i] = v.table.At(ix)
	}
	return out
}
