// Package aggregate computes grouped counts and percentage distributions
// over a filtered view for reporting: by rank (in hierarchy order), by work
// unit (top-N with an explicit remainder bucket), by fixed age bucket and by
// bonus flag. Percentages are one-decimal and always sum to 100.0 for a
// non-empty view.
package aggregate

import (
	"sort"

	"efetivo/internal/query"
)

// Group is one row of a distribution.
type Group struct {
	Label   string
	Count   int
	Percent float64
}

// Distribution is a grouped count over one dimension of a view. Total covers
// every counted record, including any remainder bucket; an empty view yields
// an empty (not nil-error) distribution.
type Distribution struct {
	Dimension string
	Total     int
	Groups    []Group
}

// Empty reports whether the distribution covers zero rows. Aggregating an
// empty view is reported this way, never as an error.
func (d Distribution) Empty() bool { return d.Total == 0 }

// Bucket is a fixed half-open age interval. Max < 0 marks the final
// open-ended bucket.
type Bucket struct {
	Label    string
	Min, Max int
}

// AgeBuckets are the published reporting intervals, applied consistently
// regardless of caller.
var AgeBuckets = []Bucket{
	{"18-25", 18, 25},
	{"26-30", 26, 30},
	{"31-35", 31, 35},
	{"36-40", 36, 40},
	{"41-45", 41, 45},
	{"46-50", 46, 50},
	{"51-55", 51, 55},
	{"56+", 56, -1},
}

// OthersLabel is the remainder bucket emitted by top-N truncation. It is
// part of the distribution, never silently dropped.
const OthersLabel = "outros"

// ByRank groups the view by rank, ordered highest grade first (the order
// institutional reports use), with unknown ranks after all known ones.
func ByRank(v query.View) Distribution {
	counts := map[string]int{}
	order := map[string]int{}
	for i := 0; i < v.Len(); i++ {
		rec := v.At(i)
		counts[rec.Rank]++
		order[rec.Rank] = rec.RankOrder
	}
	groups := make([]Group, 0, len(counts))
	for label, n := range counts {
		groups = append(groups, Group{Label: label, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		oi, oj := order[groups[i].Label], order[groups[j].Label]
		if oi != oj {
			return oi > oj
		}
		return groups[i].Label < groups[j].Label
	})
	return finish("rank", v.Len(), groups)
}

// ByWorkUnit groups the view by work unit description, descending by count,
// keeping the topN largest units and folding the rest into the remainder
// bucket. topN <= 0 disables truncation.
func ByWorkUnit(v query.View, topN int) Distribution {
	counts := map[string]int{}
	for i := 0; i < v.Len(); i++ {
		counts[v.At(i).WorkUnit]++
	}
	groups := make([]Group, 0, len(counts))
	for label, n := range counts {
		groups = append(groups, Group{Label: label, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Label < groups[j].Label
	})
	if topN > 0 && len(groups) > topN {
		rest := 0
		for _, g := range groups[topN:] {
			rest += g.Count
		}
		groups = append(groups[:topN:topN], Group{Label: OthersLabel, Count: rest})
	}
	return finish("work_unit", v.Len(), groups)
}

// ByBonus groups the view by the permanence-bonus flag.
func ByBonus(v query.View) Distribution {
	yes, no := 0, 0
	for i := 0; i < v.Len(); i++ {
		if v.At(i).ReceivesBonus {
			yes++
		} else {
			no++
		}
	}
	groups := []Group{{Label: "recebe", Count: yes}, {Label: "não recebe", Count: no}}
	return finish("receives_bonus", v.Len(), groups)
}

// ByAgeBucket groups records with a known age into the fixed buckets.
// Unknown ages are excluded; the distribution total covers bucketed records
// only, so percentages still sum to 100.
func ByAgeBucket(v query.View) Distribution {
	counts := make([]int, len(AgeBuckets))
	total := 0
	for i := 0; i < v.Len(); i++ {
		rec := v.At(i)
		if !rec.HasAge() {
			continue
		}
		if b := bucketIndex(rec.Age); b >= 0 {
			counts[b]++
			total++
		}
	}
	groups := make([]Group, 0, len(AgeBuckets))
	for i, b := range AgeBuckets {
		if counts[i] == 0 {
			continue
		}
		groups = append(groups, Group{Label: b.Label, Count: counts[i]})
	}
	return finish("age_bucket", total, groups)
}

func bucketIndex(age int) int {
	for i, b := range AgeBuckets {
		if age >= b.Min && (b.Max < 0 || age <= b.Max) {
			return i
		}
	}
	return -1
}

// AgeStats summarizes the known ages of a view: mean, median, min, max and
// how many records carried an age. ok is false when no record has a known
// age.
type AgeStats struct {
	Mean   float64
	Median float64
	Min    int
	Max    int
	Count  int
}

// Ages computes AgeStats over the view.
func Ages(v query.View) (AgeStats, bool) {
	var ages []int
	for i := 0; i < v.Len(); i++ {
		if rec := v.At(i); rec.HasAge() {
			ages = append(ages, rec.Age)
		}
	}
	if len(ages) == 0 {
		return AgeStats{}, false
	}
	sort.Ints(ages)
	sum := 0
	for _, a := range ages {
		sum += a
	}
	st := AgeStats{
		Mean:  float64(sum) / float64(len(ages)),
		Min:   ages[0],
		Max:   ages[len(ages)-1],
		Count: len(ages),
	}
	mid := len(ages) / 2
	if len(ages)%2 == 1 {
		st.Median = float64(ages[mid])
	} else {
		st.Median = float64(ages[mid-1]+ages[mid]) / 2
	}
	return st, true
}

// finish fills percentages using the largest-remainder method so one-decimal
// values sum to exactly 100.0 for any non-empty total.
func finish(dimension string, total int, groups []Group) Distribution {
	d := Distribution{Dimension: dimension, Total: total, Groups: groups}
	if total == 0 {
		return d
	}

	// Work in tenths of a percent to stay in integers.
	type rem struct {
		idx   int
		fract float64
	}
	tenths := make([]int, len(groups))
	rems := make([]rem, len(groups))
	assigned := 0
	for i, g := range groups {
		exact := float64(g.Count) * 1000 / float64(total)
		tenths[i] = int(exact)
		rems[i] = rem{idx: i, fract: exact - float64(tenths[i])}
		assigned += tenths[i]
	}
	sort.Slice(rems, func(i, j int) bool {
		if rems[i].fract != rems[j].fract {
			return rems[i].fract > rems[j].fract
		}
		return rems[i].idx < rems[j].idx
	})
	for i := 0; i < 1000-assigned && i < len(rems); i++ {
		tenths[rems[i].idx]++
	}
	for i := range d.Groups {
		d.Groups[i].Percent = float64(tenths[i]) / 10
	}
	return d
}
