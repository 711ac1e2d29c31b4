package roster

import "strings"

// DefaultHierarchy is the published CBMPR post/grade ladder, lowest to
// highest. Rank order values index into this table, so "Soldado 2ª Classe"
// sorts first and "Coronel" last. "2º Tenente 6" is a distinct grade variant
// that shares a prefix with "2º Tenente"; exact-name matching takes priority
// over containment, so both resolve correctly.
var DefaultHierarchy = []string{
	"Soldado 2ª Classe",
	"Soldado 1ª Classe",
	"Cabo",
	"3º Sargento",
	"2º Sargento",
	"1º Sargento",
	"Subtenente",
	"Aluno de 1º Ano",
	"Aluno de 2º Ano",
	"Aluno de 3º Ano",
	"Aspirante a Oficial",
	"2º Tenente 6",
	"2º Tenente",
	"1º Tenente",
	"Capitão",
	"Major",
	"Tenente Coronel",
	"Coronel",
}

// Resolver assigns a total, deterministic sort order to rank strings.
//
// Exact matches against the published table win. Otherwise a rank that
// contains, or is contained by, a published name takes that name's order;
// when several published names match, the longest one wins so that
// "Tenente Coronel BM" resolves to Tenente Coronel rather than Coronel.
// Anything matching nothing receives a sentinel order past the end of the
// published table, assigned in first-seen order so unknown ranks sort after
// all known ones, stably.
type Resolver struct {
	exact   map[string]int
	names   []string
	unknown map[string]int
}

// NewResolver builds a Resolver over hierarchy, ordered lowest to highest.
func NewResolver(hierarchy []string) *Resolver {
	r := &Resolver{
		exact:   make(map[string]int, len(hierarchy)),
		names:   append([]string(nil), hierarchy...),
		unknown: map[string]int{},
	}
	for i, name := range hierarchy {
		r.exact[name] = i
	}
	return r
}

// Order returns the sort order for rank. It is total: every input, including
// the empty string, gets an order, and repeated calls with the same rank
// always return the same value.
func (r *Resolver) Order(rank string) int {
	if o, ok := r.exact[rank]; ok {
		return o
	}
	if rank != "" {
		best, bestLen := -1, 0
		for i, name := range r.names {
			if strings.Contains(rank, name) || strings.Contains(name, rank) {
				if len(name) > bestLen {
					best, bestLen = i, len(name)
				}
			}
		}
		if best >= 0 {
			return best
		}
	}
	if o, ok := r.unknown[rank]; ok {
		return o
	}
	o := len(r.names) + len(r.unknown)
	r.unknown[rank] = o
	return o
}

// Known reports whether rank resolves to a published grade.
func (r *Resolver) Known(rank string) bool {
	return r.Order(rank) < len(r.names)
}
