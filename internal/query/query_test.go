package query

import (
	"testing"

	"efetivo/internal/roster"
)

func testTable() *roster.Table {
	return roster.NewTable([]roster.Record{
		{Name: "A", WorkUnit: "1º Grupamento", Rank: "Cabo", Age: 30, ReceivesBonus: false},
		{Name: "B", WorkUnit: "2º Grupamento", Rank: "Major", Age: 52, ReceivesBonus: true},
		{Name: "C", WorkUnit: "1º Grupamento", Rank: "Cabo", Age: 41, ReceivesBonus: false},
		{Name: "D", WorkUnit: "Quartel Central", Rank: "Coronel", Age: roster.AgeUnknown, ReceivesBonus: true},
	})
}

func names(v View) []string {
	var out []string
	for i := 0; i < v.Len(); i++ {
		out = append(out, v.At(i).Name)
	}
	return out
}

func TestFilterZeroPredicatesIsIdentity(t *testing.T) {
	t.Parallel()
	tab := testTable()
	v := Filter(tab)
	if v.Len() != tab.Len() {
		t.Fatalf("identity view len = %d, want %d", v.Len(), tab.Len())
	}
	for i := 0; i < v.Len(); i++ {
		if v.At(i).Name != tab.At(i).Name {
			t.Fatalf("identity view reordered records")
		}
	}
}

func TestFilterByRank(t *testing.T) {
	t.Parallel()
	v := Filter(testTable(), ByRank("Cabo"))
	got := names(v)
	if len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("ByRank(Cabo) = %v, want [A C]", got)
	}
}

func TestFilterConjunction(t *testing.T) {
	t.Parallel()
	v := Filter(testTable(), ByRank("Cabo"), ByAgeRange(40, 50))
	got := names(v)
	if len(got) != 1 || got[0] != "C" {
		t.Fatalf("conjunction = %v, want [C]", got)
	}
}

func TestFilterByWorkUnitsFolded(t *testing.T) {
	t.Parallel()
	v := Filter(testTable(), ByWorkUnits("1º GRUPAMENTO"))
	if v.Len() != 2 {
		t.Fatalf("ByWorkUnits len = %d, want 2 (case-insensitive)", v.Len())
	}
}

func TestFilterByBonus(t *testing.T) {
	t.Parallel()
	v := Filter(testTable(), ByBonus(true))
	got := names(v)
	if len(got) != 2 || got[0] != "B" || got[1] != "D" {
		t.Fatalf("ByBonus(true) = %v, want [B D]", got)
	}
}

func TestUnknownAgeNeverMatchesAgeRange(t *testing.T) {
	t.Parallel()
	v := Filter(testTable(), ByAgeRange(0, 200))
	for i := 0; i < v.Len(); i++ {
		if !v.At(i).HasAge() {
			t.Fatal("record with unknown age matched an age range")
		}
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	t.Parallel()
	tab := testTable()
	once := Filter(tab, ByBonus(true))
	twice := once.Refine(ByBonus(true))
	if once.Len() != twice.Len() {
		t.Fatalf("idempotence violated: %d then %d", once.Len(), twice.Len())
	}
	for i := 0; i < once.Len(); i++ {
		if once.At(i).Name != twice.At(i).Name {
			t.Fatal("idempotent refinement changed view contents")
		}
	}
}

func TestFilterDoesNotMutateSource(t *testing.T) {
	t.Parallel()
	tab := testTable()
	before := tab.Len()
	_ = Filter(tab, ByRank("Cabo"))
	if tab.Len() != before {
		t.Fatal("source table mutated by filtering")
	}
}

func TestRecordsMaterializesCopy(t *testing.T) {
	t.Parallel()
	tab := testTable()
	v := Filter(tab, ByRank("Cabo"))
	recs := v.Records()
	recs[0].Name = "mutado"
	if tab.At(0).Name != "A" {
		t.Fatal("materialized copy aliased the table")
	}
}
