package roster

import "testing"

func TestReportAccounting(t *testing.T) {
	t.Parallel()
	rep := NewReport()
	rep.RowsRead = 10
	rep.RowsKept = 7
	rep.Drop(DropRowMalformed)
	rep.Drop(DropAgeOutOfRange)
	rep.Drop(DropAgeOutOfRange)

	if rep.Dropped() != 3 {
		t.Fatalf("Dropped() = %d, want 3", rep.Dropped())
	}
	if !rep.Accounted() {
		t.Fatalf("kept=%d dropped=%d read=%d: rows not accounted for", rep.RowsKept, rep.Dropped(), rep.RowsRead)
	}
	if rep.RowsDropped[DropAgeOutOfRange] != 2 {
		t.Fatalf("age_out_of_range = %d, want 2", rep.RowsDropped[DropAgeOutOfRange])
	}
}

func TestReportWarnCollapsesDuplicates(t *testing.T) {
	t.Parallel()
	rep := NewReport()
	rep.Warn(WarnHeaderInferred)
	rep.Warn(WarnHeaderInferred)
	rep.Warn(WarnAgeBoundRelaxed)
	if len(rep.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 distinct entries", rep.Warnings)
	}
}

func TestReportFlaggedRowsAreKept(t *testing.T) {
	t.Parallel()
	rep := NewReport()
	rep.RowsRead = 4
	rep.RowsKept = 4
	rep.Flag(FlagDuplicateCPF)
	rep.Flag(FlagFutureStartDate)
	if !rep.Accounted() {
		t.Fatal("flags must not affect row accounting")
	}
}
