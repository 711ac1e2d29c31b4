package roster

// Drop reasons. Every dropped row is counted under exactly one of these, so
// RowsKept plus the sum of RowsDropped always equals RowsRead.
const (
	DropRowMalformed    = "row_malformed"
	DropMissingRequired = "missing_required_field"
	DropAgeOutOfRange   = "age_out_of_range"
	DropAgeUnknown      = "age_unknown" // strict age filtering only
)

// Flag reasons. Flagged rows are kept; the counts surface data quality
// problems without discarding records.
const (
	FlagRowTruncated    = "row_truncated"
	FlagDuplicateCPF    = "duplicate_cpf"
	FlagFutureStartDate = "future_start_date"
)

// Warning messages attached to the report for degraded but non-fatal
// conditions.
const (
	WarnDecodingDegraded = "decoding degraded: no candidate encoding decoded cleanly, lossy UTF-8 used"
	WarnHeaderInferred   = "header inferred: no line matched the header signature, fixed offset used"
	WarnAgeBoundRelaxed  = "age bound relaxed: the configured bound would drop most rows"
)

// Report is the structured summary of one ingestion call. Fatal errors abort
// the call and no report is produced; every non-fatal condition lands here as
// an aggregate count instead of being raised.
type Report struct {
	RowsRead          int
	RowsKept          int
	RowsDropped       map[string]int
	RowsFlagged       map[string]int
	CoercionFailures  map[string]int // semantic field -> failed conversions
	DelimiterDetected rune
	EncodingUsed      string
	HeaderRowIndex    int
	Warnings          []string
}

// NewReport returns a Report with allocated counters.
func NewReport() *Report {
	return &Report{
		RowsDropped:      map[string]int{},
		RowsFlagged:      map[string]int{},
		CoercionFailures: map[string]int{},
	}
}

// Drop counts a dropped row under reason.
func (r *Report) Drop(reason string) { r.RowsDropped[reason]++ }

// Flag counts a kept-but-suspect row under reason.
func (r *Report) Flag(reason string) { r.RowsFlagged[reason]++ }

// Warn appends a warning message once; repeated warnings are collapsed.
func (r *Report) Warn(msg string) {
	for _, w := range r.Warnings {
		if w == msg {
			return
		}
	}
	r.Warnings = append(r.Warnings, msg)
}

// CoercionFailed counts a per-field conversion failure for field.
func (r *Report) CoercionFailed(field string) { r.CoercionFailures[field]++ }

// Dropped returns the total number of dropped rows across all reasons.
func (r *Report) Dropped() int {
	n := 0
	for _, c := range r.RowsDropped {
		n += c
	}
	return n
}

// Accounted reports whether every input row is accounted for exactly once,
// either kept or dropped.
func (r *Report) Accounted() bool { return r.RowsKept+r.Dropped() == r.RowsRead }
