// Package roster defines the normalized personnel data model produced by one
// ingestion run: the PersonnelRecord, the immutable NormalizedTable, the
// ingestion Report that accounts for every imperfection encountered, and the
// rank hierarchy resolver used to order posts/grades institutionally rather
// than alphabetically.
package roster

import "time"

// AgeUnknown marks a record whose age field could not be parsed. Records with
// an unknown age are kept (unless strict filtering is enabled) and excluded
// from age-based aggregations.
const AgeUnknown = -1

// ServiceYearsUnknown marks a record whose start date is unknown.
const ServiceYearsUnknown = -1

// Record is the canonical unit of the normalized table. String fields are
// trimmed; CPF holds exactly 11 digits or is empty when the source value was
// invalid; zero time values mean "unknown".
type Record struct {
	ID            string
	Name          string
	CPF           string
	BirthDate     time.Time
	Age           int
	WorkUnitCode  string
	WorkUnit      string
	Rank          string
	RankOrder     int
	StartDate     time.Time
	ReceivesBonus bool
	ServiceYears  float64
}

// HasAge reports whether the record carries a parsed age.
func (r Record) HasAge() bool { return r.Age != AgeUnknown }

// HasStartDate reports whether the record carries a parsed start date.
func (r Record) HasStartDate() bool { return !r.StartDate.IsZero() }

// Table is the immutable collection of validated records produced by one
// ingestion call. Filtering and aggregation derive new views; the table
// itself is never mutated in place.
type Table struct {
	records []Record
}

// NewTable wraps records into a Table. The slice is owned by the table after
// the call.
func NewTable(records []Record) *Table { return &Table{records: records} }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns the record at index i.
func (t *Table) At(i int) Record { return t.records[i] }

// Records exposes the underlying records for read-only iteration. Callers
// must not modify the returned slice.
func (t *Table) Records() []Record { return t.records }
