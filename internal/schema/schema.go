// Package schema maps the raw column names of a personnel export onto
// canonical semantic fields. Real exports spell the same column many ways
// ("Descrição da Unidade de Trabalho", "Unidade Trabalho", "LOTACAO"), so
// resolution is case- and accent-insensitive substring matching against a
// declared alias table rather than exact name lookup.
package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field names the canonical semantic fields of a personnel record.
type Field string

const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldCPF          Field = "cpf"
	FieldBirthDate    Field = "birth_date"
	FieldAge          Field = "age"
	FieldWorkUnitCode Field = "work_unit_code"
	FieldWorkUnit     Field = "work_unit"
	FieldRank         Field = "rank"
	FieldStartDate    Field = "start_date"
	FieldBonus        Field = "receives_bonus"
)

// Required lists the semantic fields an export must provide; ingestion fails
// with MissingColumnError when any of them cannot be resolved from the raw
// headers.
var Required = []Field{FieldName, FieldWorkUnit, FieldRank}

// Alias declares one way a canonical field may appear in a raw header. When
// Exact is set the folded header must equal the single fragment; otherwise
// every fragment must occur as a substring of the folded header.
type Alias struct {
	Field     Field
	Fragments []string
	Exact     bool
}

// AliasTable is an ordered list of aliases. Order matters: the first matching
// alias wins, so more specific aliases (e.g. "codigo"+"unidade") must precede
// broader ones ("unidade", and especially "idade", which is a suffix of
// "unidade").
type AliasTable []Alias

// DefaultAliases covers the header spellings observed across SEAP export
// revisions. Fragments are written in folded form (lowercase, no accents).
func DefaultAliases() AliasTable {
	return AliasTable{
		{Field: FieldID, Fragments: []string{"id"}, Exact: true},
		{Field: FieldCPF, Fragments: []string{"cpf"}, Exact: true},
		{Field: FieldWorkUnitCode, Fragments: []string{"codigo", "unidade"}},
		{Field: FieldWorkUnit, Fragments: []string{"unidade", "trabalho"}},
		{Field: FieldWorkUnit, Fragments: []string{"descricao", "unidade"}},
		{Field: FieldWorkUnit, Fragments: []string{"lotacao"}},
		{Field: FieldBirthDate, Fragments: []string{"nascimento"}},
		{Field: FieldStartDate, Fragments: []string{"inicio"}},
		{Field: FieldStartDate, Fragments: []string{"admissao"}},
		{Field: FieldBonus, Fragments: []string{"abono"}},
		{Field: FieldRank, Fragments: []string{"cargo"}},
		{Field: FieldRank, Fragments: []string{"posto"}},
		{Field: FieldRank, Fragments: []string{"graduacao"}},
		{Field: FieldName, Fragments: []string{"nome"}},
		{Field: FieldAge, Fragments: []string{"idade"}},
	}
}

// Resolve maps a raw header name onto its canonical field. The second return
// value is false when no alias matches; unmapped columns are simply ignored
// by the pipeline.
func (t AliasTable) Resolve(header string) (Field, bool) {
	h := Fold(header)
	if h == "" {
		return "", false
	}
	for _, a := range t {
		if a.Exact {
			if len(a.Fragments) == 1 && h == a.Fragments[0] {
				return a.Field, true
			}
			continue
		}
		all := true
		for _, frag := range a.Fragments {
			if !strings.Contains(h, frag) {
				all = false
				break
			}
		}
		if all && len(a.Fragments) > 0 {
			return a.Field, true
		}
	}
	return "", false
}

// Columns binds raw header positions to canonical fields. Index holds, per
// canonical field, the position of the matching raw column.
type Columns struct {
	Raw   []string
	Index map[Field]int
}

// MissingColumnError names the required semantic field that could not be
// resolved from any raw header. It aborts the ingestion call.
type MissingColumnError struct {
	Field   Field
	Headers []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("schema: no column resolves to required field %q (headers: %s)",
		e.Field, strings.Join(e.Headers, ", "))
}

// MapColumns resolves every raw header against the alias table and verifies
// that all required fields are present. The first raw column matching a field
// wins; later duplicates of the same field are ignored.
func MapColumns(headers []string, aliases AliasTable) (*Columns, error) {
	cols := &Columns{
		Raw:   append([]string(nil), headers...),
		Index: make(map[Field]int),
	}
	for i, h := range headers {
		f, ok := aliases.Resolve(h)
		if !ok {
			continue
		}
		if _, seen := cols.Index[f]; !seen {
			cols.Index[f] = i
		}
	}
	for _, f := range Required {
		if _, ok := cols.Index[f]; !ok {
			return nil, &MissingColumnError{Field: f, Headers: headers}
		}
	}
	return cols, nil
}

// Value returns the raw value of field f in row, or "" when the export does
// not carry the field or the row is too short.
func (c *Columns) Value(row []string, f Field) string {
	i, ok := c.Index[f]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Has reports whether the export carries a column for f.
func (c *Columns) Has(f Field) bool {
	_, ok := c.Index[f]
	return ok
}

// foldChain strips accents: decompose, remove nonspacing marks, recompose.
var foldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases s and strips diacritics so that "Descrição" and "DESCRICAO"
// compare equal.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return folded
}
