// Package seap locates and splits the tabular payload inside a SEAP
// personnel-export text blob. Exports carry an arbitrary number of metadata
// preamble lines before the real header, use either comma or semicolon (or
// tab) as delimiter, and routinely contain ragged rows; the parser tolerates
// all of that, counting every imperfection instead of failing.
package seap

import (
	"errors"
	"strings"

	"efetivo/internal/schema"
)

// ErrHeaderNotFound is returned when neither the signature scan nor the
// legacy fixed-offset fallback locates a header row. It is fatal for the
// ingestion call; no partial table is produced.
var ErrHeaderNotFound = errors.New("seap: no line matches the ID/Nome/RG header signature")

// DefaultDelimiters is the candidate list in preference order. Semicolon
// first: payroll exports commonly use it, and free-text fields contain
// commas.
var DefaultDelimiters = []rune{';', ',', '\t'}

// DefaultHeaderSearchWindow bounds the signature scan over preamble lines.
const DefaultHeaderSearchWindow = 10

// Options configures header location. Zero values select the defaults; set
// LegacyHeaderOffset to a negative value to disable the fixed-offset
// fallback (the zero value would otherwise mean "line 0").
type Options struct {
	// Delimiters are the candidate field separators, in preference order.
	Delimiters []rune

	// HeaderSearchWindow is how many leading lines are scanned for the
	// header signature.
	HeaderSearchWindow int

	// LegacyHeaderOffset, when >= 0, names the line treated as the header if
	// the signature scan fails. Older export revisions hardcoded "skip 7
	// lines"; this keeps those files ingestible.
	LegacyHeaderOffset int
}

func (o Options) delimiters() []rune {
	if len(o.Delimiters) == 0 {
		return DefaultDelimiters
	}
	return o.Delimiters
}

func (o Options) window() int {
	if o.HeaderSearchWindow <= 0 {
		return DefaultHeaderSearchWindow
	}
	return o.HeaderSearchWindow
}

// RawTable is the ephemeral product of one parse: trimmed string fields plus
// everything the normalization stages need to know about how the table was
// found. It is consumed entirely by normalization and never outlives the
// ingestion call.
type RawTable struct {
	Headers        []string
	Rows           [][]string
	Delimiter      rune
	HeaderIndex    int
	HeaderInferred bool

	// Malformed counts rows dropped for having fewer fields than the header;
	// Truncated counts rows kept after discarding surplus fields.
	Malformed int
	Truncated int
}

// RowsRead is the number of data rows encountered, dropped or kept.
func (t *RawTable) RowsRead() int { return len(t.Rows) + t.Malformed }

// Parse splits text into lines, locates the header row and delimiter, and
// splits the data rows. Short rows are dropped and counted, long rows are
// truncated to the header width and counted, and fields are whitespace
// trimmed. Blank lines are not data and are skipped without counting.
func Parse(text string, opt Options) (*RawTable, error) {
	lines := splitLines(text)

	headerIdx, delim, inferred := locateHeader(lines, opt)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}

	headers := splitFields(lines[headerIdx], delim)
	t := &RawTable{
		Headers:        headers,
		Delimiter:      delim,
		HeaderIndex:    headerIdx,
		HeaderInferred: inferred,
	}

	start := headerIdx + 1
	// One blank separator line after the header is tolerated.
	if start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	want := len(headers)
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line, delim)
		switch {
		case len(fields) < want:
			// Never silently padded; the row is unusable as-is.
			t.Malformed++
		case len(fields) > want:
			t.Rows = append(t.Rows, fields[:want])
			t.Truncated++
		default:
			t.Rows = append(t.Rows, fields)
		}
	}
	return t, nil
}

// splitLines prefers CRLF line endings and falls back to bare LF when CRLF
// splitting yields at most one line. Stray trailing CRs are stripped.
func splitLines(text string) []string {
	lines := strings.Split(text, "\r\n")
	if len(lines) <= 1 {
		lines = strings.Split(text, "\n")
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// locateHeader scans the leading window of lines for the header signature
// and, failing that, applies the legacy fixed offset. Returns -1 when both
// strategies fail.
func locateHeader(lines []string, opt Options) (idx int, delim rune, inferred bool) {
	window := opt.window()
	if window > len(lines) {
		window = len(lines)
	}
	for i := 0; i < window; i++ {
		if d, ok := matchSignature(lines[i], opt.delimiters()); ok {
			return i, d, false
		}
	}

	if off := opt.LegacyHeaderOffset; off >= 0 && off < len(lines) {
		return off, detectDelimiter(lines[off], opt.delimiters()), true
	}
	return -1, 0, false
}

// matchSignature reports whether line is a header: its first three fields
// must be the ID, name and identity-document tokens, in that order.
// Delimiter candidates are tried in preference order, so a line containing
// both semicolons and commas resolves to semicolon.
func matchSignature(line string, delims []rune) (rune, bool) {
	for _, d := range delims {
		if !strings.ContainsRune(line, d) {
			continue
		}
		fields := splitFields(line, d)
		if len(fields) < 3 {
			continue
		}
		if schema.Fold(fields[0]) == "id" && schema.Fold(fields[1]) == "nome" && schema.Fold(fields[2]) == "rg" {
			return d, true
		}
	}
	return 0, false
}

// detectDelimiter picks the first candidate present in line, defaulting to
// the first candidate when none occurs.
func detectDelimiter(line string, delims []rune) rune {
	for _, d := range delims {
		if strings.ContainsRune(line, d) {
			return d
		}
	}
	return delims[0]
}

func splitFields(line string, delim rune) []string {
	fields := strings.Split(line, string(delim))
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
