// Package decode turns raw export bytes into text by trying an ordered list
// of candidate encodings. Payroll exports from SEAP are usually Windows-1252;
// newer ones arrive as UTF-8. Decoding never fails: when no candidate decodes
// cleanly, a lossy UTF-8 decode with replacement characters is returned and
// the result is marked degraded.
package decode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Candidate encoding names accepted in configuration.
const (
	Windows1252 = "windows-1252"
	UTF8        = "utf-8"
	Latin1      = "latin-1"
)

// DefaultCandidates is the fallback ladder observed across export revisions:
// cp1252 first, then strict UTF-8, then Latin-1 (which accepts any byte).
var DefaultCandidates = []string{Windows1252, UTF8, Latin1}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result carries the decoded text, the name of the encoding that produced it
// and whether a lossy decode was used.
type Result struct {
	Text     string
	Encoding string
	Degraded bool
}

// Decode tries each candidate in order and returns the first clean full
// decode. A decode is clean when it introduces no U+FFFD replacement runes.
// A UTF-8 byte order mark short-circuits to UTF-8 regardless of candidate
// order; the mark itself is stripped. If every candidate fails, the bytes are
// decoded as UTF-8 with replacement and the result is marked Degraded.
func Decode(b []byte, candidates []string) Result {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	if bytes.HasPrefix(b, utf8BOM) {
		body := b[len(utf8BOM):]
		if utf8.Valid(body) {
			return Result{Text: string(body), Encoding: UTF8}
		}
		b = body
	}

	for _, name := range candidates {
		if text, ok := tryDecode(b, name); ok {
			return Result{Text: text, Encoding: name}
		}
	}

	return Result{
		Text:     strings.ToValidUTF8(string(b), string(utf8.RuneError)),
		Encoding: UTF8,
		Degraded: true,
	}
}

// tryDecode decodes b under the named encoding, reporting false when the
// encoding cannot represent the input cleanly. Unrecognized names are
// skipped; configuration linting reports them upstream.
func tryDecode(b []byte, name string) (string, bool) {
	switch strings.ToLower(name) {
	case Windows1252, "cp1252":
		// The cp1252 decoder maps the five undefined bytes to U+FFFD; treat
		// any replacement rune as a strict failure.
		text, err := charmap.Windows1252.NewDecoder().String(string(b))
		if err != nil || strings.ContainsRune(text, utf8.RuneError) {
			return "", false
		}
		return text, true
	case UTF8, "utf8":
		if !utf8.Valid(b) {
			return "", false
		}
		return string(b), true
	case Latin1, "iso-8859-1":
		text, err := charmap.ISO8859_1.NewDecoder().String(string(b))
		if err != nil {
			return "", false
		}
		return text, true
	default:
		return "", false
	}
}
