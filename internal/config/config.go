// Package config defines the JSON-serializable configuration model for an
// ingestion run. It is intentionally small and dependency-free so pipeline
// files can be loaded from disk and passed through the program without glue
// code; decoding uses the standard library with a light Options helper for
// free-form sections.
//
// Example (trimmed):
//
//	{
//	  "job": "efetivo-cbmpr",
//	  "source":  { "path": "efetivo.csv" },
//	  "ingest":  { "encodings": ["windows-1252","utf-8"], "age_bounds": {"min":18,"max":70} },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "efetivo.db" } },
//	  "export":  { "path": "efetivo_limpo.csv" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines for this run.
	Job string `json:"job"`

	// Source describes where the raw export comes from.
	Source Source `json:"source"`

	// Ingest configures decoding, header location and validation.
	Ingest Ingest `json:"ingest"`

	// Storage describes the optional persistence sink. An empty kind
	// disables loading.
	Storage Storage `json:"storage"`

	// Export optionally re-serializes the cleaned table to CSV.
	Export Export `json:"export"`

	// Metrics selects the metrics backend ("" or "nop" disables pushing).
	Metrics Metrics `json:"metrics"`
}

// Source identifies the input export.
type Source struct {
	// Path is the local filesystem path to the export file.
	Path string `json:"path"`

	// MaxBytes caps how much of the file is read; 0 means the package
	// default.
	MaxBytes int64 `json:"max_bytes"`
}

// Ingest mirrors the pipeline option set. Zero values select the documented
// defaults, so an empty section ingests real exports unchanged.
type Ingest struct {
	// Encodings is the ordered decode candidate list.
	Encodings []string `json:"encodings"`

	// Delimiters lists candidate field separators in preference order,
	// each a one-character string.
	Delimiters []string `json:"delimiters"`

	// HeaderSearchWindow bounds the header signature scan.
	HeaderSearchWindow int `json:"header_search_window"`

	// LegacyHeaderOffset enables the fixed-offset header fallback when
	// >= 0; -1 disables it. The zero value keeps it disabled unless the
	// key is present.
	LegacyHeaderOffset *int `json:"legacy_header_offset"`

	// AgeBounds are the inclusive plausibility bounds for kept ages.
	AgeBounds AgeBounds `json:"age_bounds"`

	// StrictAge also drops records whose age is unknown.
	StrictAge bool `json:"strict_age"`

	// MaxAgeDropFraction relaxes the age bound when it would drop more
	// than this fraction of rows.
	MaxAgeDropFraction float64 `json:"max_age_drop_fraction"`

	// Workers and BatchSize control the parallel coerce stage.
	Workers   int `json:"workers"`
	BatchSize int `json:"batch_size"`
}

// AgeBounds is an inclusive [Min, Max] age interval.
type AgeBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Storage selects the sink used to persist normalized records.
type Storage struct {
	// Kind selects the storage implementation ("sqlite", "postgres").
	// Empty disables persistence.
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// Table is the destination table name (backend default when empty).
	Table string `json:"table"`

	// AutoCreateTable creates the destination table when missing.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Export configures optional CSV re-serialization of the cleaned table.
type Export struct {
	// Path is the output file; empty disables export.
	Path string `json:"path"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend names the implementation ("prometheus"); empty or "nop"
	// disables it.
	Backend string `json:"backend"`

	// Options is a free-form bag interpreted by the backend. The
	// prometheus backend reads "pushgateway_url".
	Options Options `json:"options"`
}

// DelimiterRunes converts the configured delimiter strings to runes,
// dropping empty entries.
func (i Ingest) DelimiterRunes() []rune {
	var out []rune
	for _, s := range i.Delimiters {
		if s == "" {
			continue
		}
		out = append(out, []rune(s)[0])
	}
	return out
}

// Load decodes a pipeline file. Unknown keys are rejected so typos surface
// immediately instead of silently selecting defaults.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}

// Options fetches typed values from arbitrary JSON maps. It performs only
// minimal coercion and returns the provided default when a key is absent or
// of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}
