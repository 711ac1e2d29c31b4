// This file adds a lightweight linter for Pipeline values: static checks
// over a decoded Pipeline returning a list of issues (errors and warnings)
// that callers surface in the CLI or in tests.
package config

import (
	"fmt"
	"strings"

	"efetivo/internal/decode"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding. Path is a dotted path into the
// config (e.g. "ingest.age_bounds").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error so an Issue can be treated as a single error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline lints a decoded Pipeline without mutating it. Callers
// decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Source.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.path",
			Message:  "source requires a non-empty path",
		})
	}
	issues = append(issues, validateIngest(p.Ingest)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

var knownEncodings = map[string]struct{}{
	decode.Windows1252: {}, "cp1252": {},
	decode.UTF8: {}, "utf8": {},
	decode.Latin1: {}, "iso-8859-1": {},
}

func validateIngest(in Ingest) []Issue {
	var issues []Issue

	for i, e := range in.Encodings {
		if _, ok := knownEncodings[strings.ToLower(e)]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("ingest.encodings[%d]", i),
				Message:  fmt.Sprintf("unknown encoding %q", e),
			})
		}
	}
	for i, d := range in.Delimiters {
		if len([]rune(d)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("ingest.delimiters[%d]", i),
				Message:  fmt.Sprintf("delimiter must be a single character, got %q", d),
			})
		}
	}
	if in.HeaderSearchWindow < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ingest.header_search_window",
			Message:  "header search window must not be negative",
		})
	}

	b := in.AgeBounds
	switch {
	case b.Min == 0 && b.Max == 0:
		// Section absent: pipeline defaults apply.
	case b.Min < 0 || b.Max < 0 || b.Min > b.Max:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ingest.age_bounds",
			Message:  fmt.Sprintf("bounds [%d, %d] are not a valid inclusive interval", b.Min, b.Max),
		})
	case b.Min < 18:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "ingest.age_bounds.min",
			Message:  fmt.Sprintf("minimum age %d admits minors; personnel exports normally start at 18", b.Min),
		})
	}

	if f := in.MaxAgeDropFraction; f < 0 || f > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ingest.max_age_drop_fraction",
			Message:  fmt.Sprintf("fraction %v must be within [0, 1]", f),
		})
	}
	if in.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ingest.workers",
			Message:  "workers must not be negative",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if s.Kind == "" {
		return issues // persistence disabled
	}

	known := map[string]struct{}{"sqlite": {}, "postgres": {}}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage requires a non-empty dsn",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "nop":
	case "prometheus":
		if m.Options.String("pushgateway_url", "") == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.options.pushgateway_url",
				Message:  "prometheus backend requires a pushgateway_url",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
