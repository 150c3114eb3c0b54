// Package report assembles profiling and relationship results into a single
// document and renders it as markdown or HTML.
package report

import (
	"goeda/domain/core"
	"goeda/domain/stats"
	"goeda/internal/profiling"
)

// Report is the full exploratory analysis of one dataset
type Report struct {
	ID           core.ReportID             `json:"id"`
	CreatedAt    core.Timestamp            `json:"created_at"`
	Source       string                    `json:"source"`
	Fingerprint  string                    `json:"fingerprint"`
	Rows         int                       `json:"rows"`
	Columns      int                       `json:"columns"`
	Profile      *profiling.DatasetProfile `json:"profile"`
	Groups       []stats.GroupTestResult   `json:"groups"`
	Correlations *stats.CorrelationResult  `json:"correlations,omitempty"`
	Independence []stats.ContingencyResult `json:"independence"`
	Notes        []string                  `json:"notes,omitempty"` // sections that could not run, and why
}

// New starts a report for a dataset
func New(source string, fingerprint core.Hash, rows, cols int) *Report {
	return &Report{
		ID:          core.NewReportID(),
		CreatedAt:   core.Now(),
		Source:      source,
		Fingerprint: fingerprint.String(),
		Rows:        rows,
		Columns:     cols,
	}
}

// AddNote records why a section is missing or partial
func (r *Report) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}
