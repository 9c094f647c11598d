// Package screening runs the intake pipeline: check uploaded sources against
// a registry snapshot, re-check the clean rows against a fresh snapshot, commit
// what stays clean, and let an administrator force-commit what was held.
package screening

import (
	"time"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/batches"
	"github.com/JaimeStill/worldmap/internal/decision"
	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/persons"
)

// CheckedRow is one application after the first check pass.
type CheckedRow struct {
	RowID       string                   `json:"row_id"`
	Application applications.Application `json:"application"`
	Match       matching.Result          `json:"match"`
	Decision    decision.Decision        `json:"decision"`
}

// SourceError records an uploaded source that could not be ingested.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Summary counts checked rows by decided status.
type Summary struct {
	Total         int `json:"total"`
	Rejected      int `json:"rejected"`
	NeedsFollowUp int `json:"needs_follow_up"`
	NeedsReview   int `json:"needs_review"`
	ApprovedReady int `json:"approved_ready"`
}

// CheckedBatch is the output of Check. Callers hold on to it and pass it back
// to Recheck, Commit, and the export endpoints.
type CheckedBatch struct {
	BatchID   string           `json:"batch_id"`
	Label     string           `json:"label"`
	CheckedAt time.Time        `json:"checked_at"`
	Threshold int              `json:"threshold"`
	Sources   []string         `json:"sources"`
	Rows      []CheckedRow     `json:"rows"`
	Errors    []SourceError    `json:"errors"`
	Summary   Summary          `json:"summary"`
	Groups    []decision.Group `json:"groups"`
}

// Ready returns the rows the first pass approved.
func (b CheckedBatch) Ready() []CheckedRow {
	return b.ByStatus(applications.StatusApprovedReady)
}

// ByStatus returns the rows the first pass decided as status, in row order.
func (b CheckedBatch) ByStatus(status applications.Status) []CheckedRow {
	out := make([]CheckedRow, 0)
	for _, r := range b.Rows {
		if r.Decision.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// SecondCheck splits a batch's approved rows by what a fresh registry
// snapshot shows. Every row is re-prepared from its submitted fields and
// decided again. Dropped rows fail completeness or eligibility on the second
// pass and can be neither committed nor overridden. Persons and Issuances are
// the registry records the held rows matched.
type SecondCheck struct {
	BatchID   string               `json:"batch_id"`
	CheckedAt time.Time            `json:"checked_at"`
	OK        []CheckedRow         `json:"ok"`
	Held      []CheckedRow         `json:"held"`
	Dropped   []CheckedRow         `json:"dropped"`
	Persons   []persons.Person     `json:"persons"`
	Issuances []issuances.Issuance `json:"issuances"`
}

// CheckCommand starts a first pass over one or more uploaded sources.
type CheckCommand struct {
	Sources []intake.Source
	Label   string
}

// CommitCommand commits the rows of a checked batch that survive the second pass.
type CommitCommand struct {
	Batch CheckedBatch `json:"batch"`
	Notes string       `json:"notes"`
}

// OverrideCommand force-commits held rows as exceptions. Each row must still
// clear the completeness and eligibility gates and must still match the
// registry.
type OverrideCommand struct {
	BatchID string       `json:"batch_id"`
	Label   string       `json:"label"`
	Rows    []CheckedRow `json:"rows"`
	Reason  string       `json:"reason"`
	Admin   string       `json:"admin"`
}

// CommitResult reports what was written and what was held back.
type CommitResult struct {
	Batch     *batches.Batch             `json:"batch,omitempty"`
	Committed []applications.Application `json:"committed"`
	Held      []CheckedRow               `json:"held"`
}

func summarize(rows []CheckedRow) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		switch r.Decision.Status {
		case applications.StatusRejected:
			s.Rejected++
		case applications.StatusNeedsFollowUp:
			s.NeedsFollowUp++
		case applications.StatusNeedsReview:
			s.NeedsReview++
		case applications.StatusApprovedReady:
			s.ApprovedReady++
		}
	}
	return s
}

func decisionRows(rows []CheckedRow) []decision.Row {
	out := make([]decision.Row, len(rows))
	for i, r := range rows {
		out[i] = decision.Row{Application: r.Application, Match: r.Match}
	}
	return out
}
