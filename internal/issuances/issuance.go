// Package issuances implements the record of books handed out and the bulk
// issue step that turns committed applications into issuances.
package issuances

import (
	"time"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/eligibility"
)

// Issuance records one book handed to one person. Issuances are never updated.
type Issuance struct {
	ID              int64     `json:"issuance_id"`
	PersonID        int64     `json:"person_id"`
	ApplicationID   *int64    `json:"application_id"`
	IssuedAt        time.Time `json:"issued_at"`
	BookName        string    `json:"book_name"`
	Language        string    `json:"language"`
	IssuedBy        string    `json:"issued_by"`
	Notes           string    `json:"notes"`
	IsException     bool      `json:"is_exception"`
	ExceptionType   string    `json:"exception_type"`
	ExceptionReason string    `json:"exception_reason"`
	BatchID         string    `json:"batch_id"`
}

// IssueCommand drives a bulk issue over committed applications.
type IssueCommand struct {
	IssuedBy string `json:"issued_by"`
	// IssuedAt defaults to the current time.
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	// UseRequestedLanguage issues each application in its requested language
	// when that language is allowed; otherwise Language is used.
	UseRequestedLanguage bool   `json:"use_requested_language"`
	Language             string `json:"language"`
	// IncludeExceptions also issues APPROVED_EXCEPTION applications.
	IncludeExceptions bool `json:"include_exceptions"`
}

// Outcome describes what the bulk issue did with one application.
type Outcome struct {
	ApplicationID int64               `json:"application_id"`
	Status        applications.Status `json:"status"`
	Note          string              `json:"note"`
	PersonID      *int64              `json:"person_id,omitempty"`
	IssuanceID    *int64              `json:"issuance_id,omitempty"`
}

// Issued reports whether the application received a book.
func (o Outcome) Issued() bool {
	return o.IssuanceID != nil
}

// IssueResult summarizes a bulk issue.
type IssueResult struct {
	Issued   int       `json:"issued"`
	Skipped  int       `json:"skipped"`
	Outcomes []Outcome `json:"outcomes"`
}

// Admin notes written by the bulk issue.
const (
	NoteRejectedCongregation = "AUTO: congregation < 15"
	NoteRejectedTitle        = "AUTO: title not eligible"
	NotePriorIssuance        = "AUTO: prior issuance found during bulk issue"
	NoteIssued               = "AUTO: bulk issued"
)

// Safeguard re-applies the disqualifying rules to a committed application
// before issue. It returns the admin note for a rejection, or "" when the
// application may proceed.
func Safeguard(a applications.Application) string {
	if a.CongregationSize < eligibility.MinCongregationSize {
		return NoteRejectedCongregation
	}
	if !eligibility.TitleAllowed(a.Title) {
		return NoteRejectedTitle
	}
	return ""
}

// IssueLanguage picks the language a book is issued in.
func IssueLanguage(a applications.Application, cmd IssueCommand, fallback string) string {
	lang := cmd.Language
	if lang == "" {
		lang = fallback
	}
	if cmd.UseRequestedLanguage && eligibility.LanguageAllowed(a.RequestedLanguage) {
		return a.RequestedLanguage
	}
	return lang
}
