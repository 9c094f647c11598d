// Package eligibility applies the program rules to a single application
// without consulting the registry.
//
// Only the congregation size rule disqualifies. Every other rule marks the
// application for review.
package eligibility

import (
	"slices"
	"strings"

	"github.com/JaimeStill/worldmap/internal/normalize"
)

// MinCongregationSize is the smallest congregation the program serves.
const MinCongregationSize = 15

// Flag names a rule that fired for an application.
type Flag string

const (
	CongregationBelowMinimum Flag = "CONGREGATION_LT_15"
	TitleNotAllowed          Flag = "TITLE_NOT_ALLOWED"
	LanguageNotAllowed       Flag = "LANGUAGE_NOT_ALLOWED"
	SelfReportedPriorReceipt Flag = "SELF_REPORTED_PRIOR_RECEIPT"
	// AdminOverride is appended when an administrator force-commits a held row.
	AdminOverride Flag = "ADMIN_OVERRIDE"
)

// DisqualifyReason is recorded when the congregation rule fires.
const DisqualifyReason = "Congregation size < 15"

var allowedTitles = []string{
	"PASTOR",
	"BISHOP",
	"EVANGELIST",
	"BIBLE SCHOOL OVERSEER",
	"BIBLE OVERSEER",
	"BIBLE SCHOOL SUPERVISOR",
}

var allowedLanguages = []string{
	"KISWAHILI",
	"ENGLISH",
	"FRENCH",
}

// Input is the normalized subset of an application the rules read.
type Input struct {
	CongregationSize int
	Title            string
	Language         string
	ReceivedBefore   string
}

// Result is the outcome of Check.
type Result struct {
	Flags            []Flag `json:"flags"`
	IsDisqualified   bool   `json:"is_disqualified"`
	DisqualifyReason string `json:"disqualify_reason"`
	NeedsReview      bool   `json:"needs_review"`
}

// SystemFlags joins the fired flags with semicolons.
func (r Result) SystemFlags() string {
	return JoinFlags(r.Flags)
}

// Check evaluates the program rules against one application.
func Check(in Input) Result {
	var r Result

	if in.CongregationSize < MinCongregationSize {
		r.Flags = append(r.Flags, CongregationBelowMinimum)
		r.IsDisqualified = true
		r.DisqualifyReason = DisqualifyReason
	}

	if in.Title != "" && !TitleAllowed(in.Title) {
		r.Flags = append(r.Flags, TitleNotAllowed)
	}

	if in.Language != "" && !LanguageAllowed(in.Language) {
		r.Flags = append(r.Flags, LanguageNotAllowed)
	}

	if normalize.Affirmative(in.ReceivedBefore) {
		r.Flags = append(r.Flags, SelfReportedPriorReceipt)
	}

	r.NeedsReview = len(r.Flags) > 0
	return r
}

// TitleAllowed reports whether a normalized title is on the allow-list.
func TitleAllowed(title string) bool {
	return slices.Contains(allowedTitles, title)
}

// LanguageAllowed reports whether a normalized language is on the allow-list.
func LanguageAllowed(lang string) bool {
	return slices.Contains(allowedLanguages, lang)
}

// AllowedTitles returns a copy of the title allow-list.
func AllowedTitles() []string {
	return slices.Clone(allowedTitles)
}

// AllowedLanguages returns a copy of the language allow-list.
func AllowedLanguages() []string {
	return slices.Clone(allowedLanguages)
}

// JoinFlags renders flags in the stored system_flags form.
func JoinFlags(flags []Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ";")
}

// ParseFlags splits a stored system_flags value back into flags.
func ParseFlags(s string) []Flag {
	var flags []Flag
	for part := range strings.SplitSeq(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			flags = append(flags, Flag(part))
		}
	}
	return flags
}

// WithOverride returns system flags with ADMIN_OVERRIDE appended once.
func WithOverride(systemFlags string) string {
	flags := ParseFlags(systemFlags)
	if slices.Contains(flags, AdminOverride) {
		return systemFlags
	}
	return JoinFlags(append(flags, AdminOverride))
}
