// Package decision turns an application's eligibility flags and match result
// into a terminal status with a human-readable reason.
//
// Every function here is pure: no I/O and no registry access.
package decision

import (
	"strings"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/matching"
)

// ReasonSeparator joins multiple reasons in one reason string.
const ReasonSeparator = " | "

const (
	ReasonMissingTitle    = "Missing Title"
	ReasonMissingLanguage = "Missing Book Language"
	ReasonMissingSize     = "Missing/Invalid Congregation Size"

	ReasonSmallCongregation = "Congregation < 15"
	ReasonTitleNotEligible  = "Title not eligible"

	ReasonPhoneDuplicate   = "Phone duplicate"
	ReasonIDDuplicate      = "ID duplicate"
	ReasonPriorIssuance    = "Prior issuance found"
	ReasonSimilarityHigh   = "Name similarity (HIGH)"
	ReasonSimilarityMedium = "Name similarity (MEDIUM)"
	ReasonNeedsReview      = "Needs review"

	ReasonClean = "Complete + eligible + no duplicate risk"
)

// Decision is the status assigned to one application and why.
type Decision struct {
	Status applications.Status `json:"status"`
	Reason string              `json:"reason"`
}

// Evaluate applies the gates in order: completeness, auto-reject,
// duplicate/similarity review, approve. The first gate that fires decides.
//
// The eligibility review flags for language and self-reported receipt do not
// influence the outcome here.
func Evaluate(a applications.Application, r matching.Result) Decision {
	if d, ok := Admissible(a); !ok {
		return d
	}

	// Gate 3: duplicates and similarity
	sig := Similarity(a, r.Candidates)
	if r.Duplicate() || r.HasPriorIssuance() || sig.High || sig.Medium {
		var reasons []string
		if r.DuplicatePhone {
			reasons = append(reasons, ReasonPhoneDuplicate)
		}
		if r.DuplicateID {
			reasons = append(reasons, ReasonIDDuplicate)
		}
		if r.HasPriorIssuance() {
			reasons = append(reasons, ReasonPriorIssuance)
		}
		switch {
		case sig.High:
			reasons = append(reasons, ReasonSimilarityHigh)
		case sig.Medium:
			reasons = append(reasons, ReasonSimilarityMedium)
		}

		return Decision{
			Status: applications.StatusNeedsReview,
			Reason: strings.Join(reasons, ReasonSeparator),
		}
	}

	return Decision{Status: applications.StatusApprovedReady, Reason: ReasonClean}
}

// Admissible runs the completeness and auto-reject gates alone. When either
// fires it returns that gate's decision and false. Those outcomes do not
// depend on the registry, so no match can change them.
func Admissible(a applications.Application) (Decision, bool) {
	// Gate 1: completeness
	if missing := Missing(a); len(missing) > 0 {
		return Decision{
			Status: applications.StatusNeedsFollowUp,
			Reason: strings.Join(missing, ReasonSeparator),
		}, false
	}

	// Gate 2: auto reject
	if a.CongregationSize < eligibility.MinCongregationSize {
		return Decision{Status: applications.StatusRejected, Reason: ReasonSmallCongregation}, false
	}
	if !eligibility.TitleAllowed(a.Title) {
		return Decision{Status: applications.StatusRejected, Reason: ReasonTitleNotEligible}, false
	}

	return Decision{}, true
}

// Missing lists the completeness failures of a. Congregation size counts as
// missing when it could not be parsed, not when it parsed to a small number.
func Missing(a applications.Application) []string {
	var missing []string
	if strings.TrimSpace(a.Title) == "" {
		missing = append(missing, ReasonMissingTitle)
	}
	if strings.TrimSpace(a.RequestedLanguage) == "" {
		missing = append(missing, ReasonMissingLanguage)
	}
	if !a.CongregationSizeValid {
		missing = append(missing, ReasonMissingSize)
	}
	return missing
}

// SecondPassClean reports whether a fresh match found nothing at all: no
// duplicate identifier, no prior issuance, and no fuzzy candidate of any tier.
func SecondPassClean(r matching.Result) bool {
	return !r.Duplicate() && !r.HasPriorIssuance() && len(r.Candidates) == 0
}
