package decision

import (
	"strings"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/matching"
)

const (
	ReviewMissingRequired   = "Missing required fields"
	ReviewSmallCongregation = "Congregation size < 15"
	ReviewNameSimilarity    = "Name similarity"
	// ReviewMatchCandidate labels the candidate rows under a primary row.
	ReviewMatchCandidate = "Match candidate"
)

// Row pairs an application with what the match engine found for it.
type Row struct {
	Application applications.Application
	Match       matching.Result
}

// Group is one flagged application and the registry candidates it resembles.
type Group struct {
	ID int `json:"group_id"`
	// Index is the position of the primary row in the input to Groups.
	Index      int                  `json:"index"`
	Reason     string               `json:"reason"`
	Candidates []matching.Candidate `json:"candidates"`
}

// Flagged reports whether a row needs a human look: a duplicate, a prior
// issuance, any fuzzy candidate, or any eligibility or completeness finding.
func Flagged(row Row) bool {
	a, r := row.Application, row.Match
	return r.Duplicate() ||
		r.HasPriorIssuance() ||
		len(r.Candidates) > 0 ||
		a.IsDisqualified ||
		a.NeedsReview ||
		a.MissingRequired
}

// ReviewReasons lists every finding on a row in display order. Unlike
// Evaluate it does not stop at the first gate.
func ReviewReasons(row Row) []string {
	a, r := row.Application, row.Match

	var reasons []string
	if a.MissingRequired {
		reasons = append(reasons, ReviewMissingRequired)
	}
	if a.CongregationSize < eligibility.MinCongregationSize {
		reasons = append(reasons, ReviewSmallCongregation)
	}
	if !eligibility.TitleAllowed(a.Title) {
		reasons = append(reasons, ReasonTitleNotEligible)
	}
	if r.DuplicatePhone {
		reasons = append(reasons, ReasonPhoneDuplicate)
	}
	if r.DuplicateID {
		reasons = append(reasons, ReasonIDDuplicate)
	}
	if len(r.Candidates) > 0 {
		reasons = append(reasons, ReviewNameSimilarity)
	}
	if r.HasPriorIssuance() {
		reasons = append(reasons, ReasonPriorIssuance)
	}
	if a.NeedsReview && len(reasons) == 0 {
		reasons = append(reasons, ReasonNeedsReview)
	}
	return reasons
}

// Groups builds one review group per flagged row, numbered from 1 in input order.
func Groups(rows []Row) []Group {
	groups := make([]Group, 0)
	for i, row := range rows {
		if !Flagged(row) {
			continue
		}

		candidates := row.Match.Candidates
		if candidates == nil {
			candidates = []matching.Candidate{}
		}

		groups = append(groups, Group{
			ID:         len(groups) + 1,
			Index:      i,
			Reason:     strings.Join(ReviewReasons(row), ReasonSeparator),
			Candidates: candidates,
		})
	}
	return groups
}
