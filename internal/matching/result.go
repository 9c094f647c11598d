package matching

import (
	"fmt"
	"time"
)

// Candidate is a registry person whose name scored at or above the threshold.
type Candidate struct {
	PersonID   int64  `json:"person_id"`
	Score      int    `json:"score"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
	Church     string `json:"church"`
}

// String renders c for a single worksheet cell.
func (c Candidate) String() string {
	return fmt.Sprintf(
		"person_id=%d score=%d name=%s phone=%s id=%s church=%s",
		c.PersonID, c.Score, c.Name, c.Phone, c.NationalID, c.Church,
	)
}

// Result is what the engine found for one application.
type Result struct {
	DuplicatePhone bool `json:"duplicate_phone"`
	DuplicateID    bool `json:"duplicate_id"`
	// MatchedPersonID prefers the phone match over the national ID match.
	MatchedPersonID *int64 `json:"matched_person_id,omitempty"`
	// PriorIssuanceLatest is the matched person's most recent issuance.
	PriorIssuanceLatest *time.Time `json:"prior_issuance_latest,omitempty"`
	// Candidates holds at most MaxCandidates entries, best score first.
	Candidates []Candidate `json:"candidates"`
}

// HasPriorIssuance reports whether the matched person was issued a book before.
func (r Result) HasPriorIssuance() bool {
	return r.PriorIssuanceLatest != nil
}

// Duplicate reports whether the phone or national ID is already registered.
func (r Result) Duplicate() bool {
	return r.DuplicatePhone || r.DuplicateID
}
