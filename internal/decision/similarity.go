package decision

import (
	"strings"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/normalize"
)

// Tier classifies a fuzzy match score.
type Tier string

const (
	TierNone   Tier = "NONE"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

const (
	HighScore   = 92
	MediumScore = 88
)

// TierOf returns HIGH for scores of 92 and above, MEDIUM for 88 through 91,
// and NONE otherwise.
func TierOf(score int) Tier {
	switch {
	case score >= HighScore:
		return TierHigh
	case score >= MediumScore:
		return TierMedium
	default:
		return TierNone
	}
}

// MiddleMatch reports whether two middle names agree. Both must be present;
// they match when equal or, in flexible mode, when they share a first letter.
func MiddleMatch(a, b string, flexible bool) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return flexible && []rune(a)[0] == []rune(b)[0]
}

// Signals are the similarity findings that count toward review.
type Signals struct {
	High   bool `json:"high"`
	Medium bool `json:"medium"`
}

// Similarity scans candidates for a HIGH match or a qualifying MEDIUM match.
// A MEDIUM candidate qualifies only when its last name equals the applicant's
// and the middle names agree in flexible mode.
func Similarity(a applications.Application, candidates []matching.Candidate) Signals {
	var sig Signals
	_, middle, last := a.NameParts()

	for _, c := range candidates {
		switch TierOf(c.Score) {
		case TierHigh:
			sig.High = true
		case TierMedium:
			_, cmiddle, clast := normalize.SplitName(c.Name)
			if clast == "" || last == "" || !strings.EqualFold(clast, last) {
				continue
			}
			if MiddleMatch(middle, cmiddle, true) {
				sig.Medium = true
			}
		}
	}

	return sig
}
