package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/normalize"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/similarity"
)

// Snapshot is a point-in-time read of the registry.
type Snapshot struct {
	Persons   []persons.Person
	Issuances []issuances.Issuance
}

type groupKey struct {
	country string
	last    string
}

// Index holds the lookup structures built once per batch from a Snapshot.
// It is read-only after construction and safe for concurrent use.
type Index struct {
	people    []persons.Person
	byPhone   map[string]int64
	byID      map[string]int64
	latest    map[int64]time.Time
	byGroup   map[groupKey][]int
	byCountry map[string][]int
}

// NewIndex builds an Index. fallbackPool caps the per-country list used when
// no person shares an applicant's country and last name.
func NewIndex(snap Snapshot, fallbackPool int) *Index {
	ix := &Index{
		people:    snap.Persons,
		byPhone:   make(map[string]int64),
		byID:      make(map[string]int64),
		latest:    make(map[int64]time.Time),
		byGroup:   make(map[groupKey][]int),
		byCountry: make(map[string][]int),
	}

	for i, p := range snap.Persons {
		if phone := strings.TrimSpace(p.PhoneNormalized); phone != "" {
			ix.byPhone[phone] = p.ID
		}
		if id := strings.TrimSpace(p.NationalIDNormalized); id != "" {
			ix.byID[id] = p.ID
		}

		country := normalize.Country(p.Country)
		key := groupKey{country: country, last: lastToken(p.FullNameNormalized)}
		ix.byGroup[key] = append(ix.byGroup[key], i)

		if len(ix.byCountry[country]) < fallbackPool {
			ix.byCountry[country] = append(ix.byCountry[country], i)
		}
	}

	for _, is := range snap.Issuances {
		if cur, ok := ix.latest[is.PersonID]; !ok || is.IssuedAt.After(cur) {
			ix.latest[is.PersonID] = is.IssuedAt
		}
	}

	return ix
}

// Match finds exact and fuzzy matches for one application.
func (ix *Index) Match(app applications.Application, threshold, maxCandidates int) Result {
	var r Result

	phone := strings.TrimSpace(app.PhoneNormalized)
	nid := strings.TrimSpace(app.NationalIDNormalized)

	var matched int64
	if pid, ok := ix.byPhone[phone]; phone != "" && ok {
		matched = pid
		r.DuplicatePhone = true
	}
	if pid, ok := ix.byID[nid]; nid != "" && ok {
		if matched == 0 {
			matched = pid
		}
		r.DuplicateID = true
	}

	if matched != 0 {
		r.MatchedPersonID = &matched
		if at, ok := ix.latest[matched]; ok {
			r.PriorIssuanceLatest = &at
		}
	}

	r.Candidates = ix.candidates(app, threshold, maxCandidates)
	return r
}

func (ix *Index) candidates(app applications.Application, threshold, maxCandidates int) []Candidate {
	full := strings.TrimSpace(app.FullNameNormalized)
	if full == "" {
		return []Candidate{}
	}

	_, _, last := normalize.SplitName(full)
	country := normalize.Country(app.Country)

	pool := ix.byGroup[groupKey{country: country, last: last}]
	if len(pool) == 0 {
		pool = ix.byCountry[country]
	}

	scored := make([]Candidate, 0)
	for _, i := range pool {
		p := ix.people[i]
		name := strings.TrimSpace(p.FullNameNormalized)
		if name == "" {
			continue
		}

		score := similarity.TokenSetRatio(full, name)
		if score < threshold {
			continue
		}

		scored = append(scored, Candidate{
			PersonID:   p.ID,
			Score:      score,
			Name:       name,
			Phone:      p.PhoneNormalized,
			NationalID: p.NationalIDNormalized,
			Church:     p.ChurchName,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	return scored
}

// lastToken is the final word of a registry name. A single-word name is its
// own last token.
func lastToken(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
