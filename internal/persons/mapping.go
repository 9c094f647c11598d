package persons

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "persons", "p").
	Project("person_id", "ID").
	Project("first_name", "FirstName").
	Project("middle_name", "MiddleName").
	Project("last_name", "LastName").
	Project("full_name_original", "FullNameOriginal").
	Project("full_name_normalized", "FullNameNormalized").
	Project("name_key", "NameKey").
	Project("phone_original", "PhoneOriginal").
	Project("phone_normalized", "PhoneNormalized").
	Project("national_id_original", "NationalIDOriginal").
	Project("national_id_normalized", "NationalIDNormalized").
	Project("country", "Country").
	Project("church_name", "ChurchName").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// summaryProjection extends projection with the latest issuance view.
var summaryProjection = query.
	NewProjectionMap("public", "persons", "p").
	Project("person_id", "ID").
	Project("first_name", "FirstName").
	Project("middle_name", "MiddleName").
	Project("last_name", "LastName").
	Project("full_name_original", "FullNameOriginal").
	Project("full_name_normalized", "FullNameNormalized").
	Project("name_key", "NameKey").
	Project("phone_original", "PhoneOriginal").
	Project("phone_normalized", "PhoneNormalized").
	Project("national_id_original", "NationalIDOriginal").
	Project("national_id_normalized", "NationalIDNormalized").
	Project("country", "Country").
	Project("church_name", "ChurchName").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "person_latest_issuances", "li", "LEFT JOIN", "li.person_id = p.person_id").
	Project("issuance_id", "LatestIssuanceID").
	Project("issued_at", "LatestIssuedAt").
	Project("language", "LatestLanguage").
	Project("book_name", "LatestBookName")

var defaultSort = query.SortField{Field: "ID"}

// Filters contains optional filtering criteria for person queries.
// Nil fields are ignored.
type Filters struct {
	Country  *string `json:"country,omitempty"`
	LastName *string `json:"last_name,omitempty"`
	// Issued selects people with (true) or without (false) any issuance.
	Issued   *bool   `json:"issued,omitempty"`
	Language *string `json:"latest_language,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var never *bool
	if f.Issued != nil {
		v := !*f.Issued
		never = &v
	}

	return b.
		WhereEquals("Country", f.Country).
		WhereEquals("LastName", f.LastName).
		WhereNull("LatestIssuanceID", never).
		WhereEquals("LatestLanguage", f.Language)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("country"); c != "" {
		f.Country = &c
	}
	if l := values.Get("last_name"); l != "" {
		f.LastName = &l
	}
	if i := values.Get("issued"); i != "" {
		if v, err := strconv.ParseBool(i); err == nil {
			f.Issued = &v
		}
	}
	if lang := values.Get("latest_language"); lang != "" {
		f.Language = &lang
	}

	return f
}

var searchFields = []string{
	"FullNameNormalized",
	"PhoneNormalized",
	"NationalIDNormalized",
	"ChurchName",
}

func scanPerson(s repository.Scanner) (Person, error) {
	var p Person
	err := s.Scan(
		&p.ID,
		&p.FirstName,
		&p.MiddleName,
		&p.LastName,
		&p.FullNameOriginal,
		&p.FullNameNormalized,
		&p.NameKey,
		&p.PhoneOriginal,
		&p.PhoneNormalized,
		&p.NationalIDOriginal,
		&p.NationalIDNormalized,
		&p.Country,
		&p.ChurchName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var ps Summary
	err := s.Scan(
		&ps.ID,
		&ps.FirstName,
		&ps.MiddleName,
		&ps.LastName,
		&ps.FullNameOriginal,
		&ps.FullNameNormalized,
		&ps.NameKey,
		&ps.PhoneOriginal,
		&ps.PhoneNormalized,
		&ps.NationalIDOriginal,
		&ps.NationalIDNormalized,
		&ps.Country,
		&ps.ChurchName,
		&ps.CreatedAt,
		&ps.UpdatedAt,
		&ps.LatestIssuanceID,
		&ps.LatestIssuedAt,
		&ps.LatestLanguage,
		&ps.LatestBookName,
	)
	return ps, err
}
