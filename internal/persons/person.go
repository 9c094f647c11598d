// Package persons implements the registry of known people. A person is
// created or enriched only when a book is issued.
package persons

import (
	"time"

	"github.com/JaimeStill/worldmap/internal/normalize"
)

// Person is a deduplicated individual known to the registry.
type Person struct {
	ID                   int64     `json:"person_id"`
	FirstName            string    `json:"first_name"`
	MiddleName           string    `json:"middle_name"`
	LastName             string    `json:"last_name"`
	FullNameOriginal     string    `json:"full_name_original"`
	FullNameNormalized   string    `json:"full_name_normalized"`
	NameKey              string    `json:"name_key"`
	PhoneOriginal        string    `json:"phone_original"`
	PhoneNormalized      string    `json:"phone_normalized"`
	NationalIDOriginal   string    `json:"national_id_original"`
	NationalIDNormalized string    `json:"national_id_normalized"`
	Country              string    `json:"country"`
	ChurchName           string    `json:"church_name"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Summary is a person together with their most recent issuance, if any.
type Summary struct {
	Person
	LatestIssuanceID *int64     `json:"latest_issuance_id"`
	LatestIssuedAt   *time.Time `json:"latest_issued_at"`
	LatestLanguage   *string    `json:"latest_language"`
	LatestBookName   *string    `json:"latest_book_name"`
}

// Identity carries the identifying fields of an applicant into Upsert.
type Identity struct {
	FullNameOriginal     string
	FullNameNormalized   string
	PhoneOriginal        string
	PhoneNormalized      string
	NationalIDOriginal   string
	NationalIDNormalized string
	Country              string
	ChurchName           string
}

// NameParts splits the normalized full name and derives the name key.
func (id Identity) NameParts() (first, middle, last, key string) {
	first, middle, last = normalize.SplitName(id.FullNameNormalized)
	return first, middle, last, normalize.NameKey(id.FullNameNormalized)
}
