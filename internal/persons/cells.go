package persons

// Columns names the worksheet columns written by Cells.
var Columns = []string{
	"person_id", "first_name", "middle_name", "last_name",
	"full_name_original", "full_name_normalized", "name_key",
	"phone_original", "phone_normalized", "national_id_original", "national_id_normalized",
	"country", "church_name", "created_at", "updated_at",
}

// Cells renders p as one worksheet row in Columns order.
func (p Person) Cells() []any {
	return []any{
		p.ID, p.FirstName, p.MiddleName, p.LastName,
		p.FullNameOriginal, p.FullNameNormalized, p.NameKey,
		p.PhoneOriginal, p.PhoneNormalized, p.NationalIDOriginal, p.NationalIDNormalized,
		p.Country, p.ChurchName, p.CreatedAt, p.UpdatedAt,
	}
}

// SummaryColumns extends Columns with the latest issuance.
var SummaryColumns = append(append([]string{}, Columns...),
	"latest_issuance_id", "latest_issued_at", "latest_language", "latest_book_name",
)

// Cells renders s as one worksheet row in SummaryColumns order. A person
// never issued a book has blank latest issuance cells.
func (s Summary) Cells() []any {
	cells := s.Person.Cells()
	if s.LatestIssuanceID == nil {
		return append(cells, "", "", "", "")
	}

	var issuedAt any = ""
	if s.LatestIssuedAt != nil {
		issuedAt = *s.LatestIssuedAt
	}
	return append(cells, *s.LatestIssuanceID, issuedAt, deref(s.LatestLanguage), deref(s.LatestBookName))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
