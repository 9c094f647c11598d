package issuances

// Columns names the worksheet columns written by Cells.
var Columns = []string{
	"issuance_id", "person_id", "application_id", "issued_at", "book_name", "language",
	"issued_by", "notes", "is_exception", "exception_type", "exception_reason", "batch_id",
}

// Cells renders i as one worksheet row in Columns order.
func (i Issuance) Cells() []any {
	var appID any = ""
	if i.ApplicationID != nil {
		appID = *i.ApplicationID
	}

	return []any{
		i.ID, i.PersonID, appID, i.IssuedAt, i.BookName, i.Language,
		i.IssuedBy, i.Notes, i.IsException, i.ExceptionType, i.ExceptionReason, i.BatchID,
	}
}
