package applications

// Columns names the worksheet columns written by Cells.
var Columns = []string{
	"application_id", "batch_id", "source_file",
	"full_name_original", "phone_original", "national_id_original",
	"country", "church_name", "title", "congregation_size", "requested_language",
	"received_before", "received_before_reason",
	"full_name_normalized", "name_key", "phone_normalized", "national_id_normalized",
	"is_disqualified", "disqualify_reason", "needs_review", "system_flags",
	"status", "admin_notes", "matched_person_id", "submitted_at",
}

// Cells renders a as one worksheet row in Columns order. An invalid
// congregation size is written blank.
func (a Application) Cells() []any {
	var size any = ""
	if a.CongregationSizeValid {
		size = a.CongregationSize
	}

	var matched any = ""
	if a.MatchedPersonID != nil {
		matched = *a.MatchedPersonID
	}

	var id any = ""
	if a.ID != 0 {
		id = a.ID
	}

	var submitted any = ""
	if !a.SubmittedAt.IsZero() {
		submitted = a.SubmittedAt
	}

	return []any{
		id, a.BatchID, a.SourceFile,
		a.FullNameOriginal, a.PhoneOriginal, a.NationalIDOriginal,
		a.Country, a.ChurchName, a.Title, size, a.RequestedLanguage,
		a.ReceivedBefore, a.ReceivedBeforeReason,
		a.FullNameNormalized, a.NameKey, a.PhoneNormalized, a.NationalIDNormalized,
		a.IsDisqualified, a.DisqualifyReason, a.NeedsReview, a.SystemFlags,
		string(a.Status), a.AdminNotes, matched, submitted,
	}
}
