// Package applications implements the application domain: the normalized form
// of one applicant submission, its status vocabulary, and the registry of
// committed applications.
package applications

import (
	"strconv"
	"time"

	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/normalize"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusNeedsFollowUp Status = "NEEDS_FOLLOW_UP"
	StatusRejected      Status = "REJECTED"
	StatusNeedsReview   Status = "NEEDS_REVIEW"
	StatusApprovedReady Status = "APPROVED_READY"
	// StatusApproved marks an application whose book has been issued.
	StatusApproved Status = "APPROVED"
	// StatusApprovedException marks an administrator override of a held row.
	StatusApprovedException Status = "APPROVED_EXCEPTION"
)

var statuses = []Status{
	StatusPending,
	StatusNeedsFollowUp,
	StatusRejected,
	StatusNeedsReview,
	StatusApprovedReady,
	StatusApproved,
	StatusApprovedException,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Raw holds the ten submitted fields of an application as typed by the applicant.
type Raw struct {
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	NationalID           string `json:"national_id"`
	Country              string `json:"country"`
	ChurchName           string `json:"church_name"`
	Title                string `json:"title"`
	CongregationSize     string `json:"congregation_size"`
	RequestedLanguage    string `json:"requested_language"`
	ReceivedBefore       string `json:"received_before"`
	ReceivedBeforeReason string `json:"received_before_reason"`
}

// Application is one normalized applicant submission.
// Normalized fields are derived from the originals by Prepare and never set otherwise.
type Application struct {
	ID         int64  `json:"application_id"`
	SourceFile string `json:"source_file"`
	BatchID    string `json:"batch_id"`
	// RowID is the checked-batch row this application was committed from.
	// Unique within a batch when set.
	RowID string `json:"row_id"`

	FullNameOriginal   string `json:"full_name_original"`
	PhoneOriginal      string `json:"phone_original"`
	NationalIDOriginal string `json:"national_id_original"`

	Country               string `json:"country"`
	ChurchName            string `json:"church_name"`
	Title                 string `json:"title"`
	CongregationSize      int    `json:"congregation_size"`
	CongregationSizeValid bool   `json:"congregation_size_valid"`
	RequestedLanguage     string `json:"requested_language"`
	ReceivedBefore        string `json:"received_before"`
	ReceivedBeforeReason  string `json:"received_before_reason"`

	FullNameNormalized   string `json:"full_name_normalized"`
	NameKey              string `json:"name_key"`
	PhoneNormalized      string `json:"phone_normalized"`
	NationalIDNormalized string `json:"national_id_normalized"`

	IsDisqualified   bool   `json:"is_disqualified"`
	DisqualifyReason string `json:"disqualify_reason"`
	NeedsReview      bool   `json:"needs_review"`
	SystemFlags      string `json:"system_flags"`

	Status          Status    `json:"status"`
	AdminNotes      string    `json:"admin_notes"`
	MatchedPersonID *int64    `json:"matched_person_id"`
	SubmittedAt     time.Time `json:"submitted_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// MissingRequired is set by Prepare when title, language, or congregation
	// size was left blank. It is not persisted.
	MissingRequired bool `json:"missing_required_fields"`
}

// Prepare normalizes raw submitted fields into an Application and applies
// the eligibility rules. Status is PENDING.
func Prepare(raw Raw) Application {
	country := normalize.Country(raw.Country)
	size, valid := normalize.CongregationSize(raw.CongregationSize)
	fullName := normalize.Name(raw.Name)

	a := Application{
		FullNameOriginal:      raw.Name,
		PhoneOriginal:         raw.Phone,
		NationalIDOriginal:    raw.NationalID,
		Country:               country,
		ChurchName:            normalize.Text(raw.ChurchName),
		Title:                 normalize.Title(raw.Title),
		CongregationSize:      size,
		CongregationSizeValid: valid,
		RequestedLanguage:     normalize.Language(raw.RequestedLanguage),
		ReceivedBefore:        normalize.Text(raw.ReceivedBefore),
		ReceivedBeforeReason:  normalize.Text(raw.ReceivedBeforeReason),
		FullNameNormalized:    fullName,
		NameKey:               normalize.NameKey(fullName),
		PhoneNormalized:       normalize.Phone(raw.Phone, country),
		NationalIDNormalized:  normalize.NationalID(raw.NationalID),
		Status:                StatusPending,
		MissingRequired: normalize.Text(raw.Title) == "" ||
			normalize.Text(raw.RequestedLanguage) == "" ||
			normalize.Text(raw.CongregationSize) == "",
	}

	a.applyEligibility()
	return a
}

// Raw reconstructs submitted fields from a stored application. Because
// normalization is idempotent, Prepare(a.Raw()) reproduces a's derived fields.
func (a Application) Raw() Raw {
	size := ""
	if a.CongregationSizeValid {
		size = strconv.Itoa(a.CongregationSize)
	}

	return Raw{
		Name:                 a.FullNameOriginal,
		Phone:                a.PhoneOriginal,
		NationalID:           a.NationalIDOriginal,
		Country:              a.Country,
		ChurchName:           a.ChurchName,
		Title:                a.Title,
		CongregationSize:     size,
		RequestedLanguage:    a.RequestedLanguage,
		ReceivedBefore:       a.ReceivedBefore,
		ReceivedBeforeReason: a.ReceivedBeforeReason,
	}
}

// EligibilityInput returns the fields the eligibility rules read.
func (a Application) EligibilityInput() eligibility.Input {
	return eligibility.Input{
		CongregationSize: a.CongregationSize,
		Title:            a.Title,
		Language:         a.RequestedLanguage,
		ReceivedBefore:   a.ReceivedBefore,
	}
}

// NameParts splits the normalized full name.
func (a Application) NameParts() (first, middle, last string) {
	return normalize.SplitName(a.FullNameNormalized)
}

func (a *Application) applyEligibility() {
	r := eligibility.Check(a.EligibilityInput())
	a.IsDisqualified = r.IsDisqualified
	a.DisqualifyReason = r.DisqualifyReason
	a.NeedsReview = r.NeedsReview
	a.SystemFlags = r.SystemFlags()
}
