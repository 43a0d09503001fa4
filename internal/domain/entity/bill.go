package entity

// Status represents the review state of a submitted bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusAccepted: true,
	StatusRefused:  true,
}

// IsValid returns true if the status is a known review state
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Label returns the user-facing French label for the status.
// Unknown statuses fall back to the raw value.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return string(s)
	}
}

// CSSClass returns the style hook associated with the status for rendered rows
func (s Status) CSSClass() string {
	switch s {
	case StatusAccepted:
		return "status-accepted"
	case StatusRefused:
		return "status-refused"
	default:
		return "status-pending"
	}
}

// ExpenseTypes lists the enumerated expense categories offered by the form,
// in the order the form presents them.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Équipement et matériel",
	"Fournitures de bureau",
}

// IsExpenseType returns true if t is one of the enumerated categories
func IsExpenseType(t string) bool {
	for _, known := range ExpenseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Bill represents a persisted expense-report record.
// ID is assigned by the persistence service on create and is empty until
// creation succeeds. Amount and Vat keep parseFloat semantics: unparseable
// form input travels as NaN rather than being rejected client-side.
type Bill struct {
	ID         string  `json:"id,omitempty"`
	Email      string  `json:"email"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Vat        float64 `json:"vat"`
	Pct        int     `json:"pct"`
	Commentary string  `json:"commentary"`
	FileURL    string  `json:"fileUrl"`
	FileName   string  `json:"fileName"`
	Status     Status  `json:"status"`
}

// DisplayBill is a Bill augmented with locale-formatted date and status
// label for rendering. FormattedDate falls back to the raw Date string when
// the stored value cannot be parsed.
type DisplayBill struct {
	Bill

	FormattedDate string
	StatusLabel   string
	StatusClass   string
}

// AttachmentCandidate is a selected receipt file awaiting validation and
// upload. It is created on selection and either consumed by a submit or
// discarded when the user re-selects.
type AttachmentCandidate struct {
	FileName    string
	Extension   string
	ContentType string
	Content     []byte
}

// UploadResult holds the pair returned by a successful attachment upload.
// FileURL and Key are only ever populated together.
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	Key      string `json:"key"`
	FileName string `json:"-"`
}
