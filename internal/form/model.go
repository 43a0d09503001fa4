package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/billedhq/expense-client/internal/domain/entity"
)

// DefaultPct is the percentage applied when the pct field is left blank
const DefaultPct = 20

// BuildBill assembles a transport-ready bill from raw form values, the
// session identity and the result of the staged attachment upload.
//
// The owner email always comes from the session, never from the form.
// Status is always pending for a freshly built bill. Amount and vat keep
// their lenient parse semantics: unparseable input becomes NaN and travels
// to the transport layer uncaught rather than blocking submission.
// BuildBill performs no I/O.
func BuildBill(fields FieldAccessor, sessionEmail string, upload entity.UploadResult) entity.Bill {
	return entity.Bill{
		Email:      sessionEmail,
		Type:       fields.Type(),
		Name:       fields.Name(),
		Date:       fields.Date(),
		Amount:     ParseNumber(fields.Amount()),
		Vat:        ParseNumber(fields.VAT()),
		Pct:        ParsePct(fields.Pct()),
		Commentary: fields.Commentary(),
		FileURL:    upload.FileURL,
		FileName:   upload.FileName,
		Status:     entity.StatusPending,
	}
}

// ParseNumber parses a form value with parseFloat semantics: the longest
// leading numeric prefix is used, including an exponent suffix, and input
// without one yields NaN.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	seenDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		seenDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			seenDigit = true
			i++
		}
	}
	if !seenDigit {
		return math.NaN()
	}

	// An exponent extends the prefix only when at least one digit follows
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			end = j
		}
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// ParsePct parses the percentage field with parseInt-or-default semantics:
// blank, non-numeric and zero values all fall back to DefaultPct.
func ParsePct(raw string) int {
	n := ParseNumber(raw)
	if math.IsNaN(n) || int(n) == 0 {
		return DefaultPct
	}
	return int(n)
}

// Ready reports whether a bill satisfies the transport invariant:
// email, type, name and date non-empty and amount parseable as a number.
func Ready(bill entity.Bill) bool {
	if bill.Email == "" || bill.Type == "" || bill.Name == "" || bill.Date == "" {
		return false
	}
	return !math.IsNaN(bill.Amount)
}
