// internal/normalize/normalize.go
//
// Pure per-field coercion functions. Every function in this package is
// total: invalid input yields a nil pointer (or a documented default),
// never an error. A bad cell must not take down its row or the table.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/platable/insights-backend/internal/domain"
)

var (
	amountCleanRe = regexp.MustCompile(`[^\d.\-]`)
	digitsRe      = regexp.MustCompile(`\D`)
	clockRe       = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// dateLayouts is tried in order; month-first before day-first, so that an
// unambiguous day-first value (day > 12) still falls through correctly.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/06 15:04",
	"02-01-2006",
}

// timeLayouts is the "generic date-time parse" stage of hour extraction.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// excelEpoch is day zero of the 1900 date system (with the historical
// off-by-two adjustment baked in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ToFloat parses a currency/amount cell: every character except digits,
// decimal point and minus sign is stripped before parsing. Unparsable
// values are nil, not zero.
func ToFloat(s string) *float64 {
	cleaned := amountCleanRe.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// PctToDecimal parses a percentage cell into a decimal fraction. Values with
// magnitude > 1 are read as whole percentages ("12" -> 0.12); values <= 1
// are read as fractions already ("0.12" -> 0.12). The ambiguity for true
// sub-1% rates typed as "0.5" is intentional and preserved.
func PctToDecimal(s string) *float64 {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "%", ""), ",", "")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if math.Abs(v) > 1 {
		v /= 100
	}
	return &v
}

// ParseQuantity parses an item count. Unparsable or missing values are 0,
// and the result is never negative.
func ParseQuantity(s string) int {
	v := ToFloat(s)
	if v == nil || *v < 0 {
		return 0
	}
	return int(*v)
}

// NormalizeState maps a raw order-state cell onto the three canonical
// states. Anything that is not recognizably pending or cancelled becomes
// Completed; that default is by contract, not an error.
func NormalizeState(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return domain.StatePending
	case "cancelled", "canceled":
		return domain.StateCancelled
	default:
		return domain.StateCompleted
	}
}

// TitleCase normalizes a categorical cell: trimmed, each word capitalized
// ("pickup" -> "Pickup", "DELIVERY" -> "Delivery").
func TitleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range strings.TrimSpace(s) {
		switch {
		case !isLetter(r):
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteString(strings.ToUpper(string(r)))
			startOfWord = false
		default:
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ParseDate parses a calendar date cell. Tries the layout list first, then
// Excel serial numbers (spreadsheet cells often surface as serials).
func ParseDate(s string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial > 59 {
		t := excelEpoch.AddDate(0, 0, int(serial))
		return &t
	}
	return nil
}

// ParseHour extracts an hour of day (0-23) from a time cell. Stages, in
// order:
//  1. generic date-time parse over the known layouts;
//  2. numeric: a value in [0,1] is an Excel fraction of a day, a value > 1
//     is a serial date whose fractional part is the time of day;
//  3. a textual "H[:MM] [am|pm]" pattern.
//
// nil when no stage succeeds.
func ParseHour(s string) *int {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			h := t.Hour()
			return &h
		}
	}

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && v >= 0 {
		var frac float64
		if v <= 1 {
			frac = v
		} else {
			frac = v - math.Floor(v)
		}
		h := int(math.Round(frac*24)) % 24
		return &h
	}

	if m := clockRe.FindStringSubmatch(strings.ToLower(trimmed)); m != nil {
		hh, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		switch m[3] {
		case "pm":
			if hh != 12 {
				hh += 12
			}
		case "am":
			if hh == 12 {
				hh = 0
			}
		}
		hh %= 24
		return &hh
	}

	return nil
}

// CustomerIdentity derives a stable customer key: the digits of country
// code plus phone number with leading zeros stripped, falling back to the
// email address, else "".
func CustomerIdentity(countryCode, phone, email string) string {
	digits := digitsRe.ReplaceAllString(countryCode, "") + digitsRe.ReplaceAllString(phone, "")
	digits = strings.TrimLeft(digits, "0")
	if digits != "" {
		return digits
	}
	return strings.TrimSpace(email)
}
