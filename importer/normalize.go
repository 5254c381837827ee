package importer

import (
	"fmt"
	"strings"
	"time"
)

// PhonePlaceholder is stored when a phone number is missing or does
// not normalize to a valid 10-digit number.
const PhonePlaceholder = "00 00 00 00 00"

// birthDateLayout is the strict day/month/year layout used throughout.
const birthDateLayout = "02/01/2006"

// NormalizePhone strips formatting from a phone cell and rewrites it
// to the national convention: the country prefix becomes the leading
// zero, and a missing leading zero is prepended. Anything that does
// not end up exactly 10 digits long becomes PhonePlaceholder. The
// result is grouped in pairs, so normalizing an already-normalized
// number is a no-op.
func NormalizePhone(raw, countryPrefix string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if cleaned == "" {
		return PhonePlaceholder
	}

	if countryPrefix != "" && strings.HasPrefix(cleaned, countryPrefix) {
		cleaned = "0" + cleaned[len(countryPrefix):]
	} else if !strings.HasPrefix(cleaned, "0") {
		cleaned = "0" + cleaned
	}

	if len(cleaned) != 10 {
		return PhonePlaceholder
	}

	pairs := make([]string, 0, 5)
	for i := 0; i < 10; i += 2 {
		pairs = append(pairs, cleaned[i:i+2])
	}
	return strings.Join(pairs, " ")
}

// ParseBirthDate validates a birth date cell under a strict DD/MM/YYYY
// pattern. It returns the canonical text and true, or "" and false for
// anything that does not match exactly.
func ParseBirthDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	t, err := time.Parse(birthDateLayout, s)
	if err != nil || t.Format(birthDateLayout) != s {
		return "", false
	}
	return s, true
}

// AgeFromBirthDate derives whole elapsed years between a DD/MM/YYYY
// birth date and now. The second return is false when the date is
// absent or invalid.
func AgeFromBirthDate(birthDate string, now time.Time) (int, bool) {
	if birthDate == "" {
		return 0, false
	}
	t, err := time.Parse(birthDateLayout, birthDate)
	if err != nil {
		return 0, false
	}

	age := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, true
}

// PlaceholderEmail synthesizes a recognizable stand-in address when
// the source sheet has none.
func PlaceholderEmail(firstName, lastName, domain string) string {
	return strings.ToLower(fmt.Sprintf("%s.%s@%s", lastName, firstName, domain))
}
