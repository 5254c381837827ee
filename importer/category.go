package importer

import "strings"

// ageBrackets lists the age-division tokens in resolution order.
// Wider brackets come first so "U15" never matches through "U5".
var ageBrackets = []string{
	"U20", "U19", "U18", "U17", "U16", "U15", "U14", "U13",
	"U12", "U11", "U10", "U9", "U8", "U7", "U6", "U5",
}

// veteranSpellings covers the accent variants seen in real sheets.
var veteranSpellings = []string{"VETERAN", "VÉTÉRAN", "VÉTERAN", "VETERÁN"}

// ResolveCategoryGender maps a free-text sub-category label to a
// canonical category and gender. Senior and veteran labels are matched
// first as special cases; everything else resolves gender from a
// feminine marker, then the age bracket by containment. An empty label
// yields Unknown for both; an unrecognized label still yields a
// determinate gender.
func ResolveCategoryGender(subCategory string) (category, gender string) {
	if strings.TrimSpace(subCategory) == "" {
		return "Unknown", "Unknown"
	}

	clean := strings.ToUpper(strings.TrimSpace(subCategory))

	switch clean {
	case "SENIOR F":
		return "Senior F", "F"
	case "SENIOR":
		return "Senior", "M"
	}

	if strings.Contains(clean, "SENIOR") && strings.Contains(clean, "U20") {
		if strings.Contains(clean, "F") {
			return "Senior U20 F", "F"
		}
		return "Senior U20", "M"
	}

	for _, v := range veteranSpellings {
		if strings.Contains(clean, v) {
			return "Veteran", "M"
		}
	}

	gender = "M"
	if strings.Contains(clean, "F") {
		gender = "F"
	}

	for _, bracket := range ageBrackets {
		if strings.Contains(clean, bracket) {
			return bracket + gender, gender
		}
	}

	return "Unknown", gender
}
