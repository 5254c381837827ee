package importer

import "strings"

// UnknownName is substituted when a name part cannot be determined
// from the full-name cell.
const UnknownName = "Unknown"

// ExtractNameParts splits a free-text full-name cell into first and
// last name. Three conventions are tried in order: "LAST, First",
// a single token (treated as last name), and a casing split where
// all-uppercase tokens form the last name. Inconsistently formatted
// names will mis-split; the result is best effort.
func ExtractNameParts(fullName string) (firstName, lastName string) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return UnknownName, UnknownName
	}

	if before, after, found := strings.Cut(fullName, ","); found {
		lastName = strings.TrimSpace(before)
		firstName = strings.TrimSpace(after)
		if firstName == "" {
			firstName = UnknownName
		}
		if lastName == "" {
			lastName = UnknownName
		}
		return firstName, lastName
	}

	parts := strings.Fields(fullName)
	if len(parts) == 1 {
		return UnknownName, parts[0]
	}

	var upper, mixed []string
	for _, part := range parts {
		if part == strings.ToUpper(part) {
			upper = append(upper, part)
		} else {
			mixed = append(mixed, part)
		}
	}

	firstName = strings.Join(mixed, " ")
	lastName = strings.Join(upper, " ")
	if firstName == "" {
		firstName = UnknownName
	}
	if lastName == "" {
		lastName = UnknownName
	}
	return firstName, lastName
}
