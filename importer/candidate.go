package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/billing"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
)

// Kind tags which collection a processed row belongs to.
type Kind int

const (
	KindMember Kind = iota
	KindEmployee
)

// Classify routes a row to the member or employee path. An empty or
// free-marker license type means an unlicensed club member; any other
// value marks club staff.
func Classify(row Row, freeLicenseMarker string) Kind {
	licenseType := strings.ToLower(strings.TrimSpace(row[colLicenseType]))
	if licenseType == "" || licenseType == freeLicenseMarker {
		return KindMember
	}
	return KindEmployee
}

// Candidate is a processed row not yet checked against persisted
// records. Comments carry the audit trail of every fallback applied
// while deriving its fields.
type Candidate struct {
	FirstName     string
	LastName      string
	LicenseNumber string
	Email         string
	Phone         string
	BirthDate     string
	Age           int
	AgeKnown      bool
	Gender        string
	Category      string
	Active        bool
	TotalDue      float64
	TotalPaid     float64
	PaymentStatus string
	Comments      []string
}

// buildPerson derives the fields shared by members and employees,
// returning the audit comments alongside them. Every substituted
// default appends one sentence naming what was defaulted.
func buildPerson(row Row, cfg config.Import, now time.Time) Candidate {
	var comments []string

	firstName, lastName := ExtractNameParts(row[colFullName])

	licenseNumber := strings.TrimSpace(row[colLicenseNumber])
	if licenseNumber == "" {
		licenseNumber = fmt.Sprintf("TEMP_%s_%s", firstName, lastName)
		comments = append(comments, "Numéro de licence manquant. Un numéro temporaire a été généré.")
	}

	birthDate, ok := ParseBirthDate(row[colBirthDate])
	if !ok {
		comments = append(comments, "Date de naissance invalide ou manquante.")
	}
	age, ageKnown := AgeFromBirthDate(birthDate, now)

	phone := NormalizePhone(row[colPhone], cfg.PhoneCountryPrefix)
	if phone == PhonePlaceholder {
		comments = append(comments, "Numéro de téléphone manquant. Un numéro par défaut a été utilisé.")
	}

	email := strings.TrimSpace(row[colEmail])
	if email == "" {
		email = PlaceholderEmail(firstName, lastName, cfg.PlaceholderEmailDomain)
		comments = append(comments, "Email principal manquant. Un email par défaut a été généré.")
	}

	return Candidate{
		FirstName:     firstName,
		LastName:      lastName,
		LicenseNumber: licenseNumber,
		Email:         email,
		Phone:         phone,
		BirthDate:     birthDate,
		Age:           age,
		AgeKnown:      ageKnown,
		Comments:      comments,
	}
}

// BuildMember assembles a member candidate from one classified row.
// The signed balance cell seeds the ledger: a positive balance is the
// amount owed, a negative one the amount already paid.
func BuildMember(row Row, cfg config.Import, now time.Time) (*Candidate, error) {
	cand := buildPerson(row, cfg, now)

	cand.Category, cand.Gender = ResolveCategoryGender(row[colSubCategory])
	cand.Active = strings.TrimSpace(row[colLicenseStatus]) == "V"

	balance, err := parseBalance(row[colBalance])
	if err != nil {
		return nil, fmt.Errorf("row %q: %w", row[colFullName], err)
	}
	cand.TotalDue, cand.TotalPaid, cand.PaymentStatus = billing.SeedFromBalance(balance)

	return &cand, nil
}

// parseBalance reads the signed balance cell, tolerating the decimal
// comma used by the export.
func parseBalance(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	balance, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q", s)
	}
	return balance, nil
}
