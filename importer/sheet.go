package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers expected in the registration sheet, as exported by
// the federation portal.
const (
	colFullName      = "Nom, prénom"
	colLicenseNumber = "Numéro licence"
	colLicenseType   = "Type licence"
	colLicenseStatus = "Statut Licence"
	colSubCategory   = "Sous catégorie"
	colBirthDate     = "Né(e) le"
	colPhone         = "Mobile personnel"
	colEmail         = "Email principal"
	colBalance       = "Solde"
)

// Row is one data line of the sheet, keyed by column header.
type Row map[string]string

// ReadRows parses an uploaded workbook into header-keyed rows. Only
// the first worksheet is read; row 1 is the header, rows 2..N are
// data. Cells in the listed date columns that carry an Excel date
// serial are rewritten to DD/MM/YYYY text. An unreadable workbook or
// a missing worksheet fails the whole read.
func ReadRows(data []byte, dateColumns ...string) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheetName, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", sheetName)
	}

	headers := raw[0]
	isDate := make(map[string]bool, len(dateColumns))
	for _, c := range dateColumns {
		isDate[c] = true
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, line := range raw[1:] {
		row := Row{}
		for i, header := range headers {
			if header == "" || i >= len(line) {
				continue
			}
			value := strings.TrimSpace(line[i])
			if isDate[header] {
				value = serialToDate(value)
			}
			row[header] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// serialToDate converts an Excel date serial to DD/MM/YYYY text. The
// serial range spans 1901 through far past today, so even the oldest
// veteran birth dates convert, while small counts and large amounts
// pass through untouched. Non-serial values pass through too.
func serialToDate(value string) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 367 || serial > 80000 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}

// FilterRows drops rows whose full-name cell is blank or matches one
// of the configured administrative placeholder labels.
func FilterRows(rows []Row, excludedNames []string) []Row {
	excluded := make(map[string]bool, len(excludedNames))
	for _, name := range excludedNames {
		excluded[name] = true
	}

	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row[colFullName])
		if name == "" || excluded[name] {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}
