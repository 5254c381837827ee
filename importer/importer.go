// Package importer turns an uploaded registration spreadsheet into
// member and employee records, deduplicated against what is already
// persisted.
package importer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
)

// Importer runs one import batch at a time over the app's store.
type Importer struct {
	app           core.App
	cfg           config.Import
	employeeLocks *keyedLocks
}

// New creates an importer.
func New(app core.App, cfg config.Import) *Importer {
	return &Importer{
		app:           app,
		cfg:           cfg,
		employeeLocks: &keyedLocks{},
	}
}

// KindSummary counts one record kind through a batch.
type KindSummary struct {
	// Total is the number of candidates produced from rows.
	Total int `json:"total"`
	// Successful is the number actually persisted. For employees a
	// row merged into an existing record counts as successful, so
	// Successful equals Total there unless a row errored.
	Successful int `json:"successful"`
}

// Summary reports the outcome of one import batch.
type Summary struct {
	Members      KindSummary `json:"members"`
	Employees    KindSummary `json:"employees"`
	RowsRead     int         `json:"rowsRead"`
	RowsFiltered int         `json:"rowsFiltered"`
	RowErrors    int         `json:"rowErrors"`
}

// Run processes one uploaded workbook. Rows are handled concurrently;
// a failing row is logged and dropped without aborting the batch.
// Member candidates are checked once against the persisted license
// set and then saved one by one, so a record the store rejects never
// takes the batch down with it; employees are upserted per row,
// merging positions into existing records.
func (imp *Importer) Run(data []byte) (*Summary, error) {
	rows, err := ReadRows(data, colBirthDate)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	filtered := FilterRows(rows, imp.cfg.ExcludedNames)
	slog.Info("Import started", "rows", len(rows), "after_filter", len(filtered))

	now := time.Now()

	var (
		mu         sync.Mutex
		candidates []*Candidate

		employeesTotal   int
		employeesWritten int
		rowErrors        int
	)

	jobs := make(chan Row)
	var wg sync.WaitGroup
	for i := 0; i < imp.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				switch Classify(row, imp.cfg.FreeLicenseMarker) {
				case KindMember:
					cand, err := BuildMember(row, imp.cfg, now)
					mu.Lock()
					if err != nil {
						slog.Error("Row processing failed", "error", err)
						rowErrors++
					} else {
						candidates = append(candidates, cand)
					}
					mu.Unlock()
				case KindEmployee:
					created, err := imp.upsertEmployee(row, now)
					mu.Lock()
					if err != nil {
						slog.Error("Row processing failed", "error", err)
						rowErrors++
					} else {
						employeesTotal++
						if created {
							employeesWritten++
						}
					}
					mu.Unlock()
				}
			}
		}()
	}
	for _, row := range filtered {
		jobs <- row
	}
	close(jobs)
	wg.Wait()

	// All rows are processed before the duplicate check so the
	// persisted license set is read exactly once.
	existing, err := imp.existingLicenses("members")
	if err != nil {
		return nil, err
	}

	toInsert := filterDuplicates(candidates, existing)

	saved, failedSaves, err := imp.insertMembers(toInsert)
	if err != nil {
		return nil, err
	}
	rowErrors += failedSaves

	summary := &Summary{
		Members:      KindSummary{Total: len(candidates), Successful: saved},
		Employees:    KindSummary{Total: employeesTotal, Successful: employeesTotal},
		RowsRead:     len(rows),
		RowsFiltered: len(rows) - len(filtered),
		RowErrors:    rowErrors,
	}
	slog.Info("Import finished",
		"members_total", summary.Members.Total,
		"members_inserted", summary.Members.Successful,
		"employees_total", summary.Employees.Total,
		"employees_created", employeesWritten,
		"row_errors", rowErrors)
	return summary, nil
}

// filterDuplicates removes candidates whose license number is already
// persisted. Two candidates within the same batch sharing a license
// are both kept: deduplication runs against storage only, once per
// batch, not across rows.
func filterDuplicates(candidates []*Candidate, existing map[string]bool) []*Candidate {
	kept := make([]*Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if existing[cand.LicenseNumber] {
			slog.Info("Skipping duplicate member", "license", cand.LicenseNumber)
			continue
		}
		kept = append(kept, cand)
	}
	return kept
}

// existingLicenses loads the set of license numbers already persisted
// for one collection.
func (imp *Importer) existingLicenses(collection string) (map[string]bool, error) {
	records, err := imp.app.FindAllRecords(collection)
	if err != nil {
		return nil, fmt.Errorf("loading %s licenses: %w", collection, err)
	}
	set := make(map[string]bool, len(records))
	for _, r := range records {
		set[r.GetString("license_number")] = true
	}
	return set, nil
}

// insertMembers persists the surviving member candidates one record
// at a time. A candidate that fails validation, such as a synthesized
// email the store rejects, is logged and counted without aborting the
// rest of the batch. Returns how many were saved and how many failed.
func (imp *Importer) insertMembers(candidates []*Candidate) (saved, failed int, err error) {
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	col, err := imp.app.FindCollectionByNameOrId("members")
	if err != nil {
		return 0, 0, fmt.Errorf("members collection: %w", err)
	}

	for _, cand := range candidates {
		record := core.NewRecord(col)
		record.Set("license_number", cand.LicenseNumber)
		record.Set("first_name", cand.FirstName)
		record.Set("last_name", cand.LastName)
		record.Set("email", cand.Email)
		record.Set("phone", cand.Phone)
		record.Set("birth_date", cand.BirthDate)
		if cand.AgeKnown {
			record.Set("age", cand.Age)
		}
		record.Set("gender", cand.Gender)
		record.Set("category", cand.Category)
		record.Set("active", cand.Active)
		record.Set("total_due", cand.TotalDue)
		record.Set("total_paid", cand.TotalPaid)
		record.Set("payment_status", cand.PaymentStatus)
		record.Set("payment_history", []any{})
		record.Set("comments", cand.Comments)

		if err := imp.app.Save(record); err != nil {
			slog.Error("Member save failed", "license", cand.LicenseNumber, "error", err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed, nil
}
