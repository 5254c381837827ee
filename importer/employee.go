package importer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// keyedLocks hands out one mutex per key, serializing employee
// upserts on the same license number within a batch.
type keyedLocks struct {
	locks sync.Map
}

func (k *keyedLocks) lock(key string) func() {
	mu, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// MergePositions appends a position to the set if not already present.
// It reports whether the set changed.
func MergePositions(positions []string, position string) ([]string, bool) {
	for _, p := range positions {
		if p == position {
			return positions, false
		}
	}
	return append(positions, position), true
}

// upsertEmployee creates or merges the employee record identified by
// the row's license number. A new row for an already-known license
// appends its sub-category as an additional position rather than
// creating a second employee. Returns whether a record was created.
func (imp *Importer) upsertEmployee(row Row, now time.Time) (created bool, err error) {
	cand := buildPerson(row, imp.cfg, now)

	position := strings.TrimSpace(row[colSubCategory])
	if position == "" {
		position = imp.cfg.DefaultPosition
	}

	unlock := imp.employeeLocks.lock(cand.LicenseNumber)
	defer unlock()

	existing, err := imp.app.FindFirstRecordByFilter(
		"employees",
		"license_number = {:license}",
		dbx.Params{"license": cand.LicenseNumber},
	)
	if err == nil {
		return false, imp.mergeEmployee(existing, position)
	}

	col, err := imp.app.FindCollectionByNameOrId("employees")
	if err != nil {
		return false, fmt.Errorf("employees collection: %w", err)
	}

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
	record.Set("positions", []string{position})
	record.Set("active", true)
	record.Set("comments", cand.Comments)

	if err := imp.app.Save(record); err != nil {
		return false, fmt.Errorf("saving employee %s: %w", cand.LicenseNumber, err)
	}
	return true, nil
}

// mergeEmployee appends a new position to an existing employee.
func (imp *Importer) mergeEmployee(record *core.Record, position string) error {
	var positions []string
	if err := record.UnmarshalJSONField("positions", &positions); err != nil {
		return fmt.Errorf("employee %s positions: %w", record.GetString("license_number"), err)
	}

	merged, changed := MergePositions(positions, position)
	if !changed {
		return nil
	}

	record.Set("positions", merged)

	var comments []string
	if err := record.UnmarshalJSONField("comments", &comments); err == nil {
		record.Set("comments", append(comments, "Nouvelle sous-catégorie ajoutée."))
	}

	if err := imp.app.Save(record); err != nil {
		return fmt.Errorf("saving employee %s: %w", record.GetString("license_number"), err)
	}
	return nil
}
