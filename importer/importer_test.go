package importer

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
)

// setupImportCollections creates the members and employees collections
// the way the migrations do, so record validation behaves as in
// production.
func setupImportCollections(t *testing.T, app core.App) {
	t.Helper()

	members := core.NewBaseCollection("members")
	members.Fields.Add(
		&core.TextField{Name: "license_number", Required: true},
		&core.TextField{Name: "first_name", Required: true},
		&core.TextField{Name: "last_name", Required: true},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "birth_date"},
		&core.NumberField{Name: "age"},
		&core.SelectField{Name: "gender", Values: []string{"M", "F", "Unknown"}, MaxSelect: 1},
		&core.TextField{Name: "category"},
		&core.BoolField{Name: "active"},
		&core.NumberField{Name: "total_due"},
		&core.NumberField{Name: "total_paid"},
		&core.SelectField{Name: "payment_status", Values: []string{"unpaid", "partial", "paid"}, MaxSelect: 1},
		&core.JSONField{Name: "payment_history"},
		&core.JSONField{Name: "comments"},
	)
	if err := app.Save(members); err != nil {
		t.Fatalf("creating members collection: %v", err)
	}

	employees := core.NewBaseCollection("employees")
	employees.Fields.Add(
		&core.TextField{Name: "license_number", Required: true},
		&core.TextField{Name: "first_name", Required: true},
		&core.TextField{Name: "last_name", Required: true},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "birth_date"},
		&core.NumberField{Name: "age"},
		&core.JSONField{Name: "positions"},
		&core.BoolField{Name: "active"},
		&core.JSONField{Name: "comments"},
	)
	if err := app.Save(employees); err != nil {
		t.Fatalf("creating employees collection: %v", err)
	}
}

func TestRun_RejectedRecordDoesNotAbortBatch(t *testing.T) {
	// A multi-token last name with no email yields a synthesized
	// address with spaces, which the email field rejects on save.
	// The other rows of the batch must still land.
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatalf("creating test app: %v", err)
	}
	defer app.Cleanup()

	setupImportCollections(t, app)

	data := buildWorkbook(t, [][]any{
		{"DOE, John", "111111", "", "", "15/03/2010", "0612345678", "john@example.com", "100"},
		{"VAN DER BERG, Hugo", "222222", "", "", "", "", "", ""},
		{"SMITH, Anna", "333333", "", "", "01/01/1990", "0698765432", "anna@example.com", "0"},
		{"MARTIN, Paul", "444444", "Dirigeant", "Entraîneur", "", "", "paul@example.com", ""},
	})

	summary, err := New(app, testImportConfig()).Run(data)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Members.Total != 3 {
		t.Errorf("Members.Total = %d, want 3", summary.Members.Total)
	}
	if summary.Members.Successful != 2 {
		t.Errorf("Members.Successful = %d, want 2", summary.Members.Successful)
	}
	if summary.RowErrors != 1 {
		t.Errorf("RowErrors = %d, want 1", summary.RowErrors)
	}
	if summary.Employees.Total != 1 || summary.Employees.Successful != 1 {
		t.Errorf("Employees = %+v, want 1 total, 1 successful", summary.Employees)
	}

	records, err := app.FindAllRecords("members")
	if err != nil {
		t.Fatalf("loading members: %v", err)
	}
	saved := map[string]bool{}
	for _, r := range records {
		saved[r.GetString("license_number")] = true
	}
	if len(saved) != 2 || !saved["111111"] || !saved["333333"] {
		t.Errorf("persisted licenses = %v, want 111111 and 333333", saved)
	}
	if saved["222222"] {
		t.Error("rejected record was persisted")
	}
}

func TestFilterDuplicates_AgainstStorage(t *testing.T) {
	candidates := []*Candidate{
		{LicenseNumber: "111"},
		{LicenseNumber: "222"},
		{LicenseNumber: "333"},
	}
	existing := map[string]bool{"222": true}

	kept := filterDuplicates(candidates, existing)

	if len(kept) != 2 {
		t.Fatalf("len(kept) = %d, want 2", len(kept))
	}
	if kept[0].LicenseNumber != "111" || kept[1].LicenseNumber != "333" {
		t.Errorf("unexpected survivors: %v, %v", kept[0].LicenseNumber, kept[1].LicenseNumber)
	}
}

func TestFilterDuplicates_SameBatchCollisionsSurvive(t *testing.T) {
	// Two new rows sharing a license are only deduplicated against
	// storage, not against each other; both are inserted.
	candidates := []*Candidate{
		{LicenseNumber: "TEMP_John_DOE"},
		{LicenseNumber: "TEMP_John_DOE"},
	}

	kept := filterDuplicates(candidates, map[string]bool{})

	if len(kept) != 2 {
		t.Errorf("len(kept) = %d, want both same-batch collisions kept", len(kept))
	}
}
