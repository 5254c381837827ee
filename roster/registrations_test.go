package roster

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
)

func validRegistrationInput() registrationInput {
	in := registrationInput{
		RegistrationType: "nouvelle",
		FirstName:        "John",
		LastName:         "DOE",
		BirthDate:        "15/03/2010",
		Gender:           "M",
	}
	in.Contact.Phone = "06 12 34 56 78"
	in.Contact.Email = "john@example.com"
	return in
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*registrationInput)
		wantErr bool
	}{
		{"complete form", func(in *registrationInput) {}, false},
		{"explicit status", func(in *registrationInput) { in.Status = RegistrationPending }, false},
		{"missing first name", func(in *registrationInput) { in.FirstName = "" }, true},
		{"missing email", func(in *registrationInput) { in.Contact.Email = "" }, true},
		{"missing phone", func(in *registrationInput) { in.Contact.Phone = "" }, true},
		{"unknown type", func(in *registrationInput) { in.RegistrationType = "transfert" }, true},
		{"unknown gender", func(in *registrationInput) { in.Gender = "X" }, true},
		{"malformed birth date", func(in *registrationInput) { in.BirthDate = "2010-03-15" }, true},
		{"unknown image rights", func(in *registrationInput) { in.ImageRights = "peut-être" }, true},
		{"unknown status", func(in *registrationInput) { in.Status = "archivé" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistrationInput()
			tt.mutate(&in)
			err := validateRegistration(in)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRegistration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func setupRegistrationsCollection(t *testing.T, app core.App) {
	t.Helper()

	col := core.NewBaseCollection("registrations")
	col.Fields.Add(
		&core.SelectField{Name: "registration_type", Values: []string{"nouvelle", "renouvellement", "mutation"}, MaxSelect: 1, Required: true},
		&core.TextField{Name: "first_name", Required: true},
		&core.TextField{Name: "last_name", Required: true},
		&core.TextField{Name: "birth_date", Required: true},
		&core.SelectField{Name: "gender", Values: []string{"M", "F"}, MaxSelect: 1, Required: true},
		&core.TextField{Name: "phone", Required: true},
		&core.EmailField{Name: "email", Required: true},
		&core.SelectField{Name: "status", Values: []string{"attente", "accepté", "refusé"}, MaxSelect: 1, Required: true},
	)
	if err := app.Save(col); err != nil {
		t.Fatalf("creating registrations collection: %v", err)
	}
}

func TestRegistrationExists(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatalf("creating test app: %v", err)
	}
	defer app.Cleanup()

	setupRegistrationsCollection(t, app)

	col, err := app.FindCollectionByNameOrId("registrations")
	if err != nil {
		t.Fatalf("registrations collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("registration_type", "nouvelle")
	record.Set("first_name", "John")
	record.Set("last_name", "DOE")
	record.Set("birth_date", "15/03/2010")
	record.Set("gender", "M")
	record.Set("phone", "06 12 34 56 78")
	record.Set("email", "john@example.com")
	record.Set("status", RegistrationPending)
	if err := app.Save(record); err != nil {
		t.Fatalf("saving registration: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*registrationInput)
		want   bool
	}{
		{"same email", func(in *registrationInput) {
			in.FirstName = "Jane"
			in.Contact.Phone = "06 99 99 99 99"
		}, true},
		{"same phone", func(in *registrationInput) {
			in.FirstName = "Jane"
			in.Contact.Email = "jane@example.com"
		}, true},
		{"same full name", func(in *registrationInput) {
			in.Contact.Phone = "06 99 99 99 99"
			in.Contact.Email = "jane@example.com"
		}, true},
		{"new identity", func(in *registrationInput) {
			in.FirstName = "Jane"
			in.Contact.Phone = "06 99 99 99 99"
			in.Contact.Email = "jane@example.com"
		}, false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistrationInput()
			tt.mutate(&in)
			got, err := registrationExists(app, in)
			if err != nil {
				t.Fatalf("registrationExists returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("registrationExists() = %v, want %v", got, tt.want)
			}
		})
	}
}
