package roster

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/importer"
)

// Registration workflow statuses. A new request starts pending and an
// administrator moves it to accepted or rejected.
const (
	RegistrationPending  = "attente"
	RegistrationAccepted = "accepté"
	RegistrationRejected = "refusé"
)

var registrationTypes = map[string]bool{
	"nouvelle":       true,
	"renouvellement": true,
	"mutation":       true,
}

var registrationStatuses = map[string]bool{
	RegistrationPending:  true,
	RegistrationAccepted: true,
	RegistrationRejected: true,
}

// registrationInput is the self-service registration form. Tutor,
// address and document fields are optional; everything else is
// required.
type registrationInput struct {
	RegistrationType string `json:"registrationType"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	BirthDate        string `json:"birthDate"`
	Gender           string `json:"gender"`
	Contact          struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
	Tutor struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"tutor"`
	Address struct {
		City        string `json:"city"`
		PostalCode  string `json:"postalCode"`
		FullAddress string `json:"fullAddress"`
	} `json:"address"`
	Documents   map[string]string `json:"documents"`
	ImageRights string            `json:"imageRights"`
	PromoCode   string            `json:"promoCode"`
	Status      string            `json:"status"`
}

// validateRegistration checks the required form fields and the closed
// value sets. An empty status is allowed and defaults to pending.
func validateRegistration(in registrationInput) error {
	if in.RegistrationType == "" || in.FirstName == "" || in.LastName == "" ||
		in.BirthDate == "" || in.Gender == "" ||
		in.Contact.Phone == "" || in.Contact.Email == "" {
		return errors.New("Missing required fields")
	}
	if !registrationTypes[in.RegistrationType] {
		return errors.New("registrationType must be nouvelle, renouvellement or mutation")
	}
	if in.Gender != "M" && in.Gender != "F" {
		return errors.New("gender must be M or F")
	}
	if _, ok := importer.ParseBirthDate(in.BirthDate); !ok {
		return errors.New("birthDate must be DD/MM/YYYY")
	}
	if in.ImageRights != "" && in.ImageRights != "oui" && in.ImageRights != "non" {
		return errors.New("imageRights must be oui or non")
	}
	if in.Status != "" && !registrationStatuses[in.Status] {
		return errors.New("invalid status")
	}
	return nil
}

// registrationExists reports whether a request with the same email,
// phone or full name is already on file.
func registrationExists(app core.App, in registrationInput) (bool, error) {
	_, err := app.FindFirstRecordByFilter(
		"registrations",
		"email = {:email} || phone = {:phone} || (first_name = {:first} && last_name = {:last})",
		dbx.Params{
			"email": in.Contact.Email,
			"phone": in.Contact.Phone,
			"first": in.FirstName,
			"last":  in.LastName,
		},
	)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// handleCreateRegistration files a self-service registration request.
// The route is public; the form is rejected when an identity already
// on file would be duplicated.
func handleCreateRegistration(e *core.RequestEvent, app core.App) error {
	var in registrationInput
	if err := e.BindBody(&in); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := validateRegistration(in); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	exists, err := registrationExists(app, in)
	if err != nil {
		return apis.NewInternalServerError("Checking registrations failed", err)
	}
	if exists {
		return apis.NewBadRequestError("An account with this email, phone, or name already exists", nil)
	}

	col, err := app.FindCollectionByNameOrId("registrations")
	if err != nil {
		return apis.NewInternalServerError("registrations collection", err)
	}

	status := in.Status
	if status == "" {
		status = RegistrationPending
	}

	record := core.NewRecord(col)
	record.Set("registration_type", in.RegistrationType)
	record.Set("first_name", in.FirstName)
	record.Set("last_name", in.LastName)
	record.Set("birth_date", in.BirthDate)
	record.Set("gender", in.Gender)
	record.Set("phone", in.Contact.Phone)
	record.Set("email", in.Contact.Email)
	record.Set("tutor_name", in.Tutor.Name)
	record.Set("tutor_phone", in.Tutor.Phone)
	record.Set("tutor_email", in.Tutor.Email)
	record.Set("city", in.Address.City)
	record.Set("postal_code", in.Address.PostalCode)
	record.Set("address", in.Address.FullAddress)
	record.Set("documents", in.Documents)
	record.Set("image_rights", in.ImageRights)
	record.Set("promo_code", in.PromoCode)
	record.Set("status", status)

	if err := app.Save(record); err != nil {
		return apis.NewBadRequestError("Saving registration failed", err)
	}
	return e.JSON(http.StatusCreated, record)
}

// handleListRegistrations returns a trimmed listing, filterable by
// status and type.
func handleListRegistrations(e *core.RequestEvent, app core.App) error {
	q := e.Request.URL.Query()

	var exprs []string
	params := dbx.Params{}
	if v := q.Get("status"); v != "" {
		exprs = append(exprs, "status = {:status}")
		params["status"] = v
	}
	if v := q.Get("registrationType"); v != "" {
		exprs = append(exprs, "registration_type = {:type}")
		params["type"] = v
	}

	filter := strings.Join(exprs, " && ")
	records, err := app.FindRecordsByFilter("registrations", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewInternalServerError("Listing registrations failed", err)
	}

	listing := make([]map[string]any, 0, len(records))
	for _, r := range records {
		listing = append(listing, map[string]any{
			"id":               r.Id,
			"firstName":        r.GetString("first_name"),
			"lastName":         r.GetString("last_name"),
			"registrationType": r.GetString("registration_type"),
			"status":           r.GetString("status"),
		})
	}
	return e.JSON(http.StatusOK, listing)
}

func handleGetRegistration(e *core.RequestEvent, app core.App) error {
	record, err := app.FindRecordById("registrations", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Registration not found", err)
	}
	return e.JSON(http.StatusOK, record)
}

// handleUpdateRegistration moves a request through the workflow. Only
// the status field may change; anything else in the body is ignored.
func handleUpdateRegistration(e *core.RequestEvent, app core.App) error {
	data := struct {
		Status string `json:"status"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.Status != "" && !registrationStatuses[data.Status] {
		return apis.NewBadRequestError("invalid status", nil)
	}

	record, err := app.FindRecordById("registrations", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Registration not found", err)
	}

	if data.Status != "" {
		record.Set("status", data.Status)
	}

	if err := app.Save(record); err != nil {
		return apis.NewBadRequestError("Saving registration failed", err)
	}
	return e.JSON(http.StatusOK, record)
}

func handleDeleteRegistration(e *core.RequestEvent, app core.App) error {
	record, err := app.FindRecordById("registrations", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Registration not found", err)
	}
	if err := app.Delete(record); err != nil {
		return apis.NewInternalServerError("Deleting registration failed", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Registration deleted successfully"})
}
