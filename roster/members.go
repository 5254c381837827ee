// Package roster manages the club's member and employee records
// outside of bulk imports: CRUD, bulk updates, salary payments,
// payment reminders, self-service registration requests and the
// daily age refresh.
package roster

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/billing"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/importer"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/notify"
)

// memberPatch carries the fields an update request may touch. A
// totalDue value is a delta added to the current amount owed, not a
// replacement.
type memberPatch struct {
	LicenseNumber *string  `json:"licenseNumber"`
	Phone         *string  `json:"phone"`
	Email         *string  `json:"email"`
	Category      *string  `json:"category"`
	TotalDue      *float64 `json:"totalDue"`
	TotalPaid     *float64 `json:"totalPaid"`
	Active        *bool    `json:"active"`
}

// applyMemberPatch writes the allowed fields onto the record and
// re-derives the ledger state. Fields outside the allow list are
// silently ignored.
func applyMemberPatch(member *core.Record, patch memberPatch) {
	if patch.LicenseNumber != nil {
		member.Set("license_number", *patch.LicenseNumber)
	}
	if patch.Phone != nil {
		member.Set("phone", *patch.Phone)
	}
	if patch.Email != nil {
		member.Set("email", *patch.Email)
	}
	if patch.Category != nil {
		member.Set("category", *patch.Category)
	}
	if patch.TotalDue != nil {
		member.Set("total_due", member.GetFloat("total_due")+*patch.TotalDue)
	}
	if patch.TotalPaid != nil {
		member.Set("total_paid", *patch.TotalPaid)
	}
	if patch.Active != nil {
		member.Set("active", *patch.Active)
	}
	billing.RecomputeRecord(member)
}

func handleCreateMember(e *core.RequestEvent, app core.App) error {
	data := struct {
		LicenseNumber string   `json:"licenseNumber"`
		Email         string   `json:"email"`
		Phone         string   `json:"phone"`
		FirstName     string   `json:"firstName"`
		LastName      string   `json:"lastName"`
		Gender        string   `json:"gender"`
		Category      string   `json:"category"`
		TotalDue      *float64 `json:"totalDue"`
		BirthDate     string   `json:"birthDate"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.LicenseNumber == "" || data.Email == "" || data.Phone == "" ||
		data.FirstName == "" || data.LastName == "" || data.Gender == "" ||
		data.Category == "" || data.TotalDue == nil || data.BirthDate == "" {
		return apis.NewBadRequestError("Missing required fields", nil)
	}

	birthDate, ok := importer.ParseBirthDate(data.BirthDate)
	if !ok {
		return apis.NewBadRequestError("birthDate must be DD/MM/YYYY", nil)
	}

	col, err := app.FindCollectionByNameOrId("members")
	if err != nil {
		return apis.NewInternalServerError("members collection", err)
	}

	member := core.NewRecord(col)
	member.Set("license_number", data.LicenseNumber)
	member.Set("email", data.Email)
	member.Set("phone", data.Phone)
	member.Set("first_name", data.FirstName)
	member.Set("last_name", data.LastName)
	member.Set("gender", data.Gender)
	member.Set("category", data.Category)
	member.Set("birth_date", birthDate)
	member.Set("active", true)
	member.Set("total_due", *data.TotalDue)
	member.Set("payment_history", []any{})
	refreshAge(member)
	billing.RecomputeRecord(member)

	if err := app.Save(member); err != nil {
		return apis.NewBadRequestError("Saving member failed", err)
	}
	return e.JSON(http.StatusCreated, member)
}

func handleListMembers(e *core.RequestEvent, app core.App) error {
	q := e.Request.URL.Query()

	var exprs []string
	params := dbx.Params{}
	if v := q.Get("paymentStatus"); v != "" {
		exprs = append(exprs, "payment_status = {:status}")
		params["status"] = v
	}
	if v := q.Get("category"); v != "" {
		exprs = append(exprs, "category = {:category}")
		params["category"] = v
	}
	if v := q.Get("age"); v != "" {
		exprs = append(exprs, "age = {:age}")
		params["age"] = v
	}
	if v := q.Get("active"); v != "" {
		exprs = append(exprs, "active = {:active}")
		params["active"] = v == "true"
	}

	filter := strings.Join(exprs, " && ")
	members, err := app.FindRecordsByFilter("members", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewInternalServerError("Listing members failed", err)
	}
	return e.JSON(http.StatusOK, members)
}

func handleGetMember(e *core.RequestEvent, app core.App) error {
	member, err := app.FindRecordById("members", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}
	return e.JSON(http.StatusOK, member)
}

func handleUpdateMember(e *core.RequestEvent, app core.App) error {
	id := e.Request.PathValue("id")

	var patch memberPatch
	if err := e.BindBody(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	unlock := billing.LockMember(id)
	defer unlock()

	member, err := app.FindRecordById("members", id)
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}

	applyMemberPatch(member, patch)

	if err := app.Save(member); err != nil {
		return apis.NewBadRequestError("Saving member failed", err)
	}
	return e.JSON(http.StatusOK, member)
}

func handleUpdateMultipleMembers(e *core.RequestEvent, app core.App) error {
	data := struct {
		MemberIDs  []string    `json:"memberIds"`
		UpdateData memberPatch `json:"updateData"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if len(data.MemberIDs) == 0 {
		return apis.NewBadRequestError("Invalid or empty memberIds array", nil)
	}

	modified := 0
	for _, id := range data.MemberIDs {
		unlock := billing.LockMember(id)
		member, err := app.FindRecordById("members", id)
		if err != nil {
			unlock()
			slog.Warn("Bulk update skipped unknown member", "id", id)
			continue
		}

		applyMemberPatch(member, data.UpdateData)

		if err := app.Save(member); err != nil {
			unlock()
			return apis.NewInternalServerError("Saving member failed", err)
		}
		unlock()
		modified++
	}

	if modified == 0 {
		return apis.NewNotFoundError("No members found with the provided IDs", nil)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"message":       "Members updated successfully",
		"modifiedCount": modified,
	})
}

func handleDeleteMember(e *core.RequestEvent, app core.App) error {
	member, err := app.FindRecordById("members", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}
	if err := app.Delete(member); err != nil {
		return apis.NewInternalServerError("Deleting member failed", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Member deleted successfully"})
}

// handleSendReminders mails every member still owing money. Delivery
// failures are reported per recipient, never as a request error.
func handleSendReminders(e *core.RequestEvent, app core.App, mail *notify.Service) error {
	members, err := app.FindRecordsByFilter("members", "total_paid < total_due", "-created", 0, 0)
	if err != nil {
		return apis.NewInternalServerError("Listing members failed", err)
	}

	if len(members) == 0 {
		return e.JSON(http.StatusOK, map[string]any{
			"message": "Aucun rappel nécessaire - tous les paiements sont à jour",
			"results": notify.BulkResult{Success: []string{}, Failed: []notify.FailedDelivery{}},
		})
	}

	results := mail.SendBulkReminders(members)
	return e.JSON(http.StatusOK, map[string]any{
		"message": "Rappels de paiement envoyés",
		"results": results,
	})
}
