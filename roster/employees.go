package roster

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/importer"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/notify"
)

// Salary types.
const (
	SalaryHourly  = "Hourly"
	SalaryMonthly = "Monthly"
)

// SalaryPayment is one entry of an employee's salary history.
type SalaryPayment struct {
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	HoursWorked float64   `json:"hoursWorked,omitempty"`
}

// SalaryFor computes one salary payment for an employee's contract
// terms. Hourly contracts require a positive hours count; monthly
// contracts pay the fixed salary and ignore hours.
func SalaryFor(salaryType string, hourlyRate, monthlySalary, hoursWorked float64) (SalaryPayment, error) {
	switch salaryType {
	case SalaryHourly:
		if hoursWorked <= 0 {
			return SalaryPayment{}, fmt.Errorf("hours worked must be a positive number")
		}
		return SalaryPayment{Amount: hourlyRate * hoursWorked, HoursWorked: hoursWorked}, nil
	case SalaryMonthly:
		return SalaryPayment{Amount: monthlySalary}, nil
	case "":
		return SalaryPayment{}, fmt.Errorf("employee salary type is missing")
	default:
		return SalaryPayment{}, fmt.Errorf("invalid salary type %q", salaryType)
	}
}

func handleCreateEmployee(e *core.RequestEvent, app core.App) error {
	data := struct {
		LicenseNumber  string   `json:"licenseNumber"`
		FirstName      string   `json:"firstName"`
		LastName       string   `json:"lastName"`
		Email          string   `json:"email"`
		Phone          string   `json:"phone"`
		BirthDate      string   `json:"birthDate"`
		Gender         string   `json:"gender"`
		Positions      []string `json:"positions"`
		ContractStatus string   `json:"contractStatus"`
		SalaryType     string   `json:"salaryType"`
		HourlyRate     float64  `json:"hourlyRate"`
		MonthlySalary  float64  `json:"monthlySalary"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.LicenseNumber == "" || data.FirstName == "" || data.LastName == "" ||
		data.Email == "" || data.Phone == "" || data.BirthDate == "" ||
		data.Gender == "" || len(data.Positions) == 0 || data.ContractStatus == "" ||
		data.SalaryType == "" ||
		(data.SalaryType == SalaryHourly && data.HourlyRate == 0) ||
		(data.SalaryType == SalaryMonthly && data.MonthlySalary == 0) {
		return apis.NewBadRequestError("Missing required fields", nil)
	}

	birthDate, ok := importer.ParseBirthDate(data.BirthDate)
	if !ok {
		return apis.NewBadRequestError("birthDate must be DD/MM/YYYY", nil)
	}

	col, err := app.FindCollectionByNameOrId("employees")
	if err != nil {
		return apis.NewInternalServerError("employees collection", err)
	}

	employee := core.NewRecord(col)
	employee.Set("license_number", data.LicenseNumber)
	employee.Set("first_name", data.FirstName)
	employee.Set("last_name", data.LastName)
	employee.Set("email", data.Email)
	employee.Set("phone", data.Phone)
	employee.Set("birth_date", birthDate)
	employee.Set("gender", data.Gender)
	employee.Set("positions", data.Positions)
	employee.Set("contract_status", data.ContractStatus)
	employee.Set("salary_type", data.SalaryType)
	employee.Set("hourly_rate", data.HourlyRate)
	employee.Set("monthly_salary", data.MonthlySalary)
	employee.Set("salary_history", []any{})
	employee.Set("active", true)
	refreshAge(employee)

	if err := app.Save(employee); err != nil {
		return apis.NewBadRequestError("Saving employee failed", err)
	}
	return e.JSON(http.StatusCreated, employee)
}

func handleListEmployees(e *core.RequestEvent, app core.App) error {
	q := e.Request.URL.Query()

	var exprs []string
	params := dbx.Params{}
	if v := q.Get("licenseNumber"); v != "" {
		exprs = append(exprs, "license_number = {:license}")
		params["license"] = v
	}
	if v := q.Get("firstName"); v != "" {
		exprs = append(exprs, "first_name ~ {:first}")
		params["first"] = v
	}
	if v := q.Get("lastName"); v != "" {
		exprs = append(exprs, "last_name ~ {:last}")
		params["last"] = v
	}
	if v := q.Get("contractStatus"); v != "" {
		exprs = append(exprs, "contract_status = {:contract}")
		params["contract"] = v
	}
	if v := q.Get("position"); v != "" {
		exprs = append(exprs, "positions ~ {:position}")
		params["position"] = v
	}

	filter := strings.Join(exprs, " && ")
	employees, err := app.FindRecordsByFilter("employees", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewInternalServerError("Listing employees failed", err)
	}
	return e.JSON(http.StatusOK, employees)
}

func handleGetEmployee(e *core.RequestEvent, app core.App) error {
	employee, err := app.FindRecordById("employees", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Employee not found", err)
	}
	return e.JSON(http.StatusOK, employee)
}

func handleUpdateEmployee(e *core.RequestEvent, app core.App) error {
	patch := struct {
		Phone          *string   `json:"phone"`
		Email          *string   `json:"email"`
		Positions      *[]string `json:"positions"`
		ContractStatus *string   `json:"contractStatus"`
		MonthlySalary  *float64  `json:"monthlySalary"`
		HourlyRate     *float64  `json:"hourlyRate"`
		SalaryType     *string   `json:"salaryType"`
	}{}
	if err := e.BindBody(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	employee, err := app.FindRecordById("employees", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Employee not found", err)
	}

	if patch.Phone != nil {
		employee.Set("phone", *patch.Phone)
	}
	if patch.Email != nil {
		employee.Set("email", *patch.Email)
	}
	if patch.Positions != nil {
		employee.Set("positions", *patch.Positions)
	}
	if patch.ContractStatus != nil {
		employee.Set("contract_status", *patch.ContractStatus)
	}
	if patch.MonthlySalary != nil {
		employee.Set("monthly_salary", *patch.MonthlySalary)
	}
	if patch.HourlyRate != nil {
		employee.Set("hourly_rate", *patch.HourlyRate)
	}
	if patch.SalaryType != nil {
		employee.Set("salary_type", *patch.SalaryType)
	}

	if err := app.Save(employee); err != nil {
		return apis.NewBadRequestError("Saving employee failed", err)
	}
	return e.JSON(http.StatusOK, employee)
}

func handleDeleteEmployee(e *core.RequestEvent, app core.App) error {
	employee, err := app.FindRecordById("employees", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Employee not found", err)
	}
	if err := app.Delete(employee); err != nil {
		return apis.NewInternalServerError("Deleting employee failed", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Employee deleted successfully"})
}

// handleAddSalaryPayment computes and records one salary payment for
// an employee, then mails a confirmation.
func handleAddSalaryPayment(e *core.RequestEvent, app core.App, mail *notify.Service) error {
	data := struct {
		EmployeeID  string  `json:"employeeId"`
		HoursWorked float64 `json:"hoursWorked"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.EmployeeID == "" {
		return apis.NewBadRequestError("Employee ID is required", nil)
	}

	employee, err := app.FindRecordById("employees", data.EmployeeID)
	if err != nil {
		return apis.NewNotFoundError("Employee not found", err)
	}

	payment, err := SalaryFor(
		employee.GetString("salary_type"),
		employee.GetFloat("hourly_rate"),
		employee.GetFloat("monthly_salary"),
		data.HoursWorked,
	)
	if err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}
	payment.Date = time.Now()

	var history []SalaryPayment
	if err := employee.UnmarshalJSONField("salary_history", &history); err != nil {
		history = nil
	}
	encoded, err := json.Marshal(append(history, payment))
	if err != nil {
		return apis.NewInternalServerError("Encoding salary history failed", err)
	}
	employee.Set("salary_history", string(encoded))

	if err := app.Save(employee); err != nil {
		return apis.NewInternalServerError("Saving salary payment failed", err)
	}

	if err := mail.SendSalaryConfirmation(employee, payment.Amount); err != nil {
		slog.Error("Failed to send salary confirmation", "employee", employee.Id, "error", err)
	}

	return e.JSON(http.StatusOK, employee)
}

func handleGetSalaryHistory(e *core.RequestEvent, app core.App) error {
	employee, err := app.FindRecordById("employees", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Employee not found", err)
	}

	var history []SalaryPayment
	if err := employee.UnmarshalJSONField("salary_history", &history); err != nil {
		history = nil
	}
	if history == nil {
		history = []SalaryPayment{}
	}
	return e.JSON(http.StatusOK, history)
}
