package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"google.golang.org/api/sheets/v4"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/billing"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/ratelimit"
)

const unpaidTab = "Impayés"

// SheetsWriter abstracts the spreadsheet write so exports can be
// tested without the live API.
type SheetsWriter interface {
	WriteToSheet(ctx context.Context, spreadsheetID, sheetTab string, data [][]interface{}) error
	ClearSheet(ctx context.Context, spreadsheetID, sheetTab string) error
}

// RealSheetsWriter implements SheetsWriter using the Google Sheets
// API. Calls go through a rate limiter that retries 429 responses
// with backoff.
type RealSheetsWriter struct {
	service *sheets.Service
	limiter *ratelimit.Limiter
}

// NewRealSheetsWriter creates a RealSheetsWriter.
func NewRealSheetsWriter(service *sheets.Service) *RealSheetsWriter {
	return &RealSheetsWriter{
		service: service,
		limiter: ratelimit.New(ratelimit.DefaultConfig()),
	}
}

// WriteToSheet writes data to a sheet tab starting at A1.
func (w *RealSheetsWriter) WriteToSheet(ctx context.Context, spreadsheetID, sheetTab string, data [][]interface{}) error {
	valueRange := &sheets.ValueRange{Values: data}

	return w.limiter.ExecuteWithRetry(ctx, func() error {
		_, err := w.service.Spreadsheets.Values.Update(
			spreadsheetID,
			sheetTab+"!A1",
			valueRange,
		).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// ClearSheet clears all data from a sheet tab.
func (w *RealSheetsWriter) ClearSheet(ctx context.Context, spreadsheetID, sheetTab string) error {
	return w.limiter.ExecuteWithRetry(ctx, func() error {
		_, err := w.service.Spreadsheets.Values.Clear(
			spreadsheetID,
			sheetTab+"!A:Z",
			&sheets.ClearValuesRequest{},
		).Context(ctx).Do()
		return err
	})
}

// UnpaidRows builds the export table for members still owing money:
// a header row, then one row per member.
func UnpaidRows(members []*core.Record) [][]interface{} {
	rows := [][]interface{}{
		{"Licence", "Nom", "Prénom", "Email", "Téléphone", "Catégorie", "Montant dû", "Statut"},
	}
	for _, m := range members {
		rows = append(rows, []interface{}{
			m.GetString("license_number"),
			m.GetString("last_name"),
			m.GetString("first_name"),
			m.GetString("email"),
			m.GetString("phone"),
			m.GetString("category"),
			billing.Outstanding(m.GetFloat("total_due"), m.GetFloat("total_paid")),
			m.GetString("payment_status"),
		})
	}
	return rows
}

// ExportUnpaid replaces the unpaid tab's contents with the current
// list of members owing money.
func ExportUnpaid(ctx context.Context, app core.App, writer SheetsWriter, spreadsheetID string) (int, error) {
	members, err := app.FindRecordsByFilter("members", "total_paid < total_due", "last_name", 0, 0)
	if err != nil {
		return 0, fmt.Errorf("listing unpaid members: %w", err)
	}

	if err := writer.ClearSheet(ctx, spreadsheetID, unpaidTab); err != nil {
		return 0, fmt.Errorf("clearing sheet: %w", err)
	}
	if err := writer.WriteToSheet(ctx, spreadsheetID, unpaidTab, UnpaidRows(members)); err != nil {
		return 0, fmt.Errorf("writing sheet: %w", err)
	}

	slog.Info("Exported unpaid members", "count", len(members), "spreadsheet", spreadsheetID)
	return len(members), nil
}

// RegisterRoutes registers the roster export endpoint. The route is
// registered even when the export is disabled so callers get a clear
// error instead of a 404.
func RegisterRoutes(e *core.ServeEvent, app core.App) {
	e.Router.POST("/api/club/export/unpaid", func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		return handleExportUnpaid(e, app)
	})
}

func handleExportUnpaid(e *core.RequestEvent, app core.App) error {
	if !IsEnabled() {
		return apis.NewBadRequestError("Google Sheets export is disabled", nil)
	}
	spreadsheetID := GetSpreadsheetID()
	if spreadsheetID == "" {
		return apis.NewBadRequestError("No spreadsheet configured", nil)
	}

	ctx, cancel := context.WithTimeout(e.Request.Context(), 30*time.Second)
	defer cancel()

	service, err := NewSheetsClient(ctx)
	if err != nil {
		return apis.NewInternalServerError("Sheets client initialization failed", err)
	}

	count, err := ExportUnpaid(ctx, app, NewRealSheetsWriter(service), spreadsheetID)
	if err != nil {
		slog.Error("Unpaid export failed", "error", err)
		return apis.NewInternalServerError("Export failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":  "Export terminé",
		"exported": count,
	})
}
