package importer

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
)

// requireAuth wraps a handler function to require authentication.
func requireAuth(handler func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		return handler(e)
	}
}

// RegisterRoutes registers the import endpoints.
func RegisterRoutes(e *core.ServeEvent, app core.App, cfg config.Import) {
	imp := New(app, cfg)

	e.Router.POST("/api/club/import", requireAuth(func(e *core.RequestEvent) error {
		return handleImport(e, imp)
	}))

	e.Router.GET("/api/club/import/comments", requireAuth(func(e *core.RequestEvent) error {
		return handleEntriesWithComments(e, app)
	}))
}

func handleImport(e *core.RequestEvent, imp *Importer) error {
	file, _, err := e.Request.FormFile("file")
	if err != nil {
		return apis.NewBadRequestError("Aucun fichier n'a été uploadé", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apis.NewBadRequestError("Unreadable upload", err)
	}

	summary, err := imp.Run(data)
	if err != nil {
		slog.Error("Import failed", "error", err)
		return apis.NewBadRequestError("Importation échouée", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Importation terminée",
		"summary": summary,
	})
}

// handleEntriesWithComments lists every member and employee whose
// import left audit comments, for manual review of defaulted fields.
func handleEntriesWithComments(e *core.RequestEvent, app core.App) error {
	members, err := app.FindRecordsByFilter(
		"members", "comments != '' && comments != '[]' && comments != 'null'", "-created", 0, 0)
	if err != nil {
		return apis.NewInternalServerError("Listing members failed", err)
	}

	employees, err := app.FindRecordsByFilter(
		"employees", "comments != '' && comments != '[]' && comments != 'null'", "-created", 0, 0)
	if err != nil {
		return apis.NewInternalServerError("Listing employees failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"members":   members,
		"employees": employees,
	})
}
