package roster

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/notify"
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

// RegisterHooks re-derives the age field whenever a member or employee
// record is written, so stored ages never drift from birth dates.
func RegisterHooks(app core.App) {
	app.OnRecordCreate("members", "employees").BindFunc(func(e *core.RecordEvent) error {
		refreshAge(e.Record)
		return e.Next()
	})
	app.OnRecordUpdate("members", "employees").BindFunc(func(e *core.RecordEvent) error {
		refreshAge(e.Record)
		return e.Next()
	})
}

// RegisterRoutes registers the member, employee and registration
// endpoints.
func RegisterRoutes(e *core.ServeEvent, app core.App, mail *notify.Service) {
	e.Router.POST("/api/club/members", requireAuth(func(e *core.RequestEvent) error {
		return handleCreateMember(e, app)
	}))
	e.Router.GET("/api/club/members", requireAuth(func(e *core.RequestEvent) error {
		return handleListMembers(e, app)
	}))
	e.Router.GET("/api/club/members/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleGetMember(e, app)
	}))
	e.Router.PUT("/api/club/members/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleUpdateMember(e, app)
	}))
	e.Router.DELETE("/api/club/members/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleDeleteMember(e, app)
	}))
	e.Router.POST("/api/club/members/bulk-update", requireAuth(func(e *core.RequestEvent) error {
		return handleUpdateMultipleMembers(e, app)
	}))
	e.Router.POST("/api/club/members/reminders", requireAuth(func(e *core.RequestEvent) error {
		return handleSendReminders(e, app, mail)
	}))

	e.Router.POST("/api/club/employees", requireAuth(func(e *core.RequestEvent) error {
		return handleCreateEmployee(e, app)
	}))
	e.Router.GET("/api/club/employees", requireAuth(func(e *core.RequestEvent) error {
		return handleListEmployees(e, app)
	}))
	e.Router.GET("/api/club/employees/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleGetEmployee(e, app)
	}))
	e.Router.PUT("/api/club/employees/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleUpdateEmployee(e, app)
	}))
	e.Router.DELETE("/api/club/employees/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleDeleteEmployee(e, app)
	}))
	e.Router.POST("/api/club/employees/salary", requireAuth(func(e *core.RequestEvent) error {
		return handleAddSalaryPayment(e, app, mail)
	}))
	e.Router.GET("/api/club/employees/{id}/salary", requireAuth(func(e *core.RequestEvent) error {
		return handleGetSalaryHistory(e, app)
	}))

	// Filing a registration is the one public roster route; review and
	// administration stay behind auth.
	e.Router.POST("/api/club/registrations", func(e *core.RequestEvent) error {
		return handleCreateRegistration(e, app)
	})
	e.Router.GET("/api/club/registrations", requireAuth(func(e *core.RequestEvent) error {
		return handleListRegistrations(e, app)
	}))
	e.Router.GET("/api/club/registrations/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleGetRegistration(e, app)
	}))
	e.Router.PUT("/api/club/registrations/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleUpdateRegistration(e, app)
	}))
	e.Router.DELETE("/api/club/registrations/{id}", requireAuth(func(e *core.RequestEvent) error {
		return handleDeleteRegistration(e, app)
	}))
}
