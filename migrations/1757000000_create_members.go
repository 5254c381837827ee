package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		col := core.NewBaseCollection("members")

		col.Fields.Add(
			&core.TextField{Name: "license_number", Required: true},
			&core.TextField{Name: "first_name", Required: true},
			&core.TextField{Name: "last_name", Required: true},
			&core.EmailField{Name: "email"},
			&core.TextField{Name: "phone"},
			// Stored as DD/MM/YYYY, empty when the source sheet had no
			// parseable date.
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
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		col.AddIndex("idx_members_license", false, "license_number", "")
		col.AddIndex("idx_members_payment_status", false, "payment_status", "")

		return app.Save(col)
	}, func(app core.App) error {
		col, err := app.FindCollectionByNameOrId("members")
		if err != nil {
			return err
		}
		return app.Delete(col)
	})
}
