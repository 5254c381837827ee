package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		col := core.NewBaseCollection("employees")

		col.Fields.Add(
			&core.TextField{Name: "license_number", Required: true},
			&core.TextField{Name: "first_name", Required: true},
			&core.TextField{Name: "last_name", Required: true},
			&core.EmailField{Name: "email"},
			&core.TextField{Name: "phone"},
			&core.TextField{Name: "birth_date"},
			&core.NumberField{Name: "age"},
			&core.SelectField{Name: "gender", Values: []string{"M", "F", "Unknown"}, MaxSelect: 1},
			&core.JSONField{Name: "positions"},
			&core.SelectField{Name: "contract_status", Values: []string{"CDI", "CDD", "Freelance"}, MaxSelect: 1},
			&core.SelectField{Name: "salary_type", Values: []string{"Hourly", "Monthly"}, MaxSelect: 1},
			&core.NumberField{Name: "hourly_rate"},
			&core.NumberField{Name: "monthly_salary"},
			&core.JSONField{Name: "salary_history"},
			&core.BoolField{Name: "active"},
			&core.JSONField{Name: "comments"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// One record per license; batch imports merge into it.
		col.AddIndex("idx_employees_license", true, "license_number", "")

		return app.Save(col)
	}, func(app core.App) error {
		col, err := app.FindCollectionByNameOrId("employees")
		if err != nil {
			return err
		}
		return app.Delete(col)
	})
}
