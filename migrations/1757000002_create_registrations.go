package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		col := core.NewBaseCollection("registrations")

		col.Fields.Add(
			&core.SelectField{Name: "registration_type", Values: []string{"nouvelle", "renouvellement", "mutation"}, MaxSelect: 1, Required: true},
			&core.TextField{Name: "first_name", Required: true},
			&core.TextField{Name: "last_name", Required: true},
			&core.TextField{Name: "birth_date", Required: true},
			&core.SelectField{Name: "gender", Values: []string{"M", "F"}, MaxSelect: 1, Required: true},
			&core.TextField{Name: "phone", Required: true},
			&core.EmailField{Name: "email", Required: true},
			&core.TextField{Name: "tutor_name"},
			&core.TextField{Name: "tutor_phone"},
			&core.EmailField{Name: "tutor_email"},
			&core.TextField{Name: "city"},
			&core.TextField{Name: "postal_code"},
			&core.TextField{Name: "address"},
			&core.JSONField{Name: "documents"},
			&core.SelectField{Name: "image_rights", Values: []string{"oui", "non"}, MaxSelect: 1},
			&core.TextField{Name: "promo_code"},
			&core.SelectField{Name: "status", Values: []string{"attente", "accepté", "refusé"}, MaxSelect: 1, Required: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		col.AddIndex("idx_registrations_status", false, "status", "")

		return app.Save(col)
	}, func(app core.App) error {
		col, err := app.FindCollectionByNameOrId("registrations")
		if err != nil {
			return err
		}
		return app.Delete(col)
	})
}
