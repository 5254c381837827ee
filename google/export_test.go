package google

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func unpaidMember(license, last, first string, due, paid float64) *core.Record {
	col := core.NewBaseCollection("members")
	col.Fields.Add(
		&core.TextField{Name: "license_number"},
		&core.TextField{Name: "first_name"},
		&core.TextField{Name: "last_name"},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "category"},
		&core.NumberField{Name: "total_due"},
		&core.NumberField{Name: "total_paid"},
		&core.SelectField{Name: "payment_status", Values: []string{"unpaid", "partial", "paid"}, MaxSelect: 1},
	)

	record := core.NewRecord(col)
	record.Set("license_number", license)
	record.Set("last_name", last)
	record.Set("first_name", first)
	record.Set("total_due", due)
	record.Set("total_paid", paid)
	record.Set("payment_status", "partial")
	return record
}

func TestUnpaidRows(t *testing.T) {
	members := []*core.Record{
		unpaidMember("111", "DOE", "John", 150, 50),
	}

	rows := UnpaidRows(members)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header plus one member", len(rows))
	}
	if rows[0][0] != "Licence" {
		t.Errorf("header = %v", rows[0])
	}

	row := rows[1]
	if row[0] != "111" || row[1] != "DOE" || row[2] != "John" {
		t.Errorf("identity columns = %v", row[:3])
	}
	if row[6] != 100.0 {
		t.Errorf("outstanding = %v, want 100", row[6])
	}
}

func TestUnpaidRows_Empty(t *testing.T) {
	rows := UnpaidRows(nil)

	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want header only", len(rows))
	}
}
