package societies

import (
	"context"
	"slices"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// societySchema is the add/edit dialog. admins are the Admin and Manager
// users offered in the admins multi-select.
func societySchema(admins []formdialog.Option) *formdialog.Schema {
	return formdialog.NewSchema(
		formdialog.Field{Name: "name", Label: "Name", Kind: formdialog.Text, Rule: "required,min=2,max=100", Span: 2},
		formdialog.Field{Name: "address", Label: "Address", Kind: formdialog.TextArea, Rule: "required,min=5,max=200", Span: 2},
		formdialog.Field{Name: "city", Label: "City", Kind: formdialog.Text, Rule: "required,min=2,max=60"},
		formdialog.Field{Name: "state", Label: "State", Kind: formdialog.Text, Rule: "required,min=2,max=60"},
		formdialog.Field{Name: "zip", Label: "Zip", Kind: formdialog.Text, Rule: "required,min=5,max=10"},
		formdialog.Field{Name: "phone", Label: "Phone", Kind: formdialog.Phone, Rule: "required,digits,min=10,max=15"},
		formdialog.Field{Name: "email", Label: "Email", Kind: formdialog.Email, Rule: "omitempty,email"},
		formdialog.Field{Name: "website", Label: "Website", Kind: formdialog.URL, Rule: "omitempty,url", Placeholder: "https://"},
		formdialog.Field{Name: "admins", Label: "Admins", Kind: formdialog.MultiSelect, Rule: "required,min=1", Options: admins, Span: 2},
	)
}

func societyValues(s models.Society) formdialog.Values {
	return formdialog.Values{
		"name":    {s.Name},
		"address": {s.Address},
		"city":    {s.City},
		"state":   {s.State},
		"zip":     {s.Zip},
		"phone":   {s.Phone},
		"email":   {s.Email},
		"website": {s.Website},
		"admins":  models.IDs(s.Admins),
	}
}

// societyInput builds the request payload from v. When only is non-nil
// just those fields are carried, which makes an update partial.
func societyInput(v formdialog.Values, only []string) models.SocietyInput {
	want := func(name string) bool { return only == nil || slices.Contains(only, name) }

	var in models.SocietyInput
	if want("name") {
		in.Name = v.Get("name")
	}
	if want("address") {
		in.Address = v.Get("address")
	}
	if want("city") {
		in.City = v.Get("city")
	}
	if want("state") {
		in.State = v.Get("state")
	}
	if want("zip") {
		in.Zip = v.Get("zip")
	}
	if want("phone") {
		in.Phone = v.Get("phone")
	}
	if want("email") {
		in.Email = v.Get("email")
	}
	if want("website") {
		in.Website = v.Get("website")
	}
	if want("admins") {
		for _, id := range v.All("admins") {
			if id != "" {
				in.Admins = append(in.Admins, models.ID(id))
			}
		}
	}
	return in
}

// adminOptions lists the users who can administer a society.
func adminOptions(ctx context.Context, api *gateway.Client) ([]formdialog.Option, error) {
	var out []formdialog.Option
	for _, role := range []models.Role{models.RoleAdmin, models.RoleManager} {
		users, err := api.FilterUsers(ctx, models.UserFilter{Role: role})
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			out = append(out, formdialog.Option{Value: u.ID.String(), Label: u.Name + " (" + role.Label() + ")"})
		}
	}
	return out, nil
}
