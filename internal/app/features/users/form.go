package users

import (
	"context"
	"slices"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/policy/userpolicy"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

type options struct {
	Societies  []formdialog.Option
	Apartments []formdialog.Option
}

// userSchema builds the dialog for actor. Only roles the actor may assign
// are offered, and the cross-field check refuses anything else.
func userSchema(actor models.Role, o options) *formdialog.Schema {
	var roles []formdialog.Option
	for _, r := range userpolicy.RoleOptions(actor) {
		roles = append(roles, formdialog.Option{Value: string(r), Label: r.Label()})
	}

	return formdialog.NewSchema(
		formdialog.Field{Name: "name", Label: "Name", Kind: formdialog.Text, Rule: "required,alphaspace,min=2,max=50"},
		formdialog.Field{Name: "phone", Label: "Phone", Kind: formdialog.Phone, Rule: "required,phone10", Placeholder: "10 digits"},
		formdialog.Field{Name: "email", Label: "Email", Kind: formdialog.Email, Rule: "omitempty,email"},
		formdialog.Field{Name: "role", Label: "Role", Kind: formdialog.Select, Rule: "required", Options: roles},
		formdialog.Field{Name: "currentSocietyId", Label: "Society", Kind: formdialog.Select, Options: o.Societies},
		formdialog.Field{Name: "apartmentId", Label: "Department", Kind: formdialog.Select, Options: o.Apartments},
	).With(func(v formdialog.Values) formdialog.Errors {
		errs := formdialog.Errors{}
		role := models.Role(v.Get("role"))
		if role != "" && !authz.CanAssignRole(actor, role) {
			errs["role"] = "You cannot assign this role"
		}
		if userpolicy.NeedsSociety(role) && v.Get("currentSocietyId") == "" {
			errs["currentSocietyId"] = "Select a society for this role"
		}
		if userpolicy.NeedsApartment(role) && v.Get("apartmentId") == "" {
			errs["apartmentId"] = "Select a department for this role"
		}
		return errs
	})
}

func userValues(u models.User) formdialog.Values {
	society := u.CurrentSocietyID
	if society == "" && len(u.CurrentSociety) > 0 {
		society = u.CurrentSociety[0].ID
	}
	return formdialog.Values{
		"name":             {u.Name},
		"phone":            {u.Phone},
		"email":            {u.Email},
		"role":             {string(u.Role)},
		"currentSocietyId": {society.String()},
		"apartmentId":      {u.ApartmentID.String()},
	}
}

func userInput(v formdialog.Values, only []string) models.UserInput {
	want := func(name string) bool { return only == nil || slices.Contains(only, name) }

	var in models.UserInput
	if want("name") {
		in.Name = v.Get("name")
	}
	if want("phone") {
		in.Phone = v.Get("phone")
	}
	if want("email") {
		in.Email = v.Get("email")
	}
	if want("role") {
		in.Role = models.Role(v.Get("role"))
	}
	if want("currentSocietyId") {
		in.CurrentSocietyID = models.ID(v.Get("currentSocietyId"))
	}
	if want("apartmentId") {
		in.ApartmentID = models.ID(v.Get("apartmentId"))
	}
	return in
}

// loadOptions fetches society and department choices. Actors who do not
// work across societies only see their own society and its departments.
func loadOptions(ctx context.Context, api *gateway.Client, actor models.Role, current models.ID) (options, error) {
	var o options
	if authz.SeesAllSocieties(actor) {
		societies, err := api.AllSocieties(ctx)
		if err != nil {
			return o, err
		}
		for _, s := range societies {
			o.Societies = append(o.Societies, formdialog.Option{Value: s.ID.String(), Label: s.Name})
		}
		page, err := api.ListApartments(ctx, gateway.ListParams{Page: 1, Limit: maxOptions})
		if err != nil {
			return o, err
		}
		for _, a := range page.Items {
			label := a.Name
			if n := a.SocietyName(); n != "" {
				label += " (" + n + ")"
			}
			o.Apartments = append(o.Apartments, formdialog.Option{Value: a.ID.String(), Label: label})
		}
		return o, nil
	}

	if current == "" {
		return o, nil
	}
	s, err := api.GetSociety(ctx, current)
	if err != nil {
		return o, err
	}
	o.Societies = []formdialog.Option{{Value: s.ID.String(), Label: s.Name}}
	for _, a := range s.Apartments {
		o.Apartments = append(o.Apartments, formdialog.Option{Value: a.ID.String(), Label: a.Name})
	}
	return o, nil
}

// maxOptions bounds the department list offered to a SuperAdmin.
const maxOptions = 500
