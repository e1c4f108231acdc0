package apartments

import (
	"context"
	"slices"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// options are the choices offered by the dialog's two selects.
type options struct {
	Societies []formdialog.Option
	Owners    []formdialog.Option
	// Pinned fixes the society to DefaultSociety for roles that cannot
	// work across societies; a submitted societyId is then ignored.
	Pinned         bool
	DefaultSociety string
}

func apartmentSchema(o options) *formdialog.Schema {
	society := formdialog.Field{
		Name: "societyId", Label: "Society", Kind: formdialog.Select, Rule: "required",
		Options: o.Societies,
	}
	if o.DefaultSociety != "" {
		society.Default = []string{o.DefaultSociety}
	}
	if o.Pinned {
		society.ReadOnly = true
	}
	return formdialog.NewSchema(
		formdialog.Field{Name: "name", Label: "Name", Kind: formdialog.Text, Rule: "required,aptname,max=50",
			Placeholder: "A-101", Span: 2},
		society,
		formdialog.Field{Name: "userId", Label: "Owner", Kind: formdialog.Select, Rule: "required",
			Message: "Select the department user who owns this department", Options: o.Owners},
	)
}

// choicesCheck rejects a society or owner the dialog did not offer. Values
// equal to original are left alone so an edit that keeps them still saves.
func choicesCheck(o options, original formdialog.Values) formdialog.Check {
	return func(v formdialog.Values) formdialog.Errors {
		errs := formdialog.Errors{}
		if o.Pinned && o.DefaultSociety == "" {
			errs["societyId"] = "Your account is not linked to a society"
		}
		if society := v.Get("societyId"); !o.Pinned && society != original.Get("societyId") && !offered(o.Societies, society) {
			errs["societyId"] = "Choose a society from the list"
		}
		if owner := v.Get("userId"); owner != original.Get("userId") && !offered(o.Owners, owner) {
			errs["userId"] = "Choose an owner from the list"
		}
		return errs
	}
}

func offered(opts []formdialog.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func apartmentValues(a models.Apartment) formdialog.Values {
	return formdialog.Values{
		"name":      {a.Name},
		"societyId": {a.SocietyID.String()},
		"userId":    {a.UserID.String()},
	}
}

func apartmentInput(v formdialog.Values, only []string) models.ApartmentInput {
	want := func(name string) bool { return only == nil || slices.Contains(only, name) }

	var in models.ApartmentInput
	if want("name") {
		in.Name = v.Get("name")
	}
	if want("societyId") {
		in.SocietyID = models.ID(v.Get("societyId"))
	}
	if want("userId") {
		in.UserID = models.ID(v.Get("userId"))
	}
	return in
}

// loadOptions fetches the select choices for role. SuperAdmin picks from
// every society; everyone else is pinned to the current one.
func loadOptions(ctx context.Context, api *gateway.Client, role models.Role, current models.ID) (options, error) {
	var o options

	societies, err := api.AllSocieties(ctx)
	if err != nil {
		return o, err
	}
	all := authz.SeesAllSocieties(role)
	for _, s := range societies {
		if all || s.ID == current {
			o.Societies = append(o.Societies, formdialog.Option{Value: s.ID.String(), Label: s.Name})
		}
	}
	if !all {
		o.Pinned = true
		o.DefaultSociety = current.String()
	}

	filter := models.UserFilter{Role: models.RoleDepartment}
	if !all {
		filter.SocietyID = current
	}
	owners, err := api.FilterUsers(ctx, filter)
	if err != nil {
		return o, err
	}
	for _, u := range owners {
		o.Owners = append(o.Owners, formdialog.Option{Value: u.ID.String(), Label: u.Name})
	}
	return o, nil
}
