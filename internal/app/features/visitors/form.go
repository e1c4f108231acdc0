package visitors

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	vp "github.com/dalemusser/visitdesk/internal/app/policy/visitorpolicy"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// inputLayout matches <input type="datetime-local">.
const inputLayout = "2006-01-02T15:04"

// maxOptions bounds the department list offered to a SuperAdmin.
const maxOptions = 500

func optionsOf[S ~string](vals []S) []formdialog.Option {
	out := make([]formdialog.Option, 0, len(vals))
	for _, v := range vals {
		out = append(out, formdialog.Option{Value: string(v), Label: string(v)})
	}
	return out
}

func oneOf[S ~string](vals []S) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, string(v))
	}
	return "oneof=" + strings.Join(parts, " ")
}

// visitorSchema returns the dialog for mode. Details mode carries the whole
// record; the approval and security modes show the name for context and
// open only the fields that role controls. apartments, when non-nil, is
// also the set of departments the submission may name.
func visitorSchema(mode vp.EditMode, apartments []formdialog.Option, loc *time.Location) *formdialog.Schema {
	name := formdialog.Field{Name: vp.FieldName, Label: "Name", Kind: formdialog.Text, ReadOnly: true, Span: 2}

	switch mode {
	case vp.ModeApproval:
		return formdialog.NewSchema(
			name,
			formdialog.Field{Name: vp.FieldApprovalStatus, Label: "Approval", Kind: formdialog.Select,
				Rule: "required," + oneOf(models.ApprovalStatuses), Options: optionsOf(models.ApprovalStatuses), Span: 2},
		)
	case vp.ModeSecurity:
		return formdialog.NewSchema(
			name,
			formdialog.Field{Name: vp.FieldVisitorStatus, Label: "Status", Kind: formdialog.Select,
				Rule: "required," + oneOf(models.VisitorStatuses), Options: optionsOf(models.VisitorStatuses), Span: 2},
			formdialog.Field{Name: vp.FieldImage, Label: "Photo", Kind: formdialog.File, Accept: "image/*"},
			formdialog.Field{Name: vp.FieldIDProof, Label: "ID proof", Kind: formdialog.File, Accept: "image/*,application/pdf"},
		)
	}

	name.ReadOnly = false
	name.Rule = "required,min=2,max=50"
	dateRule := "required,datetime=" + inputLayout

	return formdialog.NewSchema(
		name,
		formdialog.Field{Name: vp.FieldPhone, Label: "Phone", Kind: formdialog.Phone, Rule: "required,digits,min=10,max=15"},
		formdialog.Field{Name: vp.FieldVisitorsCount, Label: "Visitors", Kind: formdialog.Number, Rule: "required,min=1,max=10",
			Default: []string{"1"}},
		formdialog.Field{Name: vp.FieldAddress, Label: "Address", Kind: formdialog.TextArea, Rule: "required,min=5,max=200", Span: 2},
		formdialog.Field{Name: vp.FieldApartment, Label: "Department", Kind: formdialog.Select, Rule: "required", Options: apartments},
		formdialog.Field{Name: vp.FieldPurpose, Label: "Purpose", Kind: formdialog.Text, Rule: "required,max=200"},
		formdialog.Field{Name: vp.FieldFromDate, Label: "From", Kind: formdialog.DateTime, Rule: dateRule},
		formdialog.Field{Name: vp.FieldToDate, Label: "To", Kind: formdialog.DateTime, Rule: dateRule},
		formdialog.Field{Name: vp.FieldTravelMode, Label: "Travel mode", Kind: formdialog.Select,
			Rule:    "required,oneof=" + models.TravelVehicle + " " + models.TravelWalking,
			Options: optionsOf([]string{models.TravelWalking, models.TravelVehicle}), Default: []string{models.TravelWalking}},
		formdialog.Field{Name: vp.FieldVehicleType, Label: "Vehicle type", Kind: formdialog.Select,
			Rule: "omitempty," + oneOf(models.VehicleTypes), Options: optionsOf(models.VehicleTypes)},
		formdialog.Field{Name: vp.FieldVehicleNo, Label: "Vehicle number", Kind: formdialog.Text, Rule: "omitempty,max=20"},
		formdialog.Field{Name: vp.FieldImage, Label: "Photo", Kind: formdialog.File, Accept: "image/*"},
		formdialog.Field{Name: vp.FieldIDProof, Label: "ID proof", Kind: formdialog.File, Accept: "image/*,application/pdf"},
	).With(
		windowCheck(loc),
		vehicleCheck,
		apartmentCheck(apartments),
	)
}

func windowCheck(loc *time.Location) formdialog.Check {
	return func(v formdialog.Values) formdialog.Errors {
		from := parseTime(v.Get(vp.FieldFromDate), loc)
		to := parseTime(v.Get(vp.FieldToDate), loc)
		if from == nil || to == nil {
			return nil
		}
		if !to.After(*from) {
			return formdialog.Errors{vp.FieldToDate: "To must be after From"}
		}
		return nil
	}
}

func vehicleCheck(v formdialog.Values) formdialog.Errors {
	if v.Get(vp.FieldTravelMode) != models.TravelVehicle {
		return nil
	}
	errs := formdialog.Errors{}
	if v.Get(vp.FieldVehicleType) == "" {
		errs[vp.FieldVehicleType] = "Select the vehicle type"
	}
	if v.Get(vp.FieldVehicleNo) == "" {
		errs[vp.FieldVehicleNo] = "Vehicle number is required"
	}
	return errs
}

func apartmentCheck(allowed []formdialog.Option) formdialog.Check {
	return func(v formdialog.Values) formdialog.Errors {
		id := v.Get(vp.FieldApartment)
		if allowed == nil || id == "" {
			return nil
		}
		for _, o := range allowed {
			if o.Value == id {
				return nil
			}
		}
		return formdialog.Errors{vp.FieldApartment: "Select one of your departments"}
	}
}

func parseTime(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(inputLayout, s, loc)
	if err != nil {
		return nil
	}
	return &t
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(inputLayout)
}

func visitorValues(v models.Visitor, loc *time.Location) formdialog.Values {
	count := ""
	if v.VisitorsCount > 0 {
		count = strconv.Itoa(v.VisitorsCount)
	}
	return formdialog.Values{
		vp.FieldName:           {v.Name},
		vp.FieldPhone:          {v.Phone},
		vp.FieldAddress:        {v.Address},
		vp.FieldVisitorsCount:  {count},
		vp.FieldApartment:      {v.ApartmentID.String()},
		vp.FieldPurpose:        {v.Purpose},
		vp.FieldFromDate:       {formatTime(v.FromDate, loc)},
		vp.FieldToDate:         {formatTime(v.ToDate, loc)},
		vp.FieldTravelMode:     {v.TravelMode},
		vp.FieldVehicleType:    {string(v.VehicleType)},
		vp.FieldVehicleNo:      {v.VehicleNo},
		vp.FieldImage:          {v.Image},
		vp.FieldIDProof:        {v.IDProof},
		vp.FieldApprovalStatus: {string(v.ApprovalStatus)},
		vp.FieldVisitorStatus:  {string(v.VisitorStatus)},
	}
}

// visitorInput builds the payload from v. When only is non-nil just those
// fields are set, which keeps an update partial. Files travel separately.
func visitorInput(v formdialog.Values, only []string, loc *time.Location) models.VisitorInput {
	want := func(name string) bool { return only == nil || slices.Contains(only, name) }

	var in models.VisitorInput
	if want(vp.FieldName) {
		in.Name = v.Get(vp.FieldName)
	}
	if want(vp.FieldPhone) {
		in.Phone = v.Get(vp.FieldPhone)
	}
	if want(vp.FieldAddress) {
		in.Address = v.Get(vp.FieldAddress)
	}
	if want(vp.FieldPurpose) {
		in.Purpose = v.Get(vp.FieldPurpose)
	}
	if want(vp.FieldVisitorsCount) {
		in.VisitorsCount, _ = strconv.Atoi(v.Get(vp.FieldVisitorsCount))
	}
	if want(vp.FieldApartment) {
		in.ApartmentID = models.ID(v.Get(vp.FieldApartment))
	}
	if want(vp.FieldFromDate) {
		in.FromDate = parseTime(v.Get(vp.FieldFromDate), loc)
	}
	if want(vp.FieldToDate) {
		in.ToDate = parseTime(v.Get(vp.FieldToDate), loc)
	}
	if want(vp.FieldTravelMode) {
		in.TravelMode = v.Get(vp.FieldTravelMode)
	}
	if want(vp.FieldVehicleType) {
		in.VehicleType = models.VehicleType(v.Get(vp.FieldVehicleType))
	}
	if want(vp.FieldVehicleNo) {
		in.VehicleNo = v.Get(vp.FieldVehicleNo)
	}
	if want(vp.FieldApprovalStatus) {
		in.ApprovalStatus = models.ApprovalStatus(v.Get(vp.FieldApprovalStatus))
	}
	if want(vp.FieldVisitorStatus) {
		in.VisitorStatus = models.VisitorStatus(v.Get(vp.FieldVisitorStatus))
	}
	return in
}

// uploads opens the submitted files named in only (all when nil). The
// returned func closes them.
func uploads(files formdialog.Files, only []string) (gateway.VisitorUploads, func(), error) {
	var (
		up     gateway.VisitorUploads
		opened []interface{ Close() error }
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	open := func(name string) (*gateway.File, error) {
		fh, ok := files[name]
		if !ok || (only != nil && !slices.Contains(only, name)) {
			return nil, nil
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		opened = append(opened, f)
		return &gateway.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f}, nil
	}

	var err error
	if up.Image, err = open(vp.FieldImage); err != nil {
		closeAll()
		return up, func() {}, err
	}
	if up.IDProof, err = open(vp.FieldIDProof); err != nil {
		closeAll()
		return up, func() {}, err
	}
	return up, closeAll, nil
}

// apartmentOptions returns the departments role may file visitors against.
func apartmentOptions(ctx context.Context, api *gateway.Client, role models.Role, userID, society models.ID) ([]formdialog.Option, error) {
	scope := vp.ApartmentScope(role)
	var out []formdialog.Option

	switch scope {
	case vp.ScopeNone:
		return out, nil
	case vp.ScopeAll:
		page, err := api.ListApartments(ctx, gateway.ListParams{Page: 1, Limit: maxOptions})
		if err != nil {
			return nil, err
		}
		for _, a := range page.Items {
			label := a.Name
			if n := a.SocietyName(); n != "" {
				label += " (" + n + ")"
			}
			out = append(out, formdialog.Option{Value: a.ID.String(), Label: label})
		}
		return out, nil
	}

	if society == "" {
		return out, nil
	}
	s, err := api.GetSociety(ctx, society)
	if err != nil {
		return nil, err
	}
	for _, a := range s.Apartments {
		if scope == vp.ScopeOwn && !belongsTo(a, userID) {
			continue
		}
		out = append(out, formdialog.Option{Value: a.ID.String(), Label: a.Name})
	}
	return out, nil
}

func belongsTo(a models.Apartment, userID models.ID) bool {
	if a.UserID == userID {
		return true
	}
	for _, u := range a.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
