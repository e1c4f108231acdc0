// Package visitorpolicy decides who may change which parts of a visitor
// record.
//
// Authorization rules:
//   - Department users set the approval status and nothing else
//   - Security users move the visit lifecycle and attach photo and ID proof
//   - Every other known role edits the visit details
//   - A Denied visitor is locked for everyone
//   - Only roles holding visitors.delete may delete
package visitorpolicy

import (
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// EditMode is the slice of a visitor record a role may change.
type EditMode int

const (
	ModeNone EditMode = iota
	ModeDetails
	ModeApproval
	ModeSecurity
)

// Form field names shared with the visitor dialog.
const (
	FieldName           = "name"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldVisitorsCount  = "visitorscount"
	FieldApartment      = "apartmentId"
	FieldPurpose        = "purpose"
	FieldFromDate       = "fromdate"
	FieldToDate         = "todate"
	FieldTravelMode     = "travelmode"
	FieldVehicleType    = "vehicleType"
	FieldVehicleNo      = "vehicleNo"
	FieldImage          = "image"
	FieldIDProof        = "idproof"
	FieldApprovalStatus = "approvalstatus"
	FieldVisitorStatus  = "visitorstatus"
)

var (
	detailFields = []string{
		FieldName, FieldPhone, FieldAddress, FieldVisitorsCount, FieldApartment,
		FieldPurpose, FieldFromDate, FieldToDate, FieldTravelMode,
		FieldVehicleType, FieldVehicleNo, FieldImage, FieldIDProof,
	}
	approvalFields = []string{FieldApprovalStatus}
	securityFields = []string{FieldVisitorStatus, FieldImage, FieldIDProof}
)

// ModeFor returns what role may edit on an unlocked visitor.
func ModeFor(role models.Role) EditMode {
	if !authz.Can(role, authz.VisitorsEdit) {
		return ModeNone
	}
	switch role {
	case models.RoleDepartment:
		return ModeApproval
	case models.RoleSecurity:
		return ModeSecurity
	default:
		return ModeDetails
	}
}

// EditableFields lists the form fields open in mode.
func EditableFields(mode EditMode) []string {
	switch mode {
	case ModeDetails:
		return append([]string(nil), detailFields...)
	case ModeApproval:
		return append([]string(nil), approvalFields...)
	case ModeSecurity:
		return append([]string(nil), securityFields...)
	}
	return nil
}

// CanAdd reports whether role sees the add control.
func CanAdd(role models.Role) bool { return authz.Can(role, authz.VisitorsAdd) }

// CanEdit reports whether role may open the edit dialog for v.
func CanEdit(role models.Role, v models.Visitor) bool {
	return !v.Locked() && ModeFor(role) != ModeNone
}

// CanDelete reports whether role may delete visitors.
func CanDelete(role models.Role) bool { return authz.Can(role, authz.VisitorsDelete) }

// StampCreator records who created the visitor.
func StampCreator(in *models.VisitorInput, userID string, role models.Role) {
	in.CreatedBy = userID
	in.CreatedByRole = string(role)
}

// StampLifecycle sets the arrival or departure time when in moves the
// visitor from prev into Arrived or Departed. Re-submitting the same
// status does not move the timestamp.
func StampLifecycle(in *models.VisitorInput, prev models.VisitorStatus, now time.Time) {
	if in.VisitorStatus == "" || in.VisitorStatus == prev {
		return
	}
	t := now.UTC()
	switch in.VisitorStatus {
	case models.VisitorArrived:
		in.ArrivedTime = &t
	case models.VisitorDeparted:
		in.DepartedTime = &t
	}
}

// Scope is which apartments a role may file visitors against.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeAll
	ScopeSociety
	ScopeOwn
)

// ApartmentScope returns the apartment option scope of role.
func ApartmentScope(role models.Role) Scope {
	switch role {
	case models.RoleSuperAdmin:
		return ScopeAll
	case models.RoleAdmin, models.RoleManager, models.RoleSecurity, models.RoleStaff:
		return ScopeSociety
	case models.RoleDepartment, models.RoleUser, models.RoleApartmentTenant:
		return ScopeOwn
	}
	return ScopeNone
}
