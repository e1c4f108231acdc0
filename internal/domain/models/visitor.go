// internal/domain/models/visitor.go
package models

import "time"

// ApprovalStatus is set by the visited apartment's Department user.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalDenied   ApprovalStatus = "Denied"
)

// ApprovalStatuses in display order.
var ApprovalStatuses = []ApprovalStatus{ApprovalPending, ApprovalApproved, ApprovalDenied}

// VisitorStatus tracks physical presence and is set by Security.
type VisitorStatus string

const (
	VisitorScheduled VisitorStatus = "Scheduled"
	VisitorArrived   VisitorStatus = "Arrived"
	VisitorDeparted  VisitorStatus = "Departed"
	VisitorCanceled  VisitorStatus = "Canceled"
)

// VisitorStatuses in display order.
var VisitorStatuses = []VisitorStatus{VisitorScheduled, VisitorArrived, VisitorDeparted, VisitorCanceled}

// VehicleType is the kind of vehicle a visitor arrives in.
type VehicleType string

const (
	VehicleCar     VehicleType = "Car"
	VehicleTruck   VehicleType = "Truck"
	VehicleBike    VehicleType = "Bike"
	VehicleVan     VehicleType = "Van"
	VehicleBus     VehicleType = "Bus"
	VehicleTractor VehicleType = "Tractor"
	VehicleTrailer VehicleType = "Trailer"
	VehicleOther   VehicleType = "Other"
)

// VehicleTypes in display order.
var VehicleTypes = []VehicleType{
	VehicleCar, VehicleTruck, VehicleBike, VehicleVan,
	VehicleBus, VehicleTractor, VehicleTrailer, VehicleOther,
}

// Travel modes.
const (
	TravelVehicle = "Vehicle"
	TravelWalking = "Walking"
)

// Visitor is a scheduled or walk-in guest entry.
type Visitor struct {
	ID             ID             `json:"id,omitempty"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address,omitempty"`
	Image          string         `json:"image,omitempty"`
	IDProof        string         `json:"idproof,omitempty"`
	VisitorsCount  int            `json:"visitorscount,omitempty"`
	ApartmentID    ID             `json:"apartmentId"`
	Apartment      *Apartment     `json:"apartment,omitempty"`
	Purpose        string         `json:"purpose,omitempty"`
	FromDate       time.Time      `json:"fromdate"`
	ToDate         time.Time      `json:"todate"`
	TravelMode     string         `json:"travelmode,omitempty"`
	VehicleType    VehicleType    `json:"vehicleType,omitempty"`
	VehicleNo      string         `json:"vehicleNo,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalstatus,omitempty"`
	VisitorStatus  VisitorStatus  `json:"visitorstatus,omitempty"`
	ArrivedTime    *time.Time     `json:"arrivedtime,omitempty"`
	DepartedTime   *time.Time     `json:"departedtime,omitempty"`
	CreatedBy      string         `json:"createdby,omitempty"`
	CreatedByRole  string         `json:"createdbyrole,omitempty"`
	CreatedAt      *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
}

func (v Visitor) GetID() ID { return v.ID }

// Count returns the party size, treating a missing count as one visitor.
func (v Visitor) Count() int {
	if v.VisitorsCount <= 0 {
		return 1
	}
	return v.VisitorsCount
}

// Locked reports whether the record can no longer be edited.
func (v Visitor) Locked() bool {
	return v.ApprovalStatus == ApprovalDenied
}

// ApartmentName returns the embedded apartment's name, if any.
func (v Visitor) ApartmentName() string {
	if v.Apartment == nil {
		return ""
	}
	return v.Apartment.Name
}

// VisitorInput is the payload for create and update. Zero-valued fields are
// left out of the request, so an update carries only what changed.
type VisitorInput struct {
	Name           string
	Phone          string
	Address        string
	Purpose        string
	VisitorsCount  int
	ApartmentID    ID
	FromDate       *time.Time
	ToDate         *time.Time
	TravelMode     string
	VehicleType    VehicleType
	VehicleNo      string
	ApprovalStatus ApprovalStatus
	VisitorStatus  VisitorStatus
	ArrivedTime    *time.Time
	DepartedTime   *time.Time
	CreatedBy      string
	CreatedByRole  string
}
