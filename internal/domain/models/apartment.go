// internal/domain/models/apartment.go
package models

// Apartment is a named sub-unit of a society ("Department" or "Office" in
// the UI). It is owned by exactly one user and is what visitors check in to.
type Apartment struct {
	ID        ID        `json:"id,omitempty"`
	Name      string    `json:"name"`
	UserID    ID        `json:"userId,omitempty"`
	SocietyID ID        `json:"societyId,omitempty"`
	Owner     *User     `json:"owner,omitempty"`
	Users     []User    `json:"users,omitempty"`
	Society   *Society  `json:"society,omitempty"`
	Visitors  []Visitor `json:"Visitor,omitempty"`
}

func (a Apartment) GetID() ID { return a.ID }

// OwnerName returns the owner's display name or "" if the owner is not embedded.
func (a Apartment) OwnerName() string {
	if a.Owner == nil {
		return ""
	}
	return a.Owner.Name
}

// SocietyName returns the society name or "" if the society is not embedded.
func (a Apartment) SocietyName() string {
	if a.Society == nil {
		return ""
	}
	return a.Society.Name
}

// ApartmentInput is the payload for create and update.
type ApartmentInput struct {
	Name      string `json:"name,omitempty"`
	SocietyID ID     `json:"societyId,omitempty"`
	UserID    ID     `json:"userId,omitempty"`
}
