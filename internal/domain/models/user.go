// internal/domain/models/user.go
package models

// User mirrors the backend user record.
//
// CurrentSociety and AdministrativeSociety are arrays on the wire even
// though a session only ever has one current society.
type User struct {
	ID                    ID          `json:"id,omitempty"`
	Name                  string      `json:"name"`
	Email                 string      `json:"email,omitempty"`
	Phone                 string      `json:"phone"`
	Role                  Role        `json:"role"`
	CurrentSocietyID      ID          `json:"currentSocietyId,omitempty"`
	SocietyID             ID          `json:"societyId,omitempty"`
	ApartmentID           ID          `json:"apartmentId,omitempty"`
	Apartments            []Apartment `json:"apartment,omitempty"`
	AdministrativeSociety []Society   `json:"administrativeSocity,omitempty"`
	CurrentSociety        []Society   `json:"currentSociety,omitempty"`
}

// GetID satisfies the identity contract used by appstate collections.
func (u User) GetID() ID { return u.ID }

// CurrentSocietyRef returns the current society id, read from the embedded
// society when the id field is not set.
func (u User) CurrentSocietyRef() ID {
	if u.CurrentSocietyID != "" {
		return u.CurrentSocietyID
	}
	if len(u.CurrentSociety) > 0 {
		return u.CurrentSociety[0].ID
	}
	return u.SocietyID
}

// UserInput is the payload for create and update.
type UserInput struct {
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Role             Role   `json:"role,omitempty"`
	CurrentSocietyID ID     `json:"currentSocietyId,omitempty"`
	ApartmentID      ID     `json:"apartmentId,omitempty"`
}

// UserFilter narrows POST /users/filter.
type UserFilter struct {
	Role      Role `json:"role,omitempty"`
	SocietyID ID   `json:"societyId,omitempty"`
}
