// internal/domain/models/society.go
package models

import "time"

// Society is the top-level tenant: a residential complex or a company.
type Society struct {
	ID         ID          `json:"id,omitempty"`
	Name       string      `json:"name"`
	Admins     []ID        `json:"admins,omitempty"`
	Address    string      `json:"address"`
	City       string      `json:"city"`
	State      string      `json:"state"`
	Zip        string      `json:"zip"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email,omitempty"`
	Website    string      `json:"website,omitempty"`
	AdminNames []User      `json:"adminNames,omitempty"`
	Apartments []Apartment `json:"Apartment,omitempty"`
	Users      []User      `json:"User,omitempty"`
	CreatedAt  *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time  `json:"updatedAt,omitempty"`
}

func (s Society) GetID() ID { return s.ID }

// SocietyInput is the payload for create and update.
type SocietyInput struct {
	Name    string `json:"name,omitempty"`
	Admins  []ID   `json:"admins,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}
