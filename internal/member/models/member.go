// Package models describes members of the external membership system.
package models

import id "protekt/pkg/domain"

const (
	TypeCustomer = "CUSTOMER"
	TypeStaff    = "STAFF"
)

// Member is an identity record. Mobile is the phone number and IDNumber the
// national registration number (NRC).
type Member struct {
	ID        id.MemberID `json:"id"`
	Type      string      `json:"type"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Gender    string      `json:"gender"`
	IDType    string      `json:"id_type"`
	IDNumber  string      `json:"id_number"`
	Mobile    string      `json:"mobile"`
	Status    string      `json:"status"`
}
