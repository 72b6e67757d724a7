package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeResident = "resident"
	UserTypeStaff    = "staff"
)

type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Type             string    `db:"type" json:"type"`
	FirstName        string    `db:"first_name" json:"firstName,omitempty"`
	LastName         string    `db:"last_name" json:"lastName,omitempty"`
	MiddleName       string    `db:"middle_name" json:"middleName,omitempty"`
	Phone            string    `db:"phone" json:"phone,omitempty"`
	Occupation       string    `db:"occupation" json:"occupation,omitempty"`
	Address          string    `db:"address" json:"address,omitempty"`
	CivilStatus      string    `db:"civil_status" json:"civilStatus,omitempty"`
	BirthDate        string    `db:"birth_date" json:"dateOfBirth,omitempty"`
	Gender           string    `db:"gender" json:"gender,omitempty"`
	HouseNumber      string    `db:"house_number" json:"houseNumber,omitempty"`
	Street           string    `db:"street" json:"street,omitempty"`
	Purok            string    `db:"purok" json:"purok,omitempty"`
	Hall             string    `db:"hall" json:"hall,omitempty"`
	EmergencyContact string    `db:"emergency_contact" json:"emergencyContact,omitempty"`
	EmergencyPhone   string    `db:"emergency_phone" json:"emergencyPhone,omitempty"`
	Avatar           string    `db:"avatar" json:"avatar,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}
