package model

import (
	"time"

	"github.com/google/uuid"
)

type Resident struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	FirstName           string     `db:"first_name" json:"firstName"`
	LastName            string     `db:"last_name" json:"lastName"`
	MiddleName          string     `db:"middle_name" json:"middleName,omitempty"`
	Email               string     `db:"email" json:"email"`
	Phone               string     `db:"phone" json:"phone"`
	BirthDate           string     `db:"birth_date" json:"birthDate,omitempty"`
	Gender              string     `db:"gender" json:"gender,omitempty"`
	CivilStatus         string     `db:"civil_status" json:"civilStatus,omitempty"`
	HouseNumber         string     `db:"house_number" json:"houseNumber,omitempty"`
	Street              string     `db:"street" json:"street,omitempty"`
	Purok               string     `db:"purok" json:"purok,omitempty"`
	BarangayHall        string     `db:"barangay_hall" json:"barangayHall,omitempty"`
	EmailVerified       bool       `db:"email_verified" json:"emailVerified"`
	VerificationToken   *string    `db:"verification_token" json:"-"`
	VerificationExpires *time.Time `db:"verification_expires" json:"-"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}
