package models

import (
	"strings"
	"time"
)

// BloodGroup is one of the eight ABO/Rh groups recognised by the registry.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
)

// BloodGroupAll is the wildcard accepted by filters and broadcasts.
const BloodGroupAll = "All"

// BloodGroups lists the canonical groups in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupOPos, BloodGroupONeg,
	BloodGroupABPos, BloodGroupABNeg,
}

// Valid reports whether b is one of the canonical groups.
func (b BloodGroup) Valid() bool {
	for _, g := range BloodGroups {
		if g == b {
			return true
		}
	}
	return false
}

// Matches reports whether b satisfies a filter value that may be the wildcard.
func (b BloodGroup) Matches(filter string) bool {
	return filter == "" || filter == BloodGroupAll || string(b) == filter
}

// Availability captures whether a donor can currently be contacted.
type Availability string

const (
	AvailabilityAvailable    Availability = "Available"
	AvailabilityNotAvailable Availability = "Not Available"
)

// VerificationStatus records whether staff confirmed the donor's identity.
type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "Verified"
	VerificationUnverified VerificationStatus = "Unverified"
)

// UserType distinguishes active donors from plain registry users.
type UserType string

const (
	UserTypeDonor UserType = "Donor"
	UserTypeUser  UserType = "User"
)

// Donor is a registry record. Password only carries plaintext transiently (registration,
// import staging); PasswordHash is the persisted credential.
type Donor struct {
	ID                 string             `db:"id" json:"id"`
	LoginID            string             `db:"login_id" json:"loginId"`
	Password           string             `db:"-" json:"-"`
	PasswordHash       string             `db:"password_hash" json:"-"`
	Name               string             `db:"name" json:"name"`
	BloodGroup         BloodGroup         `db:"blood_group" json:"bloodGroup"`
	Age                int                `db:"age" json:"age"`
	Gender             string             `db:"gender" json:"gender"`
	Address            string             `db:"address" json:"address"`
	Phone              string             `db:"phone" json:"phone"`
	Occupation         string             `db:"occupation" json:"occupation,omitempty"`
	Designation        string             `db:"designation" json:"designation,omitempty"`
	Department         string             `db:"department" json:"department,omitempty"`
	LastDonationDate   string             `db:"last_donation_date" json:"lastDonationDate,omitempty"`
	Availability       Availability       `db:"availability" json:"availability"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verificationStatus"`
	IsBlocked          bool               `db:"is_blocked" json:"isBlocked"`
	Reports            int                `db:"reports" json:"reports"`
	InternalNotes      string             `db:"internal_notes" json:"internalNotes,omitempty"`
	UserType           UserType           `db:"user_type" json:"userType"`
	Version            int64              `db:"version" json:"version"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

// IsAvailable reports whether the donor can be reached for a request.
func (d Donor) IsAvailable() bool {
	return d.Availability == AvailabilityAvailable && !d.IsBlocked
}

// IsVerified reports whether staff verified the donor.
func (d Donor) IsVerified() bool {
	return d.VerificationStatus == VerificationVerified
}

// DonorPatch describes a partial update. Nil fields keep the existing value.
type DonorPatch struct {
	LoginID            *string             `json:"loginId,omitempty"`
	Password           *string             `json:"password,omitempty" validate:"omitempty,min=6"`
	Name               *string             `json:"name,omitempty" validate:"omitempty,min=1"`
	BloodGroup         *BloodGroup         `json:"bloodGroup,omitempty" validate:"omitempty,bloodgroup"`
	Age                *int                `json:"age,omitempty" validate:"omitempty,min=18,max=65"`
	Gender             *string             `json:"gender,omitempty"`
	Address            *string             `json:"address,omitempty"`
	Phone              *string             `json:"phone,omitempty" validate:"omitempty,phone"`
	Occupation         *string             `json:"occupation,omitempty"`
	Designation        *string             `json:"designation,omitempty"`
	Department         *string             `json:"department,omitempty"`
	LastDonationDate   *string             `json:"lastDonationDate,omitempty"`
	Availability       *Availability       `json:"availability,omitempty" validate:"omitempty,oneof=Available 'Not Available'"`
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty" validate:"omitempty,oneof=Verified Unverified"`
	IsBlocked          *bool               `json:"isBlocked,omitempty"`
	Reports            *int                `json:"reports,omitempty" validate:"omitempty,min=0"`
	InternalNotes      *string             `json:"internalNotes,omitempty"`
	UserType           *UserType           `json:"userType,omitempty" validate:"omitempty,oneof=Donor User"`
	CreatedAt          *time.Time          `json:"createdAt,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p DonorPatch) Empty() bool {
	return p == DonorPatch{}
}

// RegisterDonorRequest is the public registration payload.
type RegisterDonorRequest struct {
	Name             string     `json:"name" validate:"required,min=3"`
	BloodGroup       BloodGroup `json:"bloodGroup" validate:"required,bloodgroup"`
	Age              int        `json:"age" validate:"required,min=18,max=65"`
	Gender           string     `json:"gender" validate:"required,oneof=Male Female Other"`
	Address          string     `json:"address" validate:"required"`
	Phone            string     `json:"phone" validate:"required,phone"`
	Occupation       string     `json:"occupation"`
	Designation      string     `json:"designation"`
	Department       string     `json:"department"`
	LastDonationDate string     `json:"lastDonationDate"`
	UserType         UserType   `json:"userType" validate:"omitempty,oneof=Donor User"`
}

// RegisterDonorResponse returns the generated credentials exactly once.
type RegisterDonorResponse struct {
	Donor    Donor  `json:"donor"`
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// DonorFilter captures the query engine inputs for listing donors.
type DonorFilter struct {
	Search     string
	Status     DonorStatusFilter
	BloodGroup string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// DonorStatusFilter selects a donor sub-population.
type DonorStatusFilter string

const (
	StatusAll        DonorStatusFilter = "All"
	StatusActive     DonorStatusFilter = "Active"
	StatusBlocked    DonorStatusFilter = "Blocked"
	StatusVerified   DonorStatusFilter = "Verified"
	StatusUnverified DonorStatusFilter = "Unverified"
	StatusAvailable  DonorStatusFilter = "Available"
	StatusDuplicates DonorStatusFilter = "Duplicates"
	StatusIncomplete DonorStatusFilter = "Incomplete"
)

// ParseStatusFilter normalises a user supplied status, falling back to All.
func ParseStatusFilter(raw string) DonorStatusFilter {
	for _, s := range []DonorStatusFilter{StatusActive, StatusBlocked, StatusVerified, StatusUnverified, StatusAvailable, StatusDuplicates, StatusIncomplete} {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return StatusAll
}

// PublicSearchFilter is the anonymous donor lookup.
type PublicSearchFilter struct {
	BloodGroup string
	Location   string
	Page       int
	PageSize   int
}

// PublicDonor is the redacted view exposed to anonymous searches.
type PublicDonor struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	BloodGroup         BloodGroup         `json:"bloodGroup"`
	Address            string             `json:"address"`
	Phone              string             `json:"phone"`
	Availability       Availability       `json:"availability"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	LastDonationDate   string             `json:"lastDonationDate,omitempty"`
}

// Public converts a donor into its redacted view.
func (d Donor) Public() PublicDonor {
	return PublicDonor{
		ID:                 d.ID,
		Name:               d.Name,
		BloodGroup:         d.BloodGroup,
		Address:            d.Address,
		Phone:              d.Phone,
		Availability:       d.Availability,
		VerificationStatus: d.VerificationStatus,
		LastDonationDate:   d.LastDonationDate,
	}
}

// DonationRecovery describes where a donor is in the post-donation recovery window.
type DonationRecovery struct {
	LastDonationDate string `json:"lastDonationDate,omitempty"`
	IsRecovered      bool   `json:"isRecovered"`
	DaysLeft         int    `json:"daysLeft"`
	Percent          int    `json:"percent"`
}
