// Package merge reconciles staged import batches with the registry and applies partial
// updates to donor records.
package merge

import (
	"time"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/models"
)

// Outcome is the reconciled collection plus the ids that were inserted or updated.
type Outcome struct {
	Donors   []models.Donor
	Inserted []string
	Updated  []string
}

// Mirror returns the staged batch as the whole collection. Rows sharing an id collapse onto
// the first occurrence so the result keeps ids unique.
func Mirror(staged []models.StagedDonor) Outcome {
	return Merge(nil, staged)
}

// Merge upserts staged rows into existing by id. A row whose id exists overwrites only the
// fields the file supplied; other rows are inserted whole. Existing order is kept with updates
// in place and inserts are appended in staged order. Records missing from staged are kept.
func Merge(existing []models.Donor, staged []models.StagedDonor) Outcome {
	out := Outcome{Donors: make([]models.Donor, 0, len(existing)+len(staged))}
	index := make(map[string]int, len(existing)+len(staged))
	for _, d := range existing {
		index[d.ID] = len(out.Donors)
		out.Donors = append(out.Donors, d)
	}

	inserted := make(map[string]bool)
	for _, row := range staged {
		pos, ok := index[row.Donor.ID]
		if !ok {
			index[row.Donor.ID] = len(out.Donors)
			out.Donors = append(out.Donors, row.Donor)
			out.Inserted = append(out.Inserted, row.Donor.ID)
			inserted[row.Donor.ID] = true
			continue
		}
		out.Donors[pos] = ApplyPatch(out.Donors[pos], StagedPatch(row))
		if !inserted[row.Donor.ID] {
			out.Updated = appendOnce(out.Updated, row.Donor.ID)
		}
	}
	return out
}

func appendOnce(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// StagedPatch converts the supplied fields of a staged row into a patch.
func StagedPatch(row models.StagedDonor) models.DonorPatch {
	d := row.Donor
	var p models.DonorPatch
	for _, key := range row.Fields {
		switch key {
		case codec.FieldLoginID:
			p.LoginID = strPtr(d.LoginID)
		case codec.FieldPassword:
			p.Password = strPtr(d.Password)
		case codec.FieldName:
			p.Name = strPtr(d.Name)
		case codec.FieldAge:
			p.Age = intPtr(d.Age)
		case codec.FieldGender:
			p.Gender = strPtr(d.Gender)
		case codec.FieldOccupation:
			p.Occupation = strPtr(d.Occupation)
		case codec.FieldDesignation:
			p.Designation = strPtr(d.Designation)
		case codec.FieldDepartment:
			p.Department = strPtr(d.Department)
		case codec.FieldPhone:
			p.Phone = strPtr(d.Phone)
		case codec.FieldBloodGroup:
			bg := d.BloodGroup
			p.BloodGroup = &bg
		case codec.FieldAddress:
			p.Address = strPtr(d.Address)
		case codec.FieldAvailability:
			a := d.Availability
			p.Availability = &a
		case codec.FieldVerificationStatus:
			v := d.VerificationStatus
			p.VerificationStatus = &v
		case codec.FieldLastDonationDate:
			p.LastDonationDate = strPtr(d.LastDonationDate)
		case codec.FieldIsBlocked:
			b := d.IsBlocked
			p.IsBlocked = &b
		case codec.FieldReports:
			p.Reports = intPtr(d.Reports)
		case codec.FieldCreatedAt:
			t := d.CreatedAt
			p.CreatedAt = &t
		case codec.FieldInternalNotes:
			p.InternalNotes = strPtr(d.InternalNotes)
		case codec.FieldUserType:
			u := d.UserType
			p.UserType = &u
		}
	}
	return p
}

// ApplyPatch returns d with every non-nil patch field applied. d is not modified.
func ApplyPatch(d models.Donor, p models.DonorPatch) models.Donor {
	if p.LoginID != nil {
		d.LoginID = *p.LoginID
	}
	if p.Password != nil {
		d.Password = *p.Password
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.BloodGroup != nil {
		d.BloodGroup = *p.BloodGroup
	}
	if p.Age != nil {
		d.Age = *p.Age
	}
	if p.Gender != nil {
		d.Gender = *p.Gender
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Occupation != nil {
		d.Occupation = *p.Occupation
	}
	if p.Designation != nil {
		d.Designation = *p.Designation
	}
	if p.Department != nil {
		d.Department = *p.Department
	}
	if p.LastDonationDate != nil {
		d.LastDonationDate = *p.LastDonationDate
	}
	if p.Availability != nil {
		d.Availability = *p.Availability
	}
	if p.VerificationStatus != nil {
		d.VerificationStatus = *p.VerificationStatus
	}
	if p.IsBlocked != nil {
		d.IsBlocked = *p.IsBlocked
	}
	if p.Reports != nil {
		d.Reports = *p.Reports
	}
	if p.InternalNotes != nil {
		d.InternalNotes = *p.InternalNotes
	}
	if p.UserType != nil {
		d.UserType = *p.UserType
	}
	if p.CreatedAt != nil {
		d.CreatedAt = p.CreatedAt.UTC()
	}
	return d
}

// Touch stamps a write: bumps the version and sets UpdatedAt.
func Touch(d models.Donor, now time.Time) models.Donor {
	d.Version++
	d.UpdatedAt = now.UTC()
	return d
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
