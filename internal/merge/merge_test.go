package merge

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/models"
)

func donors(n int, prefix string) []models.Donor {
	out := make([]models.Donor, n)
	for i := range out {
		out[i] = models.Donor{ID: fmt.Sprintf("%s%d", prefix, i+1), Name: fmt.Sprintf("Donor %d", i+1), BloodGroup: models.BloodGroupOPos}
	}
	return out
}

func stage(ds []models.Donor, fields ...string) []models.StagedDonor {
	out := make([]models.StagedDonor, len(ds))
	for i, d := range ds {
		out[i] = models.StagedDonor{Row: i + 1, Donor: d, Fields: fields}
	}
	return out
}

func ids(ds []models.Donor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestMirrorReplacesWholeStore(t *testing.T) {
	incoming := stage(donors(5, "new"), codec.FieldName)

	out := Mirror(incoming)
	require.Len(t, out.Donors, 5)
	assert.Equal(t, []string{"new1", "new2", "new3", "new4", "new5"}, ids(out.Donors))
	assert.Len(t, out.Inserted, 5)
}

func TestMirrorCollapsesDuplicateIDs(t *testing.T) {
	batch := stage([]models.Donor{
		{ID: "x", Name: "First", Phone: "1"},
		{ID: "x", Name: "Second"},
	}, codec.FieldName)

	out := Mirror(batch)
	require.Len(t, out.Donors, 1)
	assert.Equal(t, "Second", out.Donors[0].Name)
	assert.Equal(t, "1", out.Donors[0].Phone)
}

func TestMergeKeepsRecordsAbsentFromBatch(t *testing.T) {
	existing := donors(100, "old")
	incoming := stage(donors(5, "new"), codec.FieldName)

	out := Merge(existing, incoming)
	require.Len(t, out.Donors, 105)
	assert.Equal(t, ids(existing), ids(out.Donors[:100]))
	assert.Equal(t, []string{"new1", "new2", "new3", "new4", "new5"}, ids(out.Donors[100:]))
	assert.Empty(t, out.Updated)
}

func TestMergeOverwritesOnlySuppliedFields(t *testing.T) {
	existing := []models.Donor{{
		ID:           "a",
		LoginID:      "BDC-ID1111",
		Name:         "Old Name",
		Phone:        "555",
		Address:      "Somewhere",
		Availability: models.AvailabilityNotAvailable,
		Version:      3,
	}}
	staged := []models.StagedDonor{{
		Donor: models.Donor{
			ID:           "a",
			LoginID:      "IMP-2222",
			Name:         "New Name",
			Availability: models.AvailabilityAvailable,
		},
		Fields:    []string{codec.FieldID, codec.FieldName},
		Defaulted: []string{codec.FieldLoginID, codec.FieldAvailability},
	}}

	out := Merge(existing, staged)
	require.Len(t, out.Donors, 1)
	got := out.Donors[0]
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "BDC-ID1111", got.LoginID)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, "Somewhere", got.Address)
	assert.Equal(t, models.AvailabilityNotAvailable, got.Availability)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, []string{"a"}, out.Updated)
	assert.Empty(t, out.Inserted)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	existing := donors(2, "e")
	staged := stage([]models.Donor{{ID: "e1", Name: "Changed"}}, codec.FieldName)

	_ = Merge(existing, staged)
	assert.Equal(t, "Donor 1", existing[0].Name)
}

func TestMergeNeverDropsExistingIDs(t *testing.T) {
	existing := donors(20, "d")
	for n := 0; n <= 25; n += 5 {
		staged := stage(donors(n, "d"), codec.FieldName)
		out := Merge(existing, staged)
		present := make(map[string]bool, len(out.Donors))
		for _, d := range out.Donors {
			present[d.ID] = true
		}
		for _, d := range existing {
			assert.True(t, present[d.ID], "existing %s dropped with %d staged", d.ID, n)
		}
	}
}

func TestApplyPatch(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	base := models.Donor{ID: "p", Name: "Base", Age: 30, IsBlocked: true, Reports: 2}
	name := "Patched"
	blocked := false
	bg := models.BloodGroupABNeg

	got := ApplyPatch(base, models.DonorPatch{Name: &name, IsBlocked: &blocked, BloodGroup: &bg, CreatedAt: &created})
	assert.Equal(t, "Patched", got.Name)
	assert.False(t, got.IsBlocked)
	assert.Equal(t, models.BloodGroupABNeg, got.BloodGroup)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, 2, got.Reports)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "Base", base.Name)

	assert.Equal(t, base, ApplyPatch(base, models.DonorPatch{}))
}

func TestStagedPatchRoundTripsParsedRow(t *testing.T) {
	res, err := codec.NewParser().Parse("ID,Name,Blood Group,Age,Blocked\nz1,Zed,A+,40,true\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	patch := StagedPatch(res.Rows[0])
	require.NotNil(t, patch.Age)
	assert.Equal(t, 40, *patch.Age)
	require.NotNil(t, patch.IsBlocked)
	assert.True(t, *patch.IsBlocked)
	assert.Nil(t, patch.Phone)
	assert.Nil(t, patch.LoginID)
}

func TestTouchBumpsVersion(t *testing.T) {
	now := time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)
	got := Touch(models.Donor{Version: 4}, now)
	assert.Equal(t, int64(5), got.Version)
	assert.Equal(t, now, got.UpdatedAt)
}
