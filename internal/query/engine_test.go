package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

func numbered(n int) []models.Donor {
	out := make([]models.Donor, n)
	for i := range out {
		out[i] = models.Donor{
			ID:                 fmt.Sprintf("d%02d", i+1),
			Name:               fmt.Sprintf("Donor %02d", i+1),
			BloodGroup:         models.BloodGroups[i%len(models.BloodGroups)],
			Phone:              fmt.Sprintf("+1555%06d", i+1),
			Address:            "Main Street",
			Availability:       models.AvailabilityAvailable,
			VerificationStatus: models.VerificationUnverified,
		}
	}
	return out
}

func pageIDs(ds []models.Donor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestPaginateTwentyFiveBySizeTen(t *testing.T) {
	e := NewEngine(10, nil)
	items, p := e.Paginate(numbered(25), 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalCount)
	require.Len(t, items, 10)
	assert.Equal(t, "d11", items[0].ID)
	assert.Equal(t, "d20", items[9].ID)

	last, _ := e.Paginate(numbered(25), 3, 10)
	assert.Len(t, last, 5)
}

func TestPaginateAdjacentPagesNeitherSkipNorRepeat(t *testing.T) {
	e := NewEngine(10, nil)
	donors := numbered(47)
	for _, size := range []int{5, 10, 20, 50} {
		seen := make(map[string]int)
		_, first := e.Paginate(donors, 1, size)
		for page := 1; page <= first.TotalPages; page++ {
			items, _ := e.Paginate(donors, page, size)
			for _, d := range items {
				seen[d.ID]++
			}
		}
		assert.Len(t, seen, len(donors), "size %d", size)
		for id, n := range seen {
			assert.Equal(t, 1, n, "size %d id %s", size, id)
		}
	}
}

func TestPaginateClampsAndNormalisesSize(t *testing.T) {
	e := NewEngine(10, []int{5, 10, 20, 50})

	items, p := e.Paginate(numbered(12), 9, 7)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 2, p.Page)
	assert.Len(t, items, 2)

	items, p = e.Paginate(nil, 0, 5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, items)
}

func TestFilterComposesPredicates(t *testing.T) {
	donors := []models.Donor{
		{ID: "1", Name: "Alice", LoginID: "BDC-ID1001", BloodGroup: models.BloodGroupAPos, Phone: "111", VerificationStatus: models.VerificationVerified},
		{ID: "2", Name: "Alicia", LoginID: "BDC-ID1002", BloodGroup: models.BloodGroupAPos, Phone: "222", IsBlocked: true},
		{ID: "3", Name: "Bob", LoginID: "BDC-ID1003", BloodGroup: models.BloodGroupONeg, Phone: "333"},
		{ID: "4", Name: "Carl", LoginID: "IMP-2001", BloodGroup: models.BloodGroupAPos, Phone: "ali-444"},
	}

	got := Filter(donors, models.DonorFilter{Search: "ALI", BloodGroup: "A+", Status: models.StatusActive}, nil)
	assert.Equal(t, []string{"1", "4"}, pageIDs(got))

	got = Filter(donors, models.DonorFilter{Search: "imp-", Status: models.StatusAll, BloodGroup: "All"}, nil)
	assert.Equal(t, []string{"4"}, pageIDs(got))

	got = Filter(donors, models.DonorFilter{Status: models.StatusBlocked}, nil)
	assert.Equal(t, []string{"2"}, pageIDs(got))

	got = Filter(donors, models.DonorFilter{Status: models.StatusVerified}, nil)
	assert.Equal(t, []string{"1"}, pageIDs(got))
}

func TestFilterResultsSatisfyAllPredicates(t *testing.T) {
	donors := numbered(40)
	for i := range donors {
		donors[i].IsBlocked = i%3 == 0
		if i%4 == 0 {
			donors[i].VerificationStatus = models.VerificationVerified
		}
		if i%5 == 0 {
			donors[i].Availability = models.AvailabilityNotAvailable
		}
	}
	statuses := []models.DonorStatusFilter{models.StatusAll, models.StatusActive, models.StatusBlocked, models.StatusVerified, models.StatusUnverified, models.StatusAvailable}
	groups := append([]string{"All"}, "A+", "O-", "AB-")
	terms := []string{"", "donor 1", "555000"}

	for _, status := range statuses {
		for _, group := range groups {
			for _, term := range terms {
				filter := models.DonorFilter{Search: term, Status: status, BloodGroup: group}
				got := Filter(donors, filter, nil)
				assert.LessOrEqual(t, len(got), len(donors))
				for _, d := range got {
					assert.True(t, matchesSearch(d, lower(term)))
					assert.True(t, matchesStatus(d, status, nil, nil))
					assert.True(t, d.BloodGroup.Matches(group))
				}
			}
		}
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func TestSortIsCaseInsensitiveAndStable(t *testing.T) {
	donors := []models.Donor{
		{ID: "1", Name: "bravo", BloodGroup: "O+"},
		{ID: "2", Name: "Alpha", BloodGroup: "A+"},
		{ID: "3", Name: "alpha", BloodGroup: "B+"},
		{ID: "4", Name: "Charlie", BloodGroup: "A+"},
	}

	Sort(donors, SortByName, SortAsc)
	assert.Equal(t, []string{"2", "3", "1", "4"}, pageIDs(donors))

	Sort(donors, SortByName, SortDesc)
	assert.Equal(t, []string{"4", "1", "2", "3"}, pageIDs(donors))

	Sort(donors, SortByBloodGroup, SortAsc)
	assert.Equal(t, []string{"4", "2", "3", "1"}, pageIDs(donors))
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	donors := []models.Donor{
		{ID: "new", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "old", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(24 * time.Hour)},
	}
	Sort(donors, SortByCreatedAt, SortAsc)
	assert.Equal(t, []string{"old", "mid", "new"}, pageIDs(donors))
}

func TestQueryDuplicatesUsesHealthCheck(t *testing.T) {
	donors := numbered(6)
	donors[1].Phone = "555-0100"
	donors[4].Phone = "555-0100"

	page := NewEngine(10, nil).Query(donors, models.DonorFilter{Status: models.StatusDuplicates}, nil)
	assert.Equal(t, []string{"d02", "d05"}, pageIDs(page.Items))
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Equal(t, []models.PageItem{{Page: 1}}, page.Window)
}

func TestSearchPublic(t *testing.T) {
	donors := []models.Donor{
		{ID: "1", Name: "A", BloodGroup: "O+", Address: "North Hills"},
		{ID: "2", Name: "B", BloodGroup: "O+", Address: "north hills", IsBlocked: true},
		{ID: "3", Name: "C", BloodGroup: "O-", Address: "North Hills"},
		{ID: "4", Name: "D", BloodGroup: "O+", Address: "Downtown"},
	}
	got, p := NewEngine(10, nil).SearchPublic(donors, models.PublicSearchFilter{BloodGroup: "O+", Location: "NORTH"})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 1, p.TotalCount)
}

func TestStatsAndReach(t *testing.T) {
	donors := []models.Donor{
		{ID: "1", BloodGroup: "O+", Availability: models.AvailabilityAvailable, VerificationStatus: models.VerificationVerified},
		{ID: "2", BloodGroup: "O+", Availability: models.AvailabilityAvailable, IsBlocked: true},
		{ID: "3", BloodGroup: "A-", Availability: models.AvailabilityNotAvailable},
		{ID: "4", BloodGroup: "A-", Availability: models.AvailabilityAvailable},
	}
	stats := Stats(donors)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Available)
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 1, stats.Verified)
	assert.Equal(t, 1, stats.ByGroup["O+"])
	assert.Equal(t, 2, stats.ByGroup["A-"])
	assert.Equal(t, 0, stats.ByGroup["AB+"])

	assert.Equal(t, 2, Reach(donors, "All"))
	assert.Equal(t, 1, Reach(donors, "O+"))
	assert.Equal(t, 1, Reach(donors, "A-"))
}

func TestRecovery(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, models.DonationRecovery{IsRecovered: true, Percent: 100}, Recovery("", now, 90))

	info := Recovery("2024-03-02", now, 90)
	assert.False(t, info.IsRecovered)
	assert.Equal(t, 60, info.DaysLeft)
	assert.Equal(t, 33, info.Percent)

	info = Recovery("2023-01-01", now, 90)
	assert.True(t, info.IsRecovered)
	assert.Equal(t, 0, info.DaysLeft)
	assert.Equal(t, 100, info.Percent)
}
