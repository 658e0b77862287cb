// Package query computes filtered, sorted and paginated views over the donor registry along
// with the derived health and statistics reports.
package query

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/models"
)

// Sort keys accepted by Sort.
const (
	SortByName         = "name"
	SortByBloodGroup   = "bloodGroup"
	SortByCreatedAt    = "createdAt"
	SortByAvailability = "availability"
)

// Sort orders accepted by Sort.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Engine applies the registry query rules.
type Engine struct {
	defaultPageSize int
	pageSizes       map[int]bool
}

// NewEngine returns an engine accepting the given page sizes. Any other size falls back to
// defaultPageSize.
func NewEngine(defaultPageSize int, allowedPageSizes []int) *Engine {
	if len(allowedPageSizes) == 0 {
		allowedPageSizes = []int{5, 10, 20, 50}
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	sizes := make(map[int]bool, len(allowedPageSizes)+1)
	for _, s := range allowedPageSizes {
		sizes[s] = true
	}
	sizes[defaultPageSize] = true
	return &Engine{defaultPageSize: defaultPageSize, pageSizes: sizes}
}

// PageSize normalises a requested page size.
func (e *Engine) PageSize(size int) int {
	if e.pageSizes[size] {
		return size
	}
	return e.defaultPageSize
}

// Query filters, sorts and paginates donors. The health report is computed only when the
// status filter needs it and report is nil.
func (e *Engine) Query(donors []models.Donor, filter models.DonorFilter, report *models.HealthReport) models.DonorPage {
	if report == nil && (filter.Status == models.StatusDuplicates || filter.Status == models.StatusIncomplete) {
		r := HealthCheck(donors)
		report = &r
	}
	matched := Filter(donors, filter, report)
	Sort(matched, filter.SortBy, filter.SortOrder)
	items, pagination := e.Paginate(matched, filter.Page, filter.PageSize)
	return models.DonorPage{
		Items:      items,
		Pagination: pagination,
		Window:     PageWindow(pagination.Page, pagination.TotalPages),
	}
}

// Filter returns the donors matching every active predicate, in collection order.
func Filter(donors []models.Donor, filter models.DonorFilter, report *models.HealthReport) []models.Donor {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	var duplicates, incomplete idSet
	if report != nil {
		duplicates = newIDSet(report.DuplicateIDs)
		incomplete = newIDSet(report.IncompleteIDs)
	}

	out := make([]models.Donor, 0, len(donors))
	for _, d := range donors {
		if !matchesSearch(d, term) {
			continue
		}
		if !matchesStatus(d, filter.Status, duplicates, incomplete) {
			continue
		}
		if !d.BloodGroup.Matches(filter.BloodGroup) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesSearch(d models.Donor, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), term) ||
		strings.Contains(strings.ToLower(d.Phone), term) ||
		strings.Contains(strings.ToLower(d.LoginID), term)
}

func matchesStatus(d models.Donor, status models.DonorStatusFilter, duplicates, incomplete idSet) bool {
	switch status {
	case models.StatusBlocked:
		return d.IsBlocked
	case models.StatusActive:
		return !d.IsBlocked
	case models.StatusVerified:
		return d.VerificationStatus == models.VerificationVerified
	case models.StatusUnverified:
		return d.VerificationStatus == models.VerificationUnverified
	case models.StatusAvailable:
		return d.Availability == models.AvailabilityAvailable
	case models.StatusDuplicates:
		return duplicates.has(d.ID)
	case models.StatusIncomplete:
		return incomplete.has(d.ID)
	}
	return true
}

// Sort orders donors in place by the case-insensitive string form of key. Equal keys keep
// their collection order. Unknown keys sort by name.
func Sort(donors []models.Donor, key, order string) {
	desc := strings.EqualFold(order, SortDesc)
	keys := make([]string, len(donors))
	for i, d := range donors {
		keys[i] = sortValue(d, key)
	}
	idx := make([]int, len(donors))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if desc {
			return ka > kb
		}
		return ka < kb
	})
	sorted := make([]models.Donor, len(donors))
	for i, j := range idx {
		sorted[i] = donors[j]
	}
	copy(donors, sorted)
}

func sortValue(d models.Donor, key string) string {
	var v string
	switch key {
	case SortByBloodGroup:
		v = string(d.BloodGroup)
	case SortByCreatedAt:
		v = codec.FormatTimestamp(d.CreatedAt)
	case SortByAvailability:
		v = string(d.Availability)
	default:
		v = d.Name
	}
	return strings.ToLower(v)
}

// Paginate slices donors to the requested page. The page is clamped to
// [1, max(1, totalPages)] so a shrinking result never yields an empty middle page.
func (e *Engine) Paginate(donors []models.Donor, page, size int) ([]models.Donor, models.Pagination) {
	size = e.PageSize(size)
	total := len(donors)
	totalPages := (total + size - 1) / size
	page = ClampPage(page, totalPages)

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := min(start+size, total)
	return donors[start:end], models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// ClampPage bounds page to [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if upper := max(1, totalPages); page > upper {
		return upper
	}
	return page
}

// SearchPublic is the anonymous lookup: blocked donors are hidden, the blood group must match
// exactly unless it is All, and the location matches the address case-insensitively.
func (e *Engine) SearchPublic(donors []models.Donor, filter models.PublicSearchFilter) ([]models.PublicDonor, models.Pagination) {
	location := strings.ToLower(strings.TrimSpace(filter.Location))
	matched := make([]models.Donor, 0, len(donors))
	for _, d := range donors {
		if d.IsBlocked || !d.BloodGroup.Matches(filter.BloodGroup) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(d.Address), location) {
			continue
		}
		matched = append(matched, d)
	}
	page, pagination := e.Paginate(matched, filter.Page, filter.PageSize)
	out := make([]models.PublicDonor, len(page))
	for i, d := range page {
		out[i] = d.Public()
	}
	return out, pagination
}

// Stats aggregates headline counts. Group counts exclude blocked donors.
func Stats(donors []models.Donor) models.RegistryStats {
	stats := models.RegistryStats{Total: len(donors), ByGroup: make(map[string]int, len(models.BloodGroups))}
	for _, g := range models.BloodGroups {
		stats.ByGroup[string(g)] = 0
	}
	for _, d := range donors {
		if d.IsAvailable() {
			stats.Available++
		}
		if d.IsBlocked {
			stats.Blocked++
		} else if _, ok := stats.ByGroup[string(d.BloodGroup)]; ok {
			stats.ByGroup[string(d.BloodGroup)]++
		}
		if d.IsVerified() {
			stats.Verified++
		}
	}
	return stats
}

// Reach counts the donors an alert for bloodGroup would notify.
func Reach(donors []models.Donor, bloodGroup string) int {
	n := 0
	for _, d := range donors {
		if d.IsAvailable() && d.BloodGroup.Matches(bloodGroup) {
			n++
		}
	}
	return n
}

// Recovery reports progress through the post-donation recovery window of days days.
func Recovery(lastDonationDate string, now time.Time, days int) models.DonationRecovery {
	if days <= 0 {
		days = 90
	}
	info := models.DonationRecovery{LastDonationDate: lastDonationDate, IsRecovered: true, Percent: 100}
	last, ok := codec.ParseTimestamp(lastDonationDate)
	if !ok {
		return info
	}
	elapsed := int(now.Sub(last).Hours() / 24)
	info.IsRecovered = elapsed >= days
	info.DaysLeft = max(0, days-elapsed)
	info.Percent = min(100, max(0, elapsed*100/days))
	return info
}

// ParsePage converts a raw query value to a page number, defaulting to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
