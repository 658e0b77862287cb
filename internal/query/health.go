package query

import (
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// HealthCheck runs the data-quality pass. A phone number seen twice flags every record that
// carries it, including the first one; phones are compared trimmed and blank ones never count. A record is incomplete when
// blood group, phone or address is empty or the name is shorter than three characters.
func HealthCheck(donors []models.Donor) models.HealthReport {
	report := models.HealthReport{
		DuplicateIDs:  []string{},
		IncompleteIDs: []string{},
		Total:         len(donors),
	}

	firstSeen := make(map[string]string, len(donors))
	flagged := make(map[string]bool)
	flag := func(id string) {
		if !flagged[id] {
			flagged[id] = true
			report.DuplicateIDs = append(report.DuplicateIDs, id)
		}
	}

	for _, d := range donors {
		if phone := strings.TrimSpace(d.Phone); phone != "" {
			if original, ok := firstSeen[phone]; ok {
				flag(d.ID)
				flag(original)
			} else {
				firstSeen[phone] = d.ID
			}
		}

		if isIncomplete(d) {
			report.IncompleteIDs = append(report.IncompleteIDs, d.ID)
		}
		if !d.IsVerified() {
			report.UnverifiedCount++
		}
	}
	return report
}

func isIncomplete(d models.Donor) bool {
	return d.BloodGroup == "" ||
		strings.TrimSpace(d.Phone) == "" ||
		strings.TrimSpace(d.Address) == "" ||
		utf8.RuneCountInString(d.Name) < 3
}

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}
