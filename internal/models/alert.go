package models

import "time"

// AlertSeverity ranks how urgently an emergency request needs donors.
type AlertSeverity string

const (
	SeverityStandard AlertSeverity = "Standard"
	SeverityUrgent   AlertSeverity = "Urgent"
	SeverityCritical AlertSeverity = "Critical"
)

// EmergencyAlert is a broadcast blood request. Alerts never expire; they are removed by terminate.
type EmergencyAlert struct {
	ID           string        `db:"id" json:"id"`
	IsActive     bool          `db:"is_active" json:"isActive"`
	Severity     AlertSeverity `db:"severity" json:"severity"`
	BloodGroup   string        `db:"blood_group" json:"bloodGroup"`
	HospitalName string        `db:"hospital_name" json:"hospitalName"`
	Message      string        `db:"message" json:"message"`
	Link         string        `db:"link" json:"link,omitempty"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

// BroadcastRequest is the payload for dispatching an alert.
type BroadcastRequest struct {
	Severity     AlertSeverity `json:"severity" validate:"required,oneof=Standard Urgent Critical"`
	BloodGroup   string        `json:"bloodGroup" validate:"required,bloodgroup_or_all"`
	HospitalName string        `json:"hospitalName" validate:"required"`
	Message      string        `json:"message" validate:"required"`
	Link         string        `json:"link" validate:"omitempty,url"`
	TemplateID   string        `json:"templateId"`
}

// BroadcastResult reports the dispatched alert and how many donors it reaches.
type BroadcastResult struct {
	Alert EmergencyAlert `json:"alert"`
	Reach int            `json:"reach"`
}

// AlertTemplate pre-fills a broadcast draft.
type AlertTemplate struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// AlertTemplates is the fixed template catalogue.
var AlertTemplates = []AlertTemplate{
	{
		ID:       "t1",
		Name:     "Accident Emergency",
		Severity: SeverityCritical,
		Message:  "Multiple trauma victims admitted. Immediate blood support needed for surgery. Please respond if you are nearby.",
	},
	{
		ID:       "t2",
		Name:     "General Shortage",
		Severity: SeverityUrgent,
		Message:  "The local blood bank is running low on this specific group. We invite healthy donors to visit the facility today.",
	},
	{
		ID:       "t3",
		Name:     "Scheduled Surgery",
		Severity: SeverityStandard,
		Message:  "Planned operation for tomorrow morning. We are seeking 2 units of this blood group for backup.",
	},
}

// FindAlertTemplate returns the template with the given id.
func FindAlertTemplate(id string) (AlertTemplate, bool) {
	for _, t := range AlertTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return AlertTemplate{}, false
}

// DefaultAlert is seeded into an alert collection that has never been written.
func DefaultAlert(now time.Time) EmergencyAlert {
	return EmergencyAlert{
		ID:           "sys-alert-001",
		IsActive:     true,
		Severity:     SeverityCritical,
		BloodGroup:   string(BloodGroupONeg),
		HospitalName: "City General Hospital",
		Message:      "Trauma recovery protocol initiated. O- donors required for surgery backup.",
		UpdatedAt:    now,
	}
}
