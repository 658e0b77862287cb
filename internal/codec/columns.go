package codec

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// Column binds a CSV header label to a donor field key. Labels are the file contract.
type Column struct {
	Label string
	Key   string
}

// Field keys understood by the codec.
const (
	FieldID                 = "id"
	FieldLoginID            = "loginId"
	FieldPassword           = "password"
	FieldName               = "name"
	FieldAge                = "age"
	FieldGender             = "gender"
	FieldOccupation         = "occupation"
	FieldDesignation        = "designation"
	FieldDepartment         = "department"
	FieldPhone              = "phone"
	FieldBloodGroup         = "bloodGroup"
	FieldAddress            = "address"
	FieldAvailability       = "availability"
	FieldVerificationStatus = "verificationStatus"
	FieldLastDonationDate   = "lastDonationDate"
	FieldIsBlocked          = "isBlocked"
	FieldReports            = "reports"
	FieldCreatedAt          = "createdAt"
	FieldInternalNotes      = "internalNotes"
	FieldUserType           = "userType"
)

// Columns is the full registry schema in file order. Parse and Serialize agree on it so a
// batch survives a round trip.
var Columns = []Column{
	{Label: "ID", Key: FieldID},
	{Label: "User ID", Key: FieldLoginID},
	{Label: "Password", Key: FieldPassword},
	{Label: "Name", Key: FieldName},
	{Label: "Age", Key: FieldAge},
	{Label: "Gender", Key: FieldGender},
	{Label: "Occupation", Key: FieldOccupation},
	{Label: "Designation", Key: FieldDesignation},
	{Label: "Department", Key: FieldDepartment},
	{Label: "Phone Number", Key: FieldPhone},
	{Label: "Blood Group", Key: FieldBloodGroup},
	{Label: "Address", Key: FieldAddress},
	{Label: "Availability", Key: FieldAvailability},
	{Label: "Verified Status", Key: FieldVerificationStatus},
	{Label: "Last Donation Date", Key: FieldLastDonationDate},
	{Label: "Blocked", Key: FieldIsBlocked},
	{Label: "Reports", Key: FieldReports},
	{Label: "Created At", Key: FieldCreatedAt},
	{Label: "Internal Notes", Key: FieldInternalNotes},
	{Label: "Access Type", Key: FieldUserType},
}

// ExportColumns is the schema used for registry exports. Credentials never leave the store.
var ExportColumns = withoutKeys(Columns, FieldPassword)

// Labels returns the header labels of cols.
func Labels(cols []Column) []string {
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	return labels
}

func withoutKeys(cols []Column, keys ...string) []Column {
	out := make([]Column, 0, len(cols))
outer:
	for _, c := range cols {
		for _, k := range keys {
			if c.Key == k {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}

// headerIndex resolves header cells to field keys. Labels match case-insensitively and the
// raw field keys are accepted as aliases.
var headerIndex = func() map[string]string {
	idx := make(map[string]string, len(Columns)*2)
	for _, c := range Columns {
		idx[strings.ToLower(c.Label)] = c.Key
		idx[strings.ToLower(c.Key)] = c.Key
	}
	return idx
}()

func keyForHeader(label string) (string, bool) {
	label = strings.TrimPrefix(strings.TrimSpace(label), "\ufeff")
	key, ok := headerIndex[strings.ToLower(label)]
	return key, ok
}

// timestampLayout matches the millisecond ISO-8601 form the registry has always written.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way exports write it. The zero time renders empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps and bare dates.
func ParseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FieldValue stringifies one donor field for CSV output.
func FieldValue(d models.Donor, key string) string {
	switch key {
	case FieldID:
		return d.ID
	case FieldLoginID:
		return d.LoginID
	case FieldPassword:
		return d.Password
	case FieldName:
		return d.Name
	case FieldAge:
		return strconv.Itoa(d.Age)
	case FieldGender:
		return d.Gender
	case FieldOccupation:
		return d.Occupation
	case FieldDesignation:
		return d.Designation
	case FieldDepartment:
		return d.Department
	case FieldPhone:
		return d.Phone
	case FieldBloodGroup:
		return string(d.BloodGroup)
	case FieldAddress:
		return d.Address
	case FieldAvailability:
		return string(d.Availability)
	case FieldVerificationStatus:
		return string(d.VerificationStatus)
	case FieldLastDonationDate:
		return d.LastDonationDate
	case FieldIsBlocked:
		return strconv.FormatBool(d.IsBlocked)
	case FieldReports:
		return strconv.Itoa(d.Reports)
	case FieldCreatedAt:
		return FormatTimestamp(d.CreatedAt)
	case FieldInternalNotes:
		return d.InternalNotes
	case FieldUserType:
		return string(d.UserType)
	}
	return ""
}

// setField assigns a raw cell to the donor. age and reports fall back to 0 and isBlocked is
// true only for a case-insensitive "true". createdAt is handled by the parser.
func setField(d *models.Donor, key, raw string) {
	switch key {
	case FieldID:
		d.ID = raw
	case FieldLoginID:
		d.LoginID = raw
	case FieldPassword:
		d.Password = raw
	case FieldName:
		d.Name = raw
	case FieldAge:
		d.Age = leadingInt(raw)
	case FieldGender:
		d.Gender = raw
	case FieldOccupation:
		d.Occupation = raw
	case FieldDesignation:
		d.Designation = raw
	case FieldDepartment:
		d.Department = raw
	case FieldPhone:
		d.Phone = raw
	case FieldBloodGroup:
		d.BloodGroup = models.BloodGroup(raw)
	case FieldAddress:
		d.Address = raw
	case FieldAvailability:
		d.Availability = models.Availability(raw)
	case FieldVerificationStatus:
		d.VerificationStatus = models.VerificationStatus(raw)
	case FieldLastDonationDate:
		d.LastDonationDate = raw
	case FieldIsBlocked:
		d.IsBlocked = strings.EqualFold(raw, "true")
	case FieldReports:
		d.Reports = leadingInt(raw)
	case FieldInternalNotes:
		d.InternalNotes = raw
	case FieldUserType:
		d.UserType = models.UserType(raw)
	}
}

// leadingInt reads an optionally signed integer prefix ("28 years" is 28) and returns 0
// when there is none.
func leadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return n
}
