package codec

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	return NewParser(
		WithClock(func() time.Time { return fixedNow }),
		WithTokens(NewTokens(zeroReader{})),
	)
}

func TestParseStagesOnlyRowsWithNameAndBloodGroup(t *testing.T) {
	text := "Name,Blood Group,Phone Number\n" +
		"Alice,A+,111\n" +
		",B+,222\n" +
		"Bob,,333\n" +
		"Carol,O-,444\n"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Alice", res.Rows[0].Donor.Name)
	assert.Equal(t, 1, res.Rows[0].Row)
	assert.Equal(t, "Carol", res.Rows[1].Donor.Name)
	assert.Equal(t, 4, res.Rows[1].Row)
	assert.Empty(t, res.Issues)
}

func TestParseDropsRowMissingBloodGroupSilently(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group\nDana,\n")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 1, res.Dropped)
}

func TestParseAgeOutsideRangeIsWarning(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group,Age\nEve,AB+,70\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 70, res.Rows[0].Donor.Age)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, models.ValidationIssue{
		Row:      1,
		Field:    FieldAge,
		Message:  "Age (70) outside 18-65 range",
		Severity: models.IssueWarning,
	}, res.Issues[0])
}

func TestParseUnsupportedBloodGroupIsError(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group,Age\nFrank,C+,0\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, models.IssueError, res.Issues[0].Severity)
	assert.Equal(t, FieldBloodGroup, res.Issues[0].Field)
}

func TestParseFormatErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"blank lines": "\n\r\n  \n",
		"header only": "Name,Blood Group\n\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestParser().Parse(text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrFormat))
		})
	}
}

func TestParseHeaderWithOnlyDroppedRowsIsEmpty(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group\n,\n")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestParseAppliesDefaults(t *testing.T) {
	res, err := NewParser(WithClock(func() time.Time { return fixedNow })).Parse("Name,Blood Group\nGina,B-\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	d := res.Rows[0].Donor
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-z]{9}$`), d.ID)
	assert.Regexp(t, regexp.MustCompile(`^IMP-[1-9][0-9]{3}$`), d.LoginID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), d.Password)
	assert.Equal(t, fixedNow, d.CreatedAt)
	assert.Equal(t, models.AvailabilityAvailable, d.Availability)
	assert.Equal(t, models.VerificationUnverified, d.VerificationStatus)
	assert.Equal(t, models.UserTypeDonor, d.UserType)
	assert.ElementsMatch(t, []string{FieldName, FieldBloodGroup}, res.Rows[0].Fields)
	assert.ElementsMatch(t, []string{FieldID, FieldCreatedAt, FieldLoginID, FieldPassword, FieldAvailability, FieldVerificationStatus, FieldUserType}, res.Rows[0].Defaulted)
}

func TestParseDeterministicTokens(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group\nHal,O+\n")
	require.NoError(t, err)
	d := res.Rows[0].Donor
	assert.Equal(t, "000000000", d.ID)
	assert.Equal(t, "IMP-1000", d.LoginID)
	assert.Equal(t, "000000", d.Password)
}

func TestParseQuotedFieldsAndLineEndings(t *testing.T) {
	text := "Name,Blood Group,Address,Internal Notes\r\n" +
		"\"Ivy, Jr.\",A-,\"12 \"\"Oak\"\" Lane\",\"line one\nline two\"\r\n"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	d := res.Rows[0].Donor
	assert.Equal(t, "Ivy, Jr.", d.Name)
	assert.Equal(t, `12 "Oak" Lane`, d.Address)
	assert.Equal(t, "line one\nline two", d.InternalNotes)
}

func TestParseUnclosedQuoteDamagesOnlyItsRow(t *testing.T) {
	text := "ID,Name,Blood Group\n" +
		"a1,\"Ali,A+\n" +
		"a2,Bob,B+\n" +
		"a3,Cara,O+\n"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Bob", res.Rows[0].Donor.Name)
	assert.Equal(t, 2, res.Rows[0].Row)
	assert.Equal(t, "Cara", res.Rows[1].Donor.Name)
	assert.Equal(t, 3, res.Rows[1].Row)
	assert.Equal(t, 1, res.Dropped)
}

func TestParseMultiLineFieldBeforeUnclosedQuote(t *testing.T) {
	text := "Name,Blood Group,Internal Notes\n" +
		"Ivy,A-,\"first\nsecond\"\n" +
		"\"Jon,B+\n" +
		"Kim,O+,ok\n"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "first\nsecond", res.Rows[0].Donor.InternalNotes)
	assert.Equal(t, "Kim", res.Rows[1].Donor.Name)
}

func TestParseTypedColumnsAndUnknownHeaders(t *testing.T) {
	text := "Name,Blood Group,Age,Reports,Blocked,Favourite Colour,Created At\n" +
		"Jay,O+,abc,3,TRUE,blue,2024-01-02T03:04:05.000Z\n" +
		"Kim,O+,28 years,x,yes,red,not-a-date\n"

	res, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	jay := res.Rows[0].Donor
	assert.Equal(t, 0, jay.Age)
	assert.Equal(t, 3, jay.Reports)
	assert.True(t, jay.IsBlocked)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), jay.CreatedAt)

	kim := res.Rows[1].Donor
	assert.Equal(t, 28, kim.Age)
	assert.Equal(t, 0, kim.Reports)
	assert.False(t, kim.IsBlocked)
	assert.Equal(t, fixedNow, kim.CreatedAt)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, FieldCreatedAt, res.Issues[0].Field)
	assert.Equal(t, 2, res.Issues[0].Row)
}

func TestParseShortRecordsLeaveMissingColumnsEmpty(t *testing.T) {
	res, err := newTestParser().Parse("Name,Blood Group,Phone Number,Address\nLee,B+\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Empty(t, res.Rows[0].Donor.Phone)
	assert.Empty(t, res.Rows[0].Donor.Address)
}

func TestSerializeEscapesSpecialCharacters(t *testing.T) {
	donors := []models.Donor{{
		ID:            "abc",
		Name:          `Mo "Big" Smith`,
		Address:       "1 Main St, Springfield",
		InternalNotes: "first\nsecond",
	}}
	cols := []Column{
		{Label: "ID", Key: FieldID},
		{Label: "Name", Key: FieldName},
		{Label: "Address", Key: FieldAddress},
		{Label: "Internal Notes", Key: FieldInternalNotes},
	}

	out, err := Serialize(donors, cols)
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Address,Internal Notes\n"+
		`abc,"Mo ""Big"" Smith","1 Main St, Springfield","first`+"\n"+`second"`+"\n", string(out))
}

func TestSerializeExportColumnsOmitPassword(t *testing.T) {
	out, err := Serialize([]models.Donor{{ID: "1", Name: "Ned", Password: "SECRET"}}, ExportColumns)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Password")
	assert.NotContains(t, string(out), "SECRET")
	assert.Len(t, ExportColumns, len(Columns)-1)
}

func TestRoundTripPreservesFieldValues(t *testing.T) {
	text := strings.Join([]string{
		strings.Join(Labels(Columns), ","),
		"id000001,BDC-ID1234,PASS01,Olga Ivanova,34,Female,Nurse,Senior,Cardiology,+1555010001,AB-,North Hills,Not Available,Verified,2024-01-15,false,2,2023-05-06T07:08:09.000Z,prefers mornings,Donor",
		"id000002,IMP-4321,PASS02,Pete Park,45,Male,Driver,,Logistics,+1555010002,O+,Harbor Rd,Available,Unverified,,true,0,2023-06-07T08:09:10.000Z,,User",
	}, "\n")

	parser := newTestParser()
	first, err := parser.Parse(text)
	require.NoError(t, err)
	require.Len(t, first.Rows, 2)

	out, err := Serialize(first.Donors(), Columns)
	require.NoError(t, err)

	second, err := parser.Parse(string(out))
	require.NoError(t, err)
	assert.Equal(t, first.Donors(), second.Donors())
	assert.Equal(t, "Olga Ivanova", second.Rows[0].Donor.Name)
	assert.Equal(t, models.AvailabilityNotAvailable, second.Rows[0].Donor.Availability)
	assert.True(t, second.Rows[1].Donor.IsBlocked)
}

func TestTemplateParsesBackIntoOneRow(t *testing.T) {
	out, err := Template()
	require.NoError(t, err)

	res, err := newTestParser().Parse(string(out))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	d := res.Rows[0].Donor
	assert.Equal(t, models.BloodGroupOPos, d.BloodGroup)
	assert.Equal(t, 28, d.Age)
	assert.Equal(t, "BDC-ID5522", d.LoginID)
	assert.Equal(t, "Sample Name", d.Name)
}

func TestTokensLoginIDPrefixes(t *testing.T) {
	tokens := NewTokens(zeroReader{})
	assert.Equal(t, "IMP-1000", tokens.LoginID("IMP"))
	assert.Equal(t, "BDC-ID1000", tokens.LoginID("BDC-ID"))
	assert.Equal(t, "1000", tokens.LoginID(""))
}
