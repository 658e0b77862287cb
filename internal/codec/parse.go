package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noah-isme/donor-registry-api/internal/models"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
)

// Result is the outcome of parsing an import file.
type Result struct {
	Rows    []models.StagedDonor
	Issues  []models.ValidationIssue
	Dropped int
}

// Donors returns the staged records in file order.
func (r *Result) Donors() []models.Donor {
	out := make([]models.Donor, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Donor
	}
	return out
}

// Parser turns CSV text into staged donor records.
type Parser struct {
	loginIDPrefix string
	now           func() time.Time
	tokens        *Tokens
}

// Option customises a Parser.
type Option func(*Parser)

// WithLoginIDPrefix overrides the prefix used for generated login ids.
func WithLoginIDPrefix(prefix string) Option {
	return func(p *Parser) {
		if prefix != "" {
			p.loginIDPrefix = prefix
		}
	}
}

// WithClock overrides the clock used for defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTokens overrides the id and credential generator.
func WithTokens(t *Tokens) Option {
	return func(p *Parser) {
		if t != nil {
			p.tokens = t
		}
	}
}

// NewParser builds a parser with import defaults.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		loginIDPrefix: "IMP",
		now:           func() time.Time { return time.Now().UTC() },
		tokens:        NewTokens(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text with the default parser.
func Parse(text string) (*Result, error) {
	return NewParser().Parse(text)
}

// Parse reads a header row followed by data rows. Rows without both a name and a blood group
// are dropped without an issue. Validation issues never prevent a row from being staged.
func (p *Parser) Parse(text string) (*Result, error) {
	records, err := readRecords(text)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, appErrors.Clone(appErrors.ErrFormat, "file structure invalid: missing headers")
	}

	keys := make([]string, len(records[0]))
	for i, label := range records[0] {
		if key, ok := keyForHeader(label); ok {
			keys[i] = key
		}
	}

	result := &Result{Rows: []models.StagedDonor{}, Issues: []models.ValidationIssue{}}
	for i, record := range records[1:] {
		row := i + 1
		staged, issues, ok := p.stageRow(row, keys, record)
		if !ok {
			result.Dropped++
			continue
		}
		result.Rows = append(result.Rows, staged)
		result.Issues = append(result.Issues, issues...)
	}
	return result, nil
}

func (p *Parser) stageRow(row int, keys, record []string) (models.StagedDonor, []models.ValidationIssue, bool) {
	var (
		donor    models.Donor
		supplied []string
		issues   []models.ValidationIssue
		seen     = make(map[string]bool, len(keys))
	)

	for idx, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		var raw string
		if idx < len(record) {
			raw = strings.TrimSpace(record[idx])
		}
		if raw == "" {
			continue
		}
		if key == FieldCreatedAt {
			ts, ok := ParseTimestamp(raw)
			if !ok {
				issues = append(issues, models.ValidationIssue{
					Row:      row,
					Field:    FieldCreatedAt,
					Message:  fmt.Sprintf("Unreadable timestamp (%s), using import time", raw),
					Severity: models.IssueWarning,
				})
				continue
			}
			donor.CreatedAt = ts
		} else {
			setField(&donor, key, raw)
		}
		supplied = append(supplied, key)
	}

	if donor.Name == "" || donor.BloodGroup == "" {
		return models.StagedDonor{}, nil, false
	}

	if !donor.BloodGroup.Valid() {
		issues = append(issues, models.ValidationIssue{
			Row:      row,
			Field:    FieldBloodGroup,
			Message:  fmt.Sprintf("Unsupported blood group: %s", donor.BloodGroup),
			Severity: models.IssueError,
		})
	}
	if donor.Age != 0 && (donor.Age < 18 || donor.Age > 65) {
		issues = append(issues, models.ValidationIssue{
			Row:      row,
			Field:    FieldAge,
			Message:  fmt.Sprintf("Age (%d) outside 18-65 range", donor.Age),
			Severity: models.IssueWarning,
		})
	}

	defaulted := p.applyDefaults(&donor)
	return models.StagedDonor{Row: row, Donor: donor, Fields: supplied, Defaulted: defaulted}, issues, true
}

// applyDefaults fills the fields a staged row must carry and returns the keys it filled.
func (p *Parser) applyDefaults(d *models.Donor) []string {
	var filled []string
	if d.ID == "" {
		d.ID = p.tokens.ID()
		filled = append(filled, FieldID)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = p.now()
		filled = append(filled, FieldCreatedAt)
	}
	if d.LoginID == "" {
		d.LoginID = p.tokens.LoginID(p.loginIDPrefix)
		filled = append(filled, FieldLoginID)
	}
	if d.Password == "" {
		d.Password = p.tokens.Password()
		filled = append(filled, FieldPassword)
	}
	if d.Availability == "" {
		d.Availability = models.AvailabilityAvailable
		filled = append(filled, FieldAvailability)
	}
	if d.VerificationStatus == "" {
		d.VerificationStatus = models.VerificationUnverified
		filled = append(filled, FieldVerificationStatus)
	}
	if d.UserType == "" {
		d.UserType = models.UserTypeDonor
		filled = append(filled, FieldUserType)
	}
	return filled
}

// readRecords tokenises text into records, dropping blank lines. Quoted fields may contain
// commas, doubled quotes and line breaks. A quote left open until the end of the input only
// damages its own row: from that row onward every line is a record of its own.
func readRecords(text string) ([][]string, error) {
	var records [][]string
	for _, chunk := range splitRecords(text) {
		reader := csv.NewReader(strings.NewReader(chunk))
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, "file structure invalid: unreadable csv")
			}
			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// splitRecords cuts text at line breaks that sit outside quotes.
func splitRecords(text string) []string {
	var (
		chunks   []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				chunks = append(chunks, text[start:i+1])
				start = i + 1
			}
		}
	}
	rest := text[start:]
	if rest == "" {
		return chunks
	}
	if !inQuotes {
		return append(chunks, rest)
	}
	for _, line := range strings.SplitAfter(rest, "\n") {
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	return chunks
}
