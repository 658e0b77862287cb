package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/codec"
	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/query"
	appErrors "github.com/noah-isme/donor-registry-api/pkg/errors"
	"github.com/noah-isme/donor-registry-api/pkg/export"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// pdfColumns keeps the registry PDF readable on a landscape page.
var pdfColumns = []codec.Column{
	{Label: "User ID", Key: codec.FieldLoginID},
	{Label: "Name", Key: codec.FieldName},
	{Label: "Blood Group", Key: codec.FieldBloodGroup},
	{Label: "Phone Number", Key: codec.FieldPhone},
	{Label: "Address", Key: codec.FieldAddress},
	{Label: "Availability", Key: codec.FieldAvailability},
	{Label: "Verification", Key: codec.FieldVerificationStatus},
	{Label: "Last Donation", Key: codec.FieldLastDonationDate},
}

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Count       int
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDossier(d export.Dossier) ([]byte, error)
}

// ExportService renders registry downloads. Every export is audited.
type ExportService struct {
	registry     *RegistryService
	audit        *AuditService
	csv          datasetRenderer
	xlsx         datasetRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
	recoveryDays int
	now          func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(registry *RegistryService, audit *AuditService, logger *zap.Logger, recoveryDays int, csv, xlsx datasetRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("Donors")
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if recoveryDays <= 0 {
		recoveryDays = 90
	}
	return &ExportService{
		registry:     registry,
		audit:        audit,
		csv:          csv,
		xlsx:         xlsx,
		pdf:          pdf,
		logger:       logger,
		recoveryDays: recoveryDays,
		now:          time.Now,
	}
}

// Registry renders the selected donors, or the whole registry when ids is empty, in a
// tabular format.
func (s *ExportService) Registry(ctx context.Context, format string, ids []string, actor string) (*ExportFile, error) {
	donors, err := s.selection(ctx, ids)
	if err != nil {
		return nil, err
	}
	stamp := s.now().UTC().Format("20060102")

	var (
		file   *ExportFile
		action string
	)
	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, rerr := s.csv.Render(codec.Dataset(donors, codec.ExportColumns))
		err = rerr
		file = &ExportFile{FileName: "donor_registry_" + stamp + ".csv", ContentType: contentTypeCSV, Data: data}
		action = models.AuditActionBulkCSVExport
	case FormatXLSX:
		data, rerr := s.xlsx.Render(codec.Dataset(donors, codec.ExportColumns))
		err = rerr
		file = &ExportFile{FileName: "donor_registry_" + stamp + ".xlsx", ContentType: contentTypeXLSX, Data: data}
		action = models.AuditActionBulkXLSXExport
	case FormatPDF:
		data, rerr := s.pdf.Render(codec.Dataset(donors, pdfColumns), "Blood Donor Registry")
		err = rerr
		file = &ExportFile{FileName: "donor_registry_" + stamp + ".pdf", ContentType: contentTypePDF, Data: data}
		action = models.AuditActionBulkPDFExport
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("failed to render registry export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Count = len(donors)

	s.audit.Record(ctx, action, fmt.Sprintf("Exported %d records to %s.", len(donors), strings.ToUpper(formatOrCSV(format))), actor)
	return file, nil
}

// Backup renders the full registry as a pretty-printed JSON array.
func (s *ExportService) Backup(ctx context.Context, actor string) (*ExportFile, error) {
	donors, err := s.registry.Donors(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(donors, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	s.audit.Record(ctx, models.AuditActionGlobalJSONExport, "Full registry backup exported as JSON.", actor)
	return &ExportFile{
		FileName:    "registry_backup_" + s.now().UTC().Format("20060102") + ".json",
		ContentType: contentTypeJSON,
		Data:        data,
		Count:       len(donors),
	}, nil
}

// Dossier renders one donor as JSON or as a PDF dossier.
func (s *ExportService) Dossier(ctx context.Context, id, format, actor string) (*ExportFile, error) {
	donors, err := s.selection(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	donor := donors[0]

	file := &ExportFile{Count: 1}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		file.Data, err = json.MarshalIndent(donor, "", "  ")
		file.FileName = "donor_" + donor.LoginID + ".json"
		file.ContentType = contentTypeJSON
	case FormatPDF:
		file.Data, err = s.pdf.RenderDossier(s.dossier(donor))
		file.FileName = "donor_" + donor.LoginID + ".pdf"
		file.ContentType = contentTypePDF
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported dossier format %q", format))
	}
	if err != nil {
		s.logger.Error("failed to render donor dossier", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render dossier")
	}

	s.audit.Record(ctx, models.AuditActionSingleNodeExport, fmt.Sprintf("Exported dossier for %s (%s).", donor.Name, donor.LoginID), actor)
	return file, nil
}

// Template renders the import template with one example row.
func (s *ExportService) Template(format string) (*ExportFile, error) {
	var (
		data []byte
		err  error
		file = &ExportFile{Count: 1}
	)
	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err = s.csv.Render(codec.TemplateDataset())
		file.FileName, file.ContentType = "donor_import_template.csv", contentTypeCSV
	case FormatXLSX:
		data, err = s.xlsx.Render(codec.TemplateDataset())
		file.FileName, file.ContentType = "donor_import_template.xlsx", contentTypeXLSX
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported template format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render template")
	}
	file.Data = data
	return file, nil
}

func (s *ExportService) selection(ctx context.Context, ids []string) ([]models.Donor, error) {
	donors, err := s.registry.Donors(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return donors, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := make([]models.Donor, 0, len(ids))
	for _, d := range donors {
		if wanted[d.ID] {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not found")
	}
	return selected, nil
}

func (s *ExportService) dossier(d models.Donor) export.Dossier {
	recovery := query.Recovery(d.LastDonationDate, s.now(), s.recoveryDays)
	recoveryText := "Recovered"
	if !recovery.IsRecovered {
		recoveryText = fmt.Sprintf("%d days left (%d%%)", recovery.DaysLeft, recovery.Percent)
	}
	blocked := "No"
	if d.IsBlocked {
		blocked = "Yes"
	}
	return export.Dossier{
		Title:    "Donor Dossier",
		Subtitle: fmt.Sprintf("%s (%s)", d.Name, d.LoginID),
		Sections: []export.DossierSection{
			{Heading: "Identity", Fields: []export.DossierField{
				{Label: "Record ID", Value: d.ID},
				{Label: "User ID", Value: d.LoginID},
				{Label: "Name", Value: d.Name},
				{Label: "Age", Value: strconv.Itoa(d.Age)},
				{Label: "Gender", Value: d.Gender},
				{Label: "User Type", Value: string(d.UserType)},
			}},
			{Heading: "Contact", Fields: []export.DossierField{
				{Label: "Phone Number", Value: d.Phone},
				{Label: "Address", Value: d.Address},
				{Label: "Occupation", Value: d.Occupation},
				{Label: "Designation", Value: d.Designation},
				{Label: "Department", Value: d.Department},
			}},
			{Heading: "Donation", Fields: []export.DossierField{
				{Label: "Blood Group", Value: string(d.BloodGroup)},
				{Label: "Availability", Value: string(d.Availability)},
				{Label: "Last Donation", Value: d.LastDonationDate},
				{Label: "Recovery", Value: recoveryText},
			}},
			{Heading: "Administration", Fields: []export.DossierField{
				{Label: "Verification", Value: string(d.VerificationStatus)},
				{Label: "Blocked", Value: blocked},
				{Label: "Reports", Value: strconv.Itoa(d.Reports)},
				{Label: "Internal Notes", Value: d.InternalNotes},
				{Label: "Registered", Value: codec.FormatTimestamp(d.CreatedAt)},
			}},
		},
		Footer: "Generated " + s.now().UTC().Format(time.RFC1123),
	}
}

func formatOrCSV(format string) string {
	if format == "" {
		return FormatCSV
	}
	return format
}
