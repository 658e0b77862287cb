package codec

import (
	"fmt"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/pkg/export"
)

// Serialize renders donors as CSV using the given column schema.
func Serialize(donors []models.Donor, columns []Column) ([]byte, error) {
	if len(columns) == 0 {
		columns = ExportColumns
	}
	return export.NewCSVExporter().Render(Dataset(donors, columns))
}

// Dataset projects donors onto a tabular dataset keyed by column label.
func Dataset(donors []models.Donor, columns []Column) export.Dataset {
	rows := make([]map[string]string, 0, len(donors))
	for _, d := range donors {
		row := make(map[string]string, len(columns))
		for _, c := range columns {
			row[c.Label] = FieldValue(d, c.Key)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: Labels(columns), Rows: rows}
}

// templateExample is the sample row shipped with the import template.
var templateExample = map[string]string{
	FieldBloodGroup:         "O+",
	FieldAge:                "28",
	FieldIsBlocked:          "false",
	FieldReports:            "0",
	FieldGender:             "Male",
	FieldAvailability:       "Available",
	FieldVerificationStatus: "Verified",
	FieldLastDonationDate:   "2023-12-25",
	FieldLoginID:            "BDC-ID5522",
	FieldPassword:           "SECRET123",
	FieldUserType:           "Donor",
}

// TemplateDataset returns the header plus one example row covering every column.
func TemplateDataset() export.Dataset {
	row := make(map[string]string, len(Columns))
	for _, c := range Columns {
		if v, ok := templateExample[c.Key]; ok {
			row[c.Label] = v
			continue
		}
		row[c.Label] = fmt.Sprintf("Sample %s", c.Label)
	}
	return export.Dataset{Headers: Labels(Columns), Rows: []map[string]string{row}}
}

// Template renders the downloadable import template as CSV.
func Template() ([]byte, error) {
	return export.NewCSVExporter().Render(TemplateDataset())
}
