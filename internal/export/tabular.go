package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// csvHeaders defines the tabular column order.
var csvHeaders = []string{
	"site_url",
	"email",
	"phones",
	"facebook",
	"instagram",
	"linkedin",
	"twitter",
	"has_contact_form",
	"platform_detected",
	"detection_method",
	"extracted_at",
}

// ExportTabular writes one row per (site, email) pair. A site with no emails
// still emits a single row with an empty email column, so every record is
// visible in the sheet.
func (e *FileExporter) ExportTabular(records []*prospect.Record) (string, error) {
	path, err := e.path("contacts", "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("failed to write csv headers: %w", err)
	}

	for _, r := range records {
		emails := []string{""}
		var phones, extractedAt string
		social := map[string]string{}
		hasForm := false

		if r.Contact != nil {
			if len(r.Contact.Emails) > 0 {
				emails = r.Contact.Emails
			}
			phones = strings.Join(r.Contact.Phones, "; ")
			social = r.Contact.SocialMedia
			hasForm = r.Contact.HasContactForm()
			if !r.Contact.ExtractedAt.IsZero() {
				extractedAt = r.Contact.ExtractedAt.Format(time.RFC3339)
			}
		}

		for _, email := range emails {
			row := []string{
				r.URL,
				email,
				phones,
				social["facebook"],
				social["instagram"],
				social["linkedin"],
				social["twitter"],
				yesNo(hasForm),
				yesNo(r.PlatformDetected()),
				r.DetectionMethod(),
				extractedAt,
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	e.Logger.Info("tabular export written", "path", path, "records", len(records))
	return path, nil
}
