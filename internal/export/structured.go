package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

type structuredDocument struct {
	ExportDate       string                   `json:"exportDate"`
	TotalSites       int                      `json:"totalSites"`
	TotalEmailsFound int                      `json:"totalEmailsFound"`
	Data             []prospect.ContactRecord `json:"data"`
}

// ExportStructured writes the full contact dataset as a single JSON document.
func (e *FileExporter) ExportStructured(records []*prospect.Record) (string, error) {
	path, err := e.path("contacts", "json")
	if err != nil {
		return "", err
	}

	doc := structuredDocument{
		ExportDate: e.now().Format(time.RFC3339),
		TotalSites: len(records),
		Data:       make([]prospect.ContactRecord, 0, len(records)),
	}
	for _, r := range records {
		if r.Contact == nil {
			continue
		}
		doc.TotalEmailsFound += len(r.Contact.Emails)
		doc.Data = append(doc.Data, *r.Contact)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode json export: %w", err)
	}

	e.Logger.Info("structured export written", "path", path, "sites", doc.TotalSites)
	return path, nil
}

// ExportFlatList writes a sorted, deduplicated, newline-joined list of every
// email found across all records.
func (e *FileExporter) ExportFlatList(records []*prospect.Record) (string, error) {
	path, err := e.path("emails", "txt")
	if err != nil {
		return "", err
	}

	seen := make(map[string]struct{})
	var emails []string
	for _, r := range records {
		if r.Contact == nil {
			continue
		}
		for _, email := range r.Contact.Emails {
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)

	content := strings.Join(emails, "\n")
	if len(emails) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write email list: %w", err)
	}

	e.Logger.Info("email list written", "path", path, "emails", len(emails))
	return path, nil
}
