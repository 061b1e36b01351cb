// Package export renders downloadable files: CSV, QuickBooks IIF and JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeIIF  = "application/vnd.intu.iif"
	ContentTypeJSON = "application/json"
)

// File is a rendered export served as an attachment
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ContentDisposition returns the attachment header value
func (f File) ContentDisposition() string {
	return fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(f.Filename, `"`, ""))
}

var csvFieldReplacer = strings.NewReplacer(",", ";", "\r\n", " ", "\n", " ", "\r", " ")

// SanitizeCSVField replaces commas with semicolons and line breaks with spaces
func SanitizeCSVField(s string) string {
	return csvFieldReplacer.Replace(s)
}

// CSV renders a header line followed by rows. Fields are written as-is
// after sanitizing, never quoted, so each record stays on one line with a
// fixed column count.
func CSV(filename string, header []string, rows [][]string) (File, error) {
	var buf bytes.Buffer
	writeRow := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(SanitizeCSVField(f))
		}
		buf.WriteByte('\n')
	}

	writeRow(header)
	for i, row := range rows {
		if len(row) != len(header) {
			return File{}, fmt.Errorf("CSV row %d has %d fields, expected %d", i+1, len(row), len(header))
		}
		writeRow(row)
	}

	return File{Filename: filename, ContentType: ContentTypeCSV, Body: buf.Bytes()}, nil
}

// JSON renders v pretty printed with two-space indentation
func JSON(filename string, v any) (File, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return File{}, fmt.Errorf("failed to marshal JSON export: %w", err)
	}
	return File{Filename: filename, ContentType: ContentTypeJSON, Body: append(body, '\n')}, nil
}
