// Package bulkinput reads (email, department) rows from an uploaded CSV or
// XLSX spreadsheet.
package bulkinput

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Row is one invitee. Line is the 1-based record number in the file, which
// for spreadsheets is the row number.
type Row struct {
	Line       int
	Email      string
	Department string
}

// Parse reads rows from r, choosing the decoder from the extension of
// filename. A leading header row naming an "email" column is optional and,
// when present, selects the email and department columns. Blank rows are
// skipped.
func Parse(filename string, r io.Reader) ([]Row, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return toRows(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	// Excel's "CSV UTF-8" export starts with a byte order mark
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return records, nil
}

func toRows(records [][]string) []Row {
	emailCol, deptCol := 0, 1
	start := 0

	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if e, d, ok := headerColumns(rec); ok {
			emailCol, deptCol = e, d
			start = i + 1
		}
		break
	}

	var rows []Row
	for i := start; i < len(records); i++ {
		rec := records[i]
		if isBlank(rec) {
			continue
		}
		rows = append(rows, Row{
			Line:       i + 1,
			Email:      strings.ToLower(cell(rec, emailCol)),
			Department: cell(rec, deptCol),
		})
	}
	return rows
}

func headerColumns(rec []string) (emailCol, deptCol int, ok bool) {
	emailCol, deptCol = -1, -1
	for i, c := range rec {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "email", "e-mail", "email address":
			emailCol = i
		case "department", "dept", "branch":
			deptCol = i
		}
	}
	if emailCol < 0 {
		return 0, 1, false
	}
	return emailCol, deptCol, true
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
