package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyFile  = errors.New("empty file")
	ErrNoDataRows = errors.New("no data rows after header")
)

// ParsedRow is one valid data row of an import file.
type ParsedRow struct {
	Row    int // 1-based over data rows
	Record ShowRecord
}

// ParsedFile is an import file that passed validation.
type ParsedFile struct {
	Headers        []string
	IgnoredHeaders []string
	Rows           []ParsedRow
}

// Records returns the parsed records in file order.
func (f *ParsedFile) Records() []ShowRecord {
	out := make([]ShowRecord, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Record
	}
	return out
}

// ParseFile reads a whole import file. Malformed CSV aborts with an
// "invalid csv" error. Validation runs over every row; if any row fails, the
// file is rejected with a *ValidationErrors carrying every message.
func ParseFile(r io.Reader) (*ParsedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	data = sanitizeUTF8(stripBOM(data))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	parsed := &ParsedFile{Headers: make([]string, len(header))}
	for i, h := range header {
		h = CleanCell(h)
		parsed.Headers[i] = h
		if h != "" && !IsKnownHeader(h) {
			parsed.IgnoredHeaders = append(parsed.IgnoredHeaders, h)
		}
	}

	var errs []string
	dataRow := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		dataRow++
		if isEmptyRow(record) {
			continue
		}

		raw := make(map[string]string, len(parsed.Headers))
		for i, h := range parsed.Headers {
			if i >= len(record) {
				break
			}
			if _, dup := raw[h]; !dup {
				raw[h] = record[i]
			}
		}

		rec, rowErrs := ParseRow(MapRow(raw), dataRow)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		parsed.Rows = append(parsed.Rows, ParsedRow{Row: dataRow, Record: rec})
	}

	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	if len(parsed.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return parsed, nil
}

// FindInFileDuplicates groups rows whose titles match case-insensitively.
// Only groups of two or more rows are returned, in first-seen order.
func FindInFileDuplicates(rows []ParsedRow) []DuplicateInFile {
	groups := make(map[string]*DuplicateInFile)
	var order []string
	for _, r := range rows {
		key := strings.ToLower(strings.TrimSpace(r.Record.Title))
		g, ok := groups[key]
		if !ok {
			g = &DuplicateInFile{Title: r.Record.Title}
			groups[key] = g
			order = append(order, key)
		}
		g.Rows = append(g.Rows, r.Row)
	}

	var out []DuplicateInFile
	for _, key := range order {
		if g := groups[key]; len(g.Rows) > 1 {
			out = append(out, *g)
		}
	}
	return out
}
