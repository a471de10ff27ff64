package core

// validation.go turns one mapped CSV row into a ShowRecord.
//
// Every problem in a row is reported, not just the first, so the preview can
// show all of them at once. Messages name the CSV header the user sees, never
// the internal field name, and are prefixed with the data row number.

import (
	"fmt"
	"strings"
)

// ValidationErrors collects the row errors of a rejected file, or the field
// errors of a rejected form.
type ValidationErrors struct {
	Errors []string
	Form   bool // a single show from a create or edit form, not a file
}

func (e *ValidationErrors) Error() string {
	prefix := "validation failed"
	if e.Form {
		prefix = "invalid show"
	}
	if len(e.Errors) == 1 {
		return prefix + ": " + e.Errors[0]
	}
	return fmt.Sprintf("%s: %d errors", prefix, len(e.Errors))
}

// ParseRow validates a mapped row (canonical field -> raw cell) and builds a
// record from it. rowNumber is 1-based over data rows; zero omits the
// "Row N:" prefix, which is how single records from forms are checked.
// A row with any error yields a zero record.
func ParseRow(mapped map[string]string, rowNumber int) (ShowRecord, []string) {
	var rec ShowRecord
	var errs []string

	fail := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if rowNumber > 0 {
			msg = fmt.Sprintf("Row %d: %s", rowNumber, msg)
		}
		errs = append(errs, msg)
	}

	for _, spec := range showFields {
		raw := cellValue(spec, mapped[spec.Key])

		if spec.Type == FieldBool {
			rec.setBool(spec.Key, parseFlag(raw, spec.DefaultOn))
			continue
		}

		if raw == "" {
			if spec.Key == "title" {
				fail("Missing required field '%s'", spec.Header)
			}
			continue
		}

		switch spec.Type {
		case FieldText:
			rec.setText(spec.Key, raw)

		case FieldDate:
			rec.setText(spec.Key, NormalizeDate(raw))

		case FieldEnum:
			v, ok := spec.canonical(raw)
			if !ok {
				detail := spec.Invalid
				if detail == "" {
					detail = "Must be one of: " + strings.Join(spec.EnumValues, ", ")
				}
				fail("Invalid %s '%s'. %s", spec.Header, raw, detail)
				continue
			}
			rec.setText(spec.Key, v)

		case FieldNumeric:
			f, ok := ParseNumber(raw)
			if !ok {
				fail("'%s' must be a valid number (got '%s')", spec.Header, raw)
				continue
			}
			if spec.IsPercent() && (f < 0 || f > 100) {
				fail("'%s' must be between 0 and 100 (got %s)", spec.Header, raw)
				continue
			}
			rec.setNumber(spec.Key, f)
		}
	}

	if len(errs) > 0 {
		return ShowRecord{}, errs
	}
	return rec, nil
}

// cellValue prepares a raw cell for its column. Free text keeps quotes and a
// leading "=" so an exported value reads back unchanged; every other type
// gets the spreadsheet artifact cleanup.
func cellValue(spec FieldSpec, s string) string {
	if spec.Type == FieldText {
		return strings.TrimSpace(s)
	}
	return CleanCell(s)
}

// NormalizeRecord runs a record built outside the CSV path (a create or edit
// form) through the same rules as an imported row. Server-assigned fields
// are carried over unchanged.
func NormalizeRecord(in ShowRecord) (ShowRecord, error) {
	out, errs := ParseRow(in.Row(), 0)
	if len(errs) > 0 {
		return ShowRecord{}, &ValidationErrors{Errors: errs, Form: true}
	}
	out.ID = in.ID
	out.Archived = in.Archived
	out.CreatedAt = in.CreatedAt
	out.UpdatedAt = in.UpdatedAt
	return out, nil
}
