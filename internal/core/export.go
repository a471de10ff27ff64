package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteTemplate writes the import template: the header row only.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateHeaders()); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteExport writes records as CSV in template column order. Flags render
// as Yes/No and absent values as empty cells, so the output re-imports.
func WriteExport(w io.Writer, records []ShowRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateHeaders()); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(rec.CSVRow()); err != nil {
			return fmt.Errorf("write export row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
