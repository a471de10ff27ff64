package core

import (
	"errors"
	"fmt"
)

// ErrUpdateWithoutMatch is returned when "update" is chosen for a row that
// matched no existing show.
var ErrUpdateWithoutMatch = errors.New("update requires an existing show")

// PreviewRow is one parsed record awaiting the user's decision.
type PreviewRow struct {
	Row        int         `json:"row"`
	Record     ShowRecord  `json:"record"`
	Duplicate  bool        `json:"duplicate"`
	Existing   *ShowRecord `json:"existing,omitempty"`
	IsArchived bool        `json:"is_archived"`
	Action     Action      `json:"action"`
	Changes    []string    `json:"changes,omitempty"`
}

// DuplicateInFile lists rows of the same file sharing a title.
type DuplicateInFile struct {
	Title string `json:"title"`
	Rows  []int  `json:"rows"`
}

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows       int `json:"total_rows"`
	CreateRows      int `json:"create_rows"`
	UpdateRows      int `json:"update_rows"`
	SkipRows        int `json:"skip_rows"`
	DuplicateRows   int `json:"duplicate_rows"`
	ArchivedMatches int `json:"archived_matches"`
	DuplicateInFile int `json:"duplicate_in_file"`
}

// BuildPreview pairs parsed rows with the index-aligned duplicate results.
// The default action is "update" for a duplicate and "create" otherwise.
func BuildPreview(rows []ParsedRow, matches []DuplicateMatch) ([]PreviewRow, error) {
	if len(rows) != len(matches) {
		return nil, fmt.Errorf("duplicate check failed: got %d results for %d records", len(matches), len(rows))
	}

	out := make([]PreviewRow, len(rows))
	for i, r := range rows {
		m := matches[i]
		pr := PreviewRow{
			Row:        r.Row,
			Record:     r.Record,
			Duplicate:  m.Exists,
			IsArchived: m.Exists && m.IsArchived,
			Action:     ActionCreate,
		}
		if m.Exists {
			pr.Action = ActionUpdate
			pr.Existing = m.ExistingShow
			if m.ExistingShow != nil {
				pr.Changes = DiffRecords(*m.ExistingShow, r.Record)
			}
		}
		out[i] = pr
	}
	return out, nil
}

// DiffRecords lists the headers of fields the incoming record would change.
// Blank incoming cells are not counted as changes; flags always are.
func DiffRecords(existing, incoming ShowRecord) []string {
	var changed []string
	for _, spec := range showFields {
		in := incoming.CellValue(spec.Key)
		if in == "" && spec.Type != FieldBool {
			continue
		}
		if in != existing.CellValue(spec.Key) {
			changed = append(changed, spec.Header)
		}
	}
	return changed
}

// SetRowAction changes the action of one row in place.
func SetRowAction(rows []PreviewRow, row int, action Action) error {
	for i := range rows {
		if rows[i].Row != row {
			continue
		}
		if action == ActionUpdate && !rows[i].Duplicate {
			return fmt.Errorf("row %d: %w", row, ErrUpdateWithoutMatch)
		}
		rows[i].Action = action
		return nil
	}
	return fmt.Errorf("%w: %d", ErrRowNotFound, row)
}

// CommitPlan is what a commit sends to the show API.
type CommitPlan struct {
	Records []ShowRecord
	Actions []RowAction
	Skipped int // rows the user chose to skip
	Ignored int // "update" rows with no match, sent as skip
}

// PlanCommit builds the parallel record and action lists.
// An "update" with no matched show is downgraded to "skip".
func PlanCommit(rows []PreviewRow) CommitPlan {
	plan := CommitPlan{
		Records: make([]ShowRecord, len(rows)),
		Actions: make([]RowAction, len(rows)),
	}
	for i, r := range rows {
		action := r.Action
		switch {
		case action == ActionUpdate && !r.Duplicate:
			action = ActionSkip
			plan.Ignored++
		case action == ActionSkip:
			plan.Skipped++
		}
		plan.Records[i] = r.Record
		plan.Actions[i] = RowAction{Title: r.Record.Title, Action: action}
	}
	return plan
}

// Summarize counts preview rows by action and match state.
func Summarize(rows []PreviewRow, inFile []DuplicateInFile) PreviewSummary {
	s := PreviewSummary{TotalRows: len(rows), DuplicateInFile: len(inFile)}
	for _, r := range rows {
		switch r.Action {
		case ActionCreate:
			s.CreateRows++
		case ActionUpdate:
			s.UpdateRows++
		case ActionSkip:
			s.SkipRows++
		}
		if r.Duplicate {
			s.DuplicateRows++
		}
		if r.IsArchived {
			s.ArchivedMatches++
		}
	}
	return s
}
