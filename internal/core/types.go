package core

import (
	"context"
	"fmt"
	"strings"
)

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

// FieldSpec maps one CSV column to a ShowRecord field and defines how its
// cells are validated.
type FieldSpec struct {
	Header     string              // Column header (must match CSV exactly)
	Key        string              // Canonical ShowRecord field name
	Type       FieldType           // Expected data type
	EnumValues []string            // Canonical values for FieldEnum
	Aliases    map[string]string   // Extra lowercase inputs accepted for FieldEnum
	Normalizer func(string) string // Optional transformation before enum lookup
	Invalid    string              // Error detail when an enum value is rejected
	DefaultOn  bool                // FieldBool: true unless explicitly "no"/"false"
}

// IsPercent reports whether the field is a percentage constrained to [0,100].
func (s FieldSpec) IsPercent() bool {
	return s.Type == FieldNumeric &&
		(strings.Contains(s.Key, "percent") || s.Key == "evergreen_ownership_pct")
}

// canonical resolves a cleaned enum input to its canonical value.
func (s FieldSpec) canonical(v string) (string, bool) {
	if s.Normalizer != nil {
		v = s.Normalizer(v)
	}
	lower := strings.ToLower(v)
	if c, ok := s.Aliases[lower]; ok {
		return c, true
	}
	for _, ev := range s.EnumValues {
		if strings.ToLower(ev) == lower {
			return ev, true
		}
	}
	return "", false
}

// Action is what a commit does with one preview row.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionCreate, ActionUpdate, ActionSkip:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// DuplicateMatch is the show API's answer for one record of a duplicate check.
type DuplicateMatch struct {
	Exists       bool        `json:"exists"`
	ExistingShow *ShowRecord `json:"existing_show,omitempty"`
	IsArchived   bool        `json:"is_archived,omitempty"`
}

// RowAction pairs a record title with the action to apply at commit.
type RowAction struct {
	Title  string `json:"title"`
	Action Action `json:"action"`
}

// BulkResult is the per-batch outcome reported by the show API.
type BulkResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// ShowAPI is the external backend that owns show persistence.
type ShowAPI interface {
	ListShows(ctx context.Context) ([]ShowRecord, error)
	ListArchivedShows(ctx context.Context) ([]ShowRecord, error)
	CreateShow(ctx context.Context, rec ShowRecord) (*ShowRecord, error)
	UpdateShow(ctx context.Context, id string, rec ShowRecord) (*ShowRecord, error)
	DeleteShow(ctx context.Context, id string) error
	ArchiveShow(ctx context.Context, id string) error
	UnarchiveShow(ctx context.Context, id string) error
	BulkArchive(ctx context.Context, ids []string) (*BulkResult, error)
	BulkDelete(ctx context.Context, ids []string) (*BulkResult, error)
	CheckSingleDuplicate(ctx context.Context, rec ShowRecord) (*DuplicateMatch, error)
	CheckDuplicates(ctx context.Context, recs []ShowRecord) ([]DuplicateMatch, error)
	BulkCreateWithActions(ctx context.Context, recs []ShowRecord, actions []RowAction) (*BulkResult, error)
}
