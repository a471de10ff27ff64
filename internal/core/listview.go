package core

// listview.go filters, sorts and pages show lists in memory.
//
// ListState is an explicit value and Reduce is pure: every change produces a
// new state, so list screens (and their tests) never share mutable filter or
// sort variables. ListView caches the derived page for the last state.

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// FilterOperator represents a comparison operator for column filters.
type FilterOperator string

const (
	OpContains   FilterOperator = "contains"
	OpEquals     FilterOperator = "eq"
	OpStartsWith FilterOperator = "starts"
	OpEndsWith   FilterOperator = "ends"
	OpGreaterEq  FilterOperator = "gte"
	OpLessEq     FilterOperator = "lte"
	OpGreater    FilterOperator = "gt"
	OpLess       FilterOperator = "lt"
	OpIn         FilterOperator = "in"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 500
	maxSorts        = 2
)

// ColumnFilter is one filter condition on a column, by CSV header.
type ColumnFilter struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"op"`
	Value    string         `json:"value"` // comma-separated for OpIn
}

// SortSpec represents a single sort column and direction.
type SortSpec struct {
	Column string `json:"column"`
	Dir    string `json:"dir"` // "asc" or "desc"
}

// ListState is everything that determines which shows a list displays.
type ListState struct {
	Search   string         `json:"search,omitempty"`
	Filters  []ColumnFilter `json:"filters,omitempty"`
	Sorts    []SortSpec     `json:"sorts,omitempty"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewListState returns the first page with no filters.
func NewListState() ListState {
	return ListState{Page: 1, PageSize: DefaultPageSize}
}

// ListActionKind names a change to a ListState.
type ListActionKind string

const (
	ListSetSearch    ListActionKind = "set_search"
	ListAddFilter    ListActionKind = "add_filter"
	ListRemoveFilter ListActionKind = "remove_filter"
	ListClearFilters ListActionKind = "clear_filters"
	ListToggleSort   ListActionKind = "toggle_sort"
	ListSetSort      ListActionKind = "set_sort"
	ListSetPage      ListActionKind = "set_page"
	ListSetPageSize  ListActionKind = "set_page_size"
)

// ListAction is one change to a ListState. Only the fields the kind needs
// are read.
type ListAction struct {
	Kind     ListActionKind
	Search   string
	Filter   ColumnFilter
	Column   string
	Sorts    []SortSpec
	Page     int
	PageSize int
}

// IsValidOperator checks if an operator is valid for a given field type.
func IsValidOperator(op FilterOperator, ft FieldType) bool {
	switch ft {
	case FieldText:
		switch op {
		case OpContains, OpEquals, OpStartsWith, OpEndsWith:
			return true
		}
	case FieldNumeric:
		switch op {
		case OpEquals, OpGreaterEq, OpLessEq, OpGreater, OpLess:
			return true
		}
	case FieldDate:
		switch op {
		case OpEquals, OpGreaterEq, OpLessEq:
			return true
		}
	case FieldBool:
		return op == OpEquals
	case FieldEnum:
		switch op {
		case OpEquals, OpIn:
			return true
		}
	}
	return false
}

// ValidateFilter resolves the column and checks the operator against its type.
func ValidateFilter(f ColumnFilter) (ColumnFilter, error) {
	spec, ok := SpecForHeader(f.Column)
	if !ok {
		return f, fmt.Errorf("unknown column %q", f.Column)
	}
	if !IsValidOperator(f.Operator, spec.Type) {
		return f, fmt.Errorf("operator %q not valid for %s column %q", f.Operator, fieldTypeName(spec.Type), spec.Header)
	}
	if strings.TrimSpace(f.Value) == "" {
		return f, fmt.Errorf("empty filter value for %q", spec.Header)
	}
	f.Column = spec.Header
	return f, nil
}

// Reduce applies action to state and returns the new state. Invalid
// actions return state unchanged. Any change to what is shown resets the
// page to 1.
func Reduce(state ListState, action ListAction) ListState {
	next := ListState{
		Search:   state.Search,
		Filters:  append([]ColumnFilter(nil), state.Filters...),
		Sorts:    append([]SortSpec(nil), state.Sorts...),
		Page:     state.Page,
		PageSize: state.PageSize,
	}
	if next.PageSize <= 0 {
		next.PageSize = DefaultPageSize
	}
	if next.Page < 1 {
		next.Page = 1
	}

	switch action.Kind {
	case ListSetSearch:
		next.Search = strings.TrimSpace(action.Search)
		next.Page = 1

	case ListAddFilter:
		f, err := ValidateFilter(action.Filter)
		if err != nil {
			return state
		}
		kept := next.Filters[:0]
		for _, existing := range next.Filters {
			if existing.Column != f.Column || existing.Operator != f.Operator {
				kept = append(kept, existing)
			}
		}
		next.Filters = append(kept, f)
		next.Page = 1

	case ListRemoveFilter:
		kept := next.Filters[:0]
		for _, existing := range next.Filters {
			if !strings.EqualFold(existing.Column, action.Column) {
				kept = append(kept, existing)
			}
		}
		next.Filters = kept
		next.Page = 1

	case ListClearFilters:
		next.Filters = nil
		next.Search = ""
		next.Page = 1

	case ListToggleSort:
		spec, ok := SpecForHeader(action.Column)
		if !ok {
			return state
		}
		next.Sorts = toggleSort(next.Sorts, spec.Header)
		next.Page = 1

	case ListSetSort:
		var sorts []SortSpec
		for _, s := range action.Sorts {
			spec, ok := SpecForHeader(s.Column)
			if !ok {
				continue
			}
			dir := "asc"
			if strings.EqualFold(s.Dir, "desc") {
				dir = "desc"
			}
			sorts = append(sorts, SortSpec{Column: spec.Header, Dir: dir})
			if len(sorts) == maxSorts {
				break
			}
		}
		next.Sorts = sorts
		next.Page = 1

	case ListSetPage:
		if action.Page >= 1 {
			next.Page = action.Page
		}

	case ListSetPageSize:
		if action.PageSize >= 1 {
			next.PageSize = min(action.PageSize, MaxPageSize)
			next.Page = 1
		}
	}
	return next
}

// toggleSort cycles the primary sort on column: asc, desc, off.
// Another column becomes primary ascending and the old primary secondary.
func toggleSort(sorts []SortSpec, column string) []SortSpec {
	if len(sorts) > 0 && sorts[0].Column == column {
		if sorts[0].Dir == "asc" {
			sorts[0].Dir = "desc"
			return sorts
		}
		return sorts[1:]
	}

	out := []SortSpec{{Column: column, Dir: "asc"}}
	for _, s := range sorts {
		if s.Column != column && len(out) < maxSorts {
			out = append(out, s)
		}
	}
	return out
}

// ListPage is one page of a filtered, sorted show list.
type ListPage struct {
	Rows       []ShowRecord `json:"rows"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
	State      ListState    `json:"state"`
}

// Apply derives the visible page from records. records is not modified.
func Apply(state ListState, records []ShowRecord) ListPage {
	state = Reduce(state, ListAction{})

	matched := make([]ShowRecord, 0, len(records))
	for _, rec := range records {
		if matchesSearch(rec, state.Search) && matchesFilters(rec, state.Filters) {
			matched = append(matched, rec)
		}
	}

	if len(state.Sorts) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range state.Sorts {
				c, absent := compareField(matched[i], matched[j], s.Column)
				if c == 0 {
					continue
				}
				if s.Dir == "desc" && !absent {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	total := len(matched)
	totalPages := (total + state.PageSize - 1) / state.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := min(state.Page, totalPages)
	state.Page = page

	start := (page - 1) * state.PageSize
	end := min(start+state.PageSize, total)

	return ListPage{
		Rows:       matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   state.PageSize,
		TotalPages: totalPages,
		State:      state,
	}
}

func matchesSearch(rec ShowRecord, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, key := range []string{"title", "show_host", "genre_name", "contact_name", "qbo_show_name"} {
		if strings.Contains(strings.ToLower(rec.CellValue(key)), q) {
			return true
		}
	}
	return false
}

func matchesFilters(rec ShowRecord, filters []ColumnFilter) bool {
	for _, f := range filters {
		spec, ok := SpecForHeader(f.Column)
		if !ok || !matchFilter(rec, spec, f) {
			return false
		}
	}
	return true
}

func matchFilter(rec ShowRecord, spec FieldSpec, f ColumnFilter) bool {
	cell := rec.CellValue(spec.Key)
	lc, lv := strings.ToLower(cell), strings.ToLower(strings.TrimSpace(f.Value))

	switch spec.Type {
	case FieldNumeric:
		n, ok := rec.Number(spec.Key)
		want, wok := ParseNumber(f.Value)
		if !ok || !wok {
			return false
		}
		return compareOp(f.Operator, cmpFloat(n, want))

	case FieldBool:
		return parseFlag(lv, false) == (cell == "Yes")
	}

	switch f.Operator {
	case OpContains:
		return strings.Contains(lc, lv)
	case OpStartsWith:
		return strings.HasPrefix(lc, lv)
	case OpEndsWith:
		return strings.HasSuffix(lc, lv)
	case OpIn:
		for _, v := range strings.Split(lv, ",") {
			if strings.TrimSpace(v) == lc {
				return true
			}
		}
		return false
	case OpEquals:
		if spec.Type == FieldDate {
			return cell == NormalizeDate(f.Value)
		}
		return lc == lv
	case OpGreaterEq, OpLessEq, OpGreater, OpLess:
		if cell == "" {
			return false
		}
		if spec.Type == FieldDate {
			lv = NormalizeDate(f.Value)
		}
		return compareOp(f.Operator, strings.Compare(lc, lv))
	}
	return false
}

func compareOp(op FilterOperator, c int) bool {
	switch op {
	case OpEquals:
		return c == 0
	case OpGreaterEq:
		return c >= 0
	case OpLessEq:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpLess:
		return c < 0
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareField orders two records by one column. absent is true when the
// order was decided by one side having no value; those sort last in either
// direction.
func compareField(a, b ShowRecord, column string) (c int, absent bool) {
	spec, ok := SpecForHeader(column)
	if !ok {
		return 0, false
	}
	if spec.Type == FieldNumeric {
		x, xok := a.Number(spec.Key)
		y, yok := b.Number(spec.Key)
		switch {
		case !xok && !yok:
			return 0, false
		case !xok:
			return 1, true
		case !yok:
			return -1, true
		}
		return cmpFloat(x, y), false
	}

	x, y := strings.ToLower(a.CellValue(spec.Key)), strings.ToLower(b.CellValue(spec.Key))
	switch {
	case x == y:
		return 0, false
	case x == "":
		return 1, true
	case y == "":
		return -1, true
	}
	return strings.Compare(x, y), false
}

// ListView memoizes Apply for one record set.
type ListView struct {
	mu      sync.Mutex
	records []ShowRecord
	key     string
	page    *ListPage
}

// NewListView creates a view over records.
func NewListView(records []ShowRecord) *ListView {
	return &ListView{records: records}
}

// SetRecords replaces the record set. The cached page is kept when the new
// records equal the old ones.
func (v *ListView) SetRecords(records []ShowRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setRecords(records)
}

func (v *ListView) setRecords(records []ShowRecord) {
	if !reflect.DeepEqual(v.records, records) {
		v.page = nil
	}
	v.records = records
}

// Page returns the page for state, recomputing only when state changed.
func (v *ListView) Page(state ListState) ListPage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pageLocked(state)
}

// PageFor swaps in records and returns the page for state in one step.
func (v *ListView) PageFor(records []ShowRecord, state ListState) ListPage {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setRecords(records)
	return v.pageLocked(state)
}

func (v *ListView) pageLocked(state ListState) ListPage {
	key := fmt.Sprintf("%+v", state)
	if v.page != nil && v.key == key {
		return *v.page
	}
	p := Apply(state, v.records)
	v.key, v.page = key, &p
	return p
}
