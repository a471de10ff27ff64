package web

// handlers_common.go holds request decoding and list query helpers shared
// by the handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/showdesk/internal/core"
)

// maxJSONBody bounds create, update and bulk request bodies.
const maxJSONBody = 1 << 20

// ErrInvalidBody is wrapped around JSON decode failures.
var ErrInvalidBody = errors.New("invalid request body")

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// parseArchived reports whether the archived list was requested.
func parseArchived(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("archived"))
	return v
}

// parseListState builds a list state from query parameters:
//
//	?q=tech&filter[Show Type]=in:Original,Partner&sort=Revenue 2025,Show Name&dir=desc,asc&page=2&page_size=50
//
// Unknown columns and operators invalid for a column's type are ignored.
func parseListState(r *http.Request) core.ListState {
	q := r.URL.Query()
	state := core.NewListState()

	if search := q.Get("q"); search != "" {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetSearch, Search: search})
	}

	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		for _, val := range values {
			op, value, ok := strings.Cut(val, ":")
			if !ok {
				continue
			}
			state = core.Reduce(state, core.ListAction{
				Kind:   core.ListAddFilter,
				Filter: core.ColumnFilter{Column: col, Operator: core.FilterOperator(op), Value: value},
			})
		}
	}

	if sorts := parseSorts(q.Get("sort"), q.Get("dir")); len(sorts) > 0 {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetSort, Sorts: sorts})
	}
	if size := parseIntParam(r, "page_size", 0); size > 0 {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetPageSize, PageSize: size})
	}
	if page := parseIntParam(r, "page", 0); page > 0 {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetPage, Page: page})
	}
	return state
}

// parseSorts pairs comma-separated sort columns with directions.
func parseSorts(sortStr, dirStr string) []core.SortSpec {
	if sortStr == "" {
		return nil
	}
	dirs := strings.Split(dirStr, ",")

	var sorts []core.SortSpec
	for i, col := range strings.Split(sortStr, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		dir := "asc"
		if i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc" {
			dir = "desc"
		}
		sorts = append(sorts, core.SortSpec{Column: col, Dir: dir})
	}
	return sorts
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
