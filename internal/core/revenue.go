package core

import (
	"context"
	"fmt"
	"sort"
)

// RevenueYears are the years with a revenue column.
var RevenueYears = []int{2023, 2024, 2025}

// YearRevenue is the revenue total for one year.
type YearRevenue struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
	Shows int     `json:"shows"` // shows reporting revenue that year
}

// TypeRevenue is per-year revenue for one show type.
type TypeRevenue struct {
	ShowType string        `json:"show_type"`
	Shows    int           `json:"shows"`
	Years    []YearRevenue `json:"years"`
}

// RevenueSummary feeds the dashboard revenue cards.
type RevenueSummary struct {
	TotalShows    int           `json:"total_shows"`
	ActiveShows   int           `json:"active_shows"`
	ArchivedShows int           `json:"archived_shows"`
	ByYear        []YearRevenue `json:"by_year"`
	ByShowType    []TypeRevenue `json:"by_show_type"`
}

// SummarizeRevenue aggregates revenue over active and archived shows.
// Shows without a type are grouped under "Unspecified".
func SummarizeRevenue(active, archived []ShowRecord) RevenueSummary {
	sum := RevenueSummary{ArchivedShows: len(archived)}
	all := make([]ShowRecord, 0, len(active)+len(archived))
	all = append(all, active...)
	all = append(all, archived...)
	sum.TotalShows = len(all)

	sum.ByYear = make([]YearRevenue, len(RevenueYears))
	for i, y := range RevenueYears {
		sum.ByYear[i].Year = y
	}
	byType := make(map[string]*TypeRevenue)

	for _, rec := range all {
		if !rec.Archived && rec.IsActive {
			sum.ActiveShows++
		}

		st := rec.ShowType
		if st == "" {
			st = "Unspecified"
		}
		tr, ok := byType[st]
		if !ok {
			tr = &TypeRevenue{ShowType: st, Years: make([]YearRevenue, len(RevenueYears))}
			for i, y := range RevenueYears {
				tr.Years[i].Year = y
			}
			byType[st] = tr
		}
		tr.Shows++

		for i, y := range RevenueYears {
			v, ok := rec.Number(fmt.Sprintf("revenue_%d", y))
			if !ok {
				continue
			}
			sum.ByYear[i].Total += v
			sum.ByYear[i].Shows++
			tr.Years[i].Total += v
			tr.Years[i].Shows++
		}
	}

	for _, tr := range byType {
		sum.ByShowType = append(sum.ByShowType, *tr)
	}
	sort.Slice(sum.ByShowType, func(i, j int) bool {
		return sum.ByShowType[i].ShowType < sum.ByShowType[j].ShowType
	})
	return sum
}

// RevenueSummary fetches active and archived shows and summarizes them.
func (s *Service) RevenueSummary(ctx context.Context) (*RevenueSummary, error) {
	active, err := s.api.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	archived, err := s.api.ListArchivedShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archived shows: %w", err)
	}
	for i := range archived {
		archived[i].Archived = true
	}
	sum := SummarizeRevenue(active, archived)
	return &sum, nil
}
