package core

import "testing"

func TestSummarizeRevenue(t *testing.T) {
	active := []ShowRecord{
		{Title: "A", ShowType: "Original", IsActive: true, Revenue2023: ptr(100), Revenue2024: ptr(200)},
		{Title: "B", ShowType: "Original", IsActive: false, Revenue2024: ptr(50)},
		{Title: "C", IsActive: true, Revenue2025: ptr(10)},
	}
	archived := []ShowRecord{
		{Title: "D", ShowType: "Branded", IsActive: true, Archived: true, Revenue2023: ptr(1)},
	}

	sum := SummarizeRevenue(active, archived)

	if sum.TotalShows != 4 || sum.ActiveShows != 2 || sum.ArchivedShows != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/2/1", sum.TotalShows, sum.ActiveShows, sum.ArchivedShows)
	}

	wantYears := []YearRevenue{
		{Year: 2023, Total: 101, Shows: 2},
		{Year: 2024, Total: 250, Shows: 2},
		{Year: 2025, Total: 10, Shows: 1},
	}
	for i, want := range wantYears {
		if sum.ByYear[i] != want {
			t.Errorf("ByYear[%d] = %+v, want %+v", i, sum.ByYear[i], want)
		}
	}

	if len(sum.ByShowType) != 3 {
		t.Fatalf("ByShowType = %+v", sum.ByShowType)
	}
	order := []string{"Branded", "Original", "Unspecified"}
	for i, name := range order {
		if sum.ByShowType[i].ShowType != name {
			t.Errorf("ByShowType[%d] = %s, want %s", i, sum.ByShowType[i].ShowType, name)
		}
	}
	orig := sum.ByShowType[1]
	if orig.Shows != 2 || orig.Years[1].Total != 250 {
		t.Errorf("Original = %+v", orig)
	}
}

func TestSummarizeRevenue_Empty(t *testing.T) {
	sum := SummarizeRevenue(nil, nil)
	if sum.TotalShows != 0 || len(sum.ByYear) != len(RevenueYears) || len(sum.ByShowType) != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}
