package models

import (
	"strings"
	"testing"
)

func TestReportHasFindingsIsStructural(t *testing.T) {
	var r Report
	r.FilesInspected = []string{"app.py"}
	if r.HasFindings() {
		t.Fatal("inspected-but-clean report has no findings")
	}

	r.Add(Finding{FilePath: "app.py", Category: CategoryQuality, Detail: "E501"})
	if !r.HasFindings() {
		t.Fatal("report with one finding must report findings")
	}
}

func TestReportSummaryPerFileBreakdown(t *testing.T) {
	var r Report
	r.FilesInspected = []string{"app.py", "util.py"}
	r.Add(Finding{FilePath: "app.py", Category: CategoryQuality, Detail: "E501"})
	r.Add(Finding{FilePath: "app.py", Category: CategoryQuality, Detail: "F401"})
	r.Add(Finding{FilePath: "app.py", Category: CategorySecurity, Detail: "B602"})

	s := r.Summary()
	if !strings.Contains(s, "**app.py**:") {
		t.Fatalf("summary must name the file, got %q", s)
	}
	if !strings.Contains(s, "quality problems found: 2") {
		t.Fatalf("summary must count quality problems, got %q", s)
	}
	if !strings.Contains(s, "security problems found: 1") {
		t.Fatalf("summary must count security problems, got %q", s)
	}
	if !strings.Contains(s, NoProblemsText) {
		t.Fatalf("clean files get the no-problems line, got %q", s)
	}
}

func TestReportSummaryFollowsInspectionOrder(t *testing.T) {
	var r Report
	r.FilesInspected = []string{"z.py", "a.py"}

	s := r.Summary()
	if strings.Index(s, "z.py") > strings.Index(s, "a.py") {
		t.Fatalf("summary must keep listing order, got %q", s)
	}
}

func TestCountByCategory(t *testing.T) {
	var r Report
	r.Add(Finding{Category: CategoryQuality})
	r.Add(Finding{Category: CategorySecurity})
	r.Add(Finding{Category: CategorySecurity})

	if got := r.CountByCategory(CategoryQuality); got != 1 {
		t.Fatalf("quality count = %d, want 1", got)
	}
	if got := r.CountByCategory(CategorySecurity); got != 2 {
		t.Fatalf("security count = %d, want 2", got)
	}
}
