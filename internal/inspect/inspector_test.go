package inspect

import (
	"context"
	"strings"
	"testing"

	"github.com/the1andoni/repowatch/models"
)

// shTool builds a test checker out of sh so no real linters are needed.
func shTool(name string, category models.FindingCategory, script string) Tool {
	return Tool{
		Name:     name,
		Category: category,
		Command:  "sh",
		Args:     []string{"-c", script},
		Parser:   "lines",
	}
}

func TestInspectCollectsFindingsFromEachTool(t *testing.T) {
	r := NewRunner(Profile{Tools: []Tool{
		shTool("check-a", models.CategoryQuality, `printf 'too long\nunused import\n'; exit 1`),
		shTool("check-b", models.CategorySecurity, `printf 'shell injection\n'; exit 1`),
	}})

	findings, err := r.Inspect(context.Background(), t.TempDir(), "app.py")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(findings), findings)
	}
	if findings[0].Category != models.CategoryQuality || findings[2].Category != models.CategorySecurity {
		t.Fatalf("categories must follow the producing tool: %+v", findings)
	}
	if findings[0].FilePath != "app.py" {
		t.Fatalf("finding must carry the inspected path, got %q", findings[0].FilePath)
	}
}

func TestInspectCleanExitYieldsNoFindings(t *testing.T) {
	r := NewRunner(Profile{Tools: []Tool{
		shTool("check", models.CategoryQuality, `exit 0`),
	}})

	findings, err := r.Inspect(context.Background(), t.TempDir(), "app.py")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("clean run must produce no findings, got %+v", findings)
	}
}

func TestInspectToolFailureContributesZeroFindings(t *testing.T) {
	r := NewRunner(Profile{Tools: []Tool{
		{Name: "missing", Category: models.CategoryQuality, Command: "definitely-not-a-binary-9f2c", Parser: "lines"},
		shTool("working", models.CategorySecurity, `printf 'real finding\n'; exit 1`),
	}})

	findings, err := r.Inspect(context.Background(), t.TempDir(), "app.py")
	if err != nil {
		t.Fatalf("a failing sub-check must not abort inspection: %v", err)
	}
	if len(findings) != 1 || findings[0].Category != models.CategorySecurity {
		t.Fatalf("expected only the working tool's finding, got %+v", findings)
	}
}

func TestInspectSkipsNonMatchingTools(t *testing.T) {
	tool := shTool("py-only", models.CategoryQuality, `printf 'should not run\n'; exit 1`)
	tool.Extensions = []string{".py"}
	r := NewRunner(Profile{Tools: []Tool{tool}})

	findings, err := r.Inspect(context.Background(), t.TempDir(), "README.md")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("non-matching tool must not run, got %+v", findings)
	}
}

func TestReportAggregatesAcrossFiles(t *testing.T) {
	r := NewRunner(Profile{Tools: []Tool{
		shTool("grumpy", models.CategoryQuality, `printf 'always one finding\n'; exit 1`),
	}})

	report, err := r.Report(context.Background(), t.TempDir(), []string{"a.py", "b.py"})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.FilesInspected) != 2 {
		t.Fatalf("both files must be inspected, got %v", report.FilesInspected)
	}
	if !report.HasFindings() || len(report.Findings) != 2 {
		t.Fatalf("expected one finding per file, got %+v", report.Findings)
	}
}

func TestSuggestFormatUsesFormatterDiff(t *testing.T) {
	r := NewRunner(Profile{
		Formatter: &Tool{Name: "fmt", Command: "sh", Args: []string{"-c", `printf -- '--- a\n+++ b\n'`}},
	})

	diff, err := r.SuggestFormat(context.Background(), t.TempDir(), "app.py")
	if err != nil {
		t.Fatalf("SuggestFormat: %v", err)
	}
	if !strings.HasPrefix(diff, "---") {
		t.Fatalf("unexpected diff: %q", diff)
	}

	none := NewRunner(Profile{})
	diff, err = none.SuggestFormat(context.Background(), t.TempDir(), "app.py")
	if err != nil || diff != "" {
		t.Fatalf("no formatter means no diff, got %q err %v", diff, err)
	}
}
