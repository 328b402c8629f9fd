package models

import (
	"fmt"
	"strings"
)

// FindingCategory separates quality problems from security problems.
type FindingCategory string

const (
	CategoryQuality  FindingCategory = "quality"
	CategorySecurity FindingCategory = "security"
)

// Finding is one quality or security problem surfaced for one file.
type Finding struct {
	FilePath string          `json:"file_path"`
	Category FindingCategory `json:"category"`
	Detail   string          `json:"detail"`
}

// NoProblemsText is the per-file summary line used when a file is clean.
const NoProblemsText = "no problems found"

// Report aggregates the findings of one inspection pass over a pull
// request's changed files. Notification decisions use HasFindings, never
// the rendered summary text.
type Report struct {
	Findings []Finding `json:"findings"`
	// FilesInspected lists every changed file the inspector looked at,
	// including clean ones, in listing order.
	FilesInspected []string `json:"files_inspected"`
}

// Add appends a finding to the report.
func (r *Report) Add(f Finding) { r.Findings = append(r.Findings, f) }

// HasFindings reports whether any file produced at least one finding.
func (r *Report) HasFindings() bool { return len(r.Findings) > 0 }

// CountByCategory returns the number of findings in the given category.
func (r *Report) CountByCategory(cat FindingCategory) int {
	n := 0
	for _, f := range r.Findings {
		if f.Category == cat {
			n++
		}
	}
	return n
}

// Summary renders the human-readable per-file breakdown used in chat
// messages and PR comments.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, path := range r.FilesInspected {
		quality, security := 0, 0
		for _, f := range r.Findings {
			if f.FilePath != path {
				continue
			}
			switch f.Category {
			case CategoryQuality:
				quality++
			case CategorySecurity:
				security++
			}
		}
		fmt.Fprintf(&b, "**%s**:\n", path)
		var lines []string
		if quality > 0 {
			lines = append(lines, fmt.Sprintf("quality problems found: %d", quality))
		}
		if security > 0 {
			lines = append(lines, fmt.Sprintf("security problems found: %d", security))
		}
		if len(lines) == 0 {
			lines = append(lines, NoProblemsText)
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
