package inspect

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseOutput converts raw tool stdout into per-finding detail strings.
// Returns an error only when the output is unparseable; an empty slice
// means the tool ran clean.
func parseOutput(parser string, raw []byte) ([]string, error) {
	switch parser {
	case "flake8":
		return parseFlake8(raw)
	case "bandit":
		return parseBandit(raw)
	case "lines", "":
		return parseLines(raw), nil
	default:
		return nil, fmt.Errorf("unknown parser %q", parser)
	}
}

// flake8Violation mirrors one entry of flake8's JSON formatter output.
type flake8Violation struct {
	Code string `json:"code"`
	Text string `json:"text"`
	Line int    `json:"line_number"`
}

// parseFlake8 handles flake8's JSON formatter output: either a flat array
// of violations or a path→violations object, depending on plugin version.
func parseFlake8(raw []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "{}" || trimmed == "[]" {
		return nil, nil
	}

	var flat []flake8Violation
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flake8Details(flat), nil
	}
	var byPath map[string][]flake8Violation
	if err := json.Unmarshal(raw, &byPath); err == nil {
		var all []flake8Violation
		for _, vs := range byPath {
			all = append(all, vs...)
		}
		return flake8Details(all), nil
	}
	return nil, fmt.Errorf("unsupported flake8 JSON shape")
}

func flake8Details(vs []flake8Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, fmt.Sprintf("%s line %d: %s", v.Code, v.Line, v.Text))
	}
	return out
}

// parseBandit handles bandit's -f json output.
func parseBandit(raw []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}

	var report struct {
		Results []struct {
			TestID   string `json:"test_id"`
			Severity string `json:"issue_severity"`
			Text     string `json:"issue_text"`
			Line     int    `json:"line_number"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("unsupported bandit JSON shape: %w", err)
	}

	out := make([]string, 0, len(report.Results))
	for _, r := range report.Results {
		out = append(out, fmt.Sprintf("%s [%s] line %d: %s", r.TestID, r.Severity, r.Line, r.Text))
	}
	return out, nil
}

// parseLines treats each non-empty stdout line as one finding.
func parseLines(raw []byte) []string {
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
