package inspect

import (
	"strings"
	"testing"
)

func TestParseFlake8FlatArray(t *testing.T) {
	raw := `[{"code":"E501","text":"line too long (92 > 79 characters)","line_number":14}]`
	details, err := parseOutput("flake8", []byte(raw))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
	if !strings.Contains(details[0], "E501") || !strings.Contains(details[0], "line 14") {
		t.Fatalf("unexpected detail: %q", details[0])
	}
}

func TestParseFlake8PathKeyedObject(t *testing.T) {
	raw := `{"app.py":[{"code":"F401","text":"'os' imported but unused","line_number":1},
	           {"code":"E302","text":"expected 2 blank lines","line_number":9}]}`
	details, err := parseOutput("flake8", []byte(raw))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
}

func TestParseFlake8EmptyOutputs(t *testing.T) {
	for _, raw := range []string{"", "[]", "{}"} {
		details, err := parseOutput("flake8", []byte(raw))
		if err != nil {
			t.Fatalf("parseOutput(%q): %v", raw, err)
		}
		if len(details) != 0 {
			t.Fatalf("clean output %q must yield no details, got %v", raw, details)
		}
	}
}

func TestParseFlake8RejectsGarbage(t *testing.T) {
	if _, err := parseOutput("flake8", []byte("Traceback (most recent call last):")); err == nil {
		t.Fatal("non-JSON output must be an error, not silently zero findings")
	}
}

func TestParseBandit(t *testing.T) {
	raw := `{"results":[
	  {"test_id":"B602","issue_severity":"HIGH","issue_text":"subprocess call with shell=True","line_number":33}
	]}`
	details, err := parseOutput("bandit", []byte(raw))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
	if !strings.Contains(details[0], "B602") || !strings.Contains(details[0], "HIGH") {
		t.Fatalf("unexpected detail: %q", details[0])
	}
}

func TestParseBanditNoResults(t *testing.T) {
	details, err := parseOutput("bandit", []byte(`{"results":[]}`))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("empty results must yield no details, got %v", details)
	}
}

func TestParseLines(t *testing.T) {
	details, err := parseOutput("lines", []byte("first\n\n  second  \n"))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(details) != 2 || details[0] != "first" || details[1] != "second" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestParseUnknownParser(t *testing.T) {
	if _, err := parseOutput("clippy", []byte("x")); err == nil {
		t.Fatal("unknown parser must be an error")
	}
}
