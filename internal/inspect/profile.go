package inspect

import (
	"fmt"
	"os"
	"strings"

	"github.com/the1andoni/repowatch/models"
	"go.yaml.in/yaml/v3"
)

// Tool describes one external checker invocation. The literal "{file}"
// in Args is replaced with the path under inspection.
type Tool struct {
	Name     string                 `yaml:"name"`
	Category models.FindingCategory `yaml:"category"`
	Command  string                 `yaml:"command"`
	Args     []string               `yaml:"args"`
	// Parser selects the output format: "flake8", "bandit", or "lines"
	// (one finding per non-empty stdout line).
	Parser string `yaml:"parser"`
	// Extensions limits the tool to matching files (e.g. ".py").
	// Empty means every file.
	Extensions []string `yaml:"extensions"`
}

// Matches reports whether the tool applies to path.
func (t Tool) Matches(path string) bool {
	if len(t.Extensions) == 0 {
		return true
	}
	for _, ext := range t.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Profile is the set of checkers (and optional formatter) the inspector
// runs per changed file.
type Profile struct {
	Tools []Tool `yaml:"tools"`
	// Formatter produces a suggested-changes diff appended to PR
	// comments (e.g. black --diff). Optional.
	Formatter *Tool `yaml:"formatter"`
}

// DefaultProfile mirrors the historical toolchain: flake8 for quality,
// bandit for security, black for format suggestions.
func DefaultProfile() Profile {
	return Profile{
		Tools: []Tool{
			{
				Name:       "flake8",
				Category:   models.CategoryQuality,
				Command:    "flake8",
				Args:       []string{"--format=json", "{file}"},
				Parser:     "flake8",
				Extensions: []string{".py"},
			},
			{
				Name:       "bandit",
				Category:   models.CategorySecurity,
				Command:    "bandit",
				Args:       []string{"-f", "json", "-r", "{file}"},
				Parser:     "bandit",
				Extensions: []string{".py"},
			},
		},
		Formatter: &Tool{
			Name:       "black",
			Command:    "black",
			Args:       []string{"--diff", "{file}"},
			Extensions: []string{".py"},
		},
	}
}

// LoadProfile reads a YAML tool profile from path. Empty path returns the
// built-in default.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading inspect profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing inspect profile %s: %w", path, err)
	}
	if len(p.Tools) == 0 {
		return Profile{}, fmt.Errorf("inspect profile %s defines no tools", path)
	}
	for i, t := range p.Tools {
		if t.Name == "" || t.Command == "" {
			return Profile{}, fmt.Errorf("inspect profile %s: tool %d needs name and command", path, i)
		}
		switch t.Category {
		case models.CategoryQuality, models.CategorySecurity:
		default:
			return Profile{}, fmt.Errorf("inspect profile %s: tool %q has invalid category %q", path, t.Name, t.Category)
		}
	}
	return p, nil
}
