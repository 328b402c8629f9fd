package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/the1andoni/repowatch/models"
)

func TestToolMatches(t *testing.T) {
	py := Tool{Extensions: []string{".py"}}
	if !py.Matches("src/app.py") {
		t.Fatal("'.py' tool must match app.py")
	}
	if py.Matches("README.md") {
		t.Fatal("'.py' tool must not match README.md")
	}
	any := Tool{}
	if !any.Matches("anything.txt") {
		t.Fatal("tool without extensions matches every file")
	}
}

func TestDefaultProfileCoversBothCategories(t *testing.T) {
	p := DefaultProfile()
	var quality, security bool
	for _, tool := range p.Tools {
		switch tool.Category {
		case models.CategoryQuality:
			quality = true
		case models.CategorySecurity:
			security = true
		}
	}
	if !quality || !security {
		t.Fatalf("default profile needs a quality and a security tool, got %+v", p.Tools)
	}
	if p.Formatter == nil {
		t.Fatal("default profile carries a formatter for suggested changes")
	}
}

func TestLoadProfileFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	doc := `tools:
  - name: shellcheck
    category: quality
    command: shellcheck
    args: ["--format=gcc", "{file}"]
    parser: lines
    extensions: [".sh"]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(p.Tools) != 1 || p.Tools[0].Name != "shellcheck" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Tools[0].Category != models.CategoryQuality {
		t.Fatalf("unexpected category: %q", p.Tools[0].Category)
	}
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.yaml":    `tools: []`,
		"no-name.yaml":  "tools:\n  - command: x\n    category: quality\n",
		"category.yaml": "tools:\n  - name: x\n    command: x\n    category: style\n",
	}
	for name, doc := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		if _, err := LoadProfile(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadProfileEmptyPathUsesDefault(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(p.Tools) == 0 {
		t.Fatal("empty path should fall back to the default profile")
	}
}
