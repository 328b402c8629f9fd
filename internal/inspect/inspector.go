// Package inspect runs external quality and security checkers against the
// changed files of a pull request and normalises their output into
// findings. A sub-check that fails to run contributes zero findings
// instead of aborting the file's inspection; partial results are
// preferred over blocking notification.
package inspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/the1andoni/repowatch/models"
)

// Inspector checks one file and returns its findings.
type Inspector interface {
	// Inspect runs all applicable checkers against the file at path
	// (relative to root) and returns normalised findings.
	Inspect(ctx context.Context, root, path string) ([]models.Finding, error)
}

// Runner is the exec-based Inspector driven by a tool Profile.
type Runner struct {
	profile Profile
}

// NewRunner creates a Runner for the given profile.
func NewRunner(profile Profile) *Runner {
	return &Runner{profile: profile}
}

// Inspect runs each matching tool against root/path. Tool startup or
// output-parse failures are logged and skipped.
func (r *Runner) Inspect(ctx context.Context, root, path string) ([]models.Finding, error) {
	var findings []models.Finding
	for _, tool := range r.profile.Tools {
		if !tool.Matches(path) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return findings, err
		}

		details, err := runTool(ctx, tool, root, path)
		if err != nil {
			// Partial inspection failure: zero findings from this
			// sub-check, keep going.
			slog.Warn("inspection sub-check failed",
				"tool", tool.Name, "file", path, "error", err)
			continue
		}
		for _, detail := range details {
			findings = append(findings, models.Finding{
				FilePath: path,
				Category: tool.Category,
				Detail:   fmt.Sprintf("%s: %s", tool.Name, detail),
			})
		}
	}
	return findings, nil
}

// Report inspects every changed file of a pull request checkout in
// listing order and aggregates the results. Per-file failures are logged
// and do not prevent processing of the remaining files.
func (r *Runner) Report(ctx context.Context, root string, files []string) (*models.Report, error) {
	report := &models.Report{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.FilesInspected = append(report.FilesInspected, path)

		findings, err := r.Inspect(ctx, root, path)
		if err != nil {
			if ctx.Err() != nil {
				return report, err
			}
			slog.Warn("inspecting file failed", "file", path, "error", err)
			continue
		}
		for _, f := range findings {
			report.Add(f)
		}
	}
	return report, nil
}

// SuggestFormat runs the profile's formatter in diff mode and returns the
// suggested changes for path, or "" when the file is already formatted
// (or no formatter is configured).
func (r *Runner) SuggestFormat(ctx context.Context, root, path string) (string, error) {
	tool := r.profile.Formatter
	if tool == nil || !tool.Matches(path) {
		return "", nil
	}
	stdout, _, err := execTool(ctx, *tool, root, path)
	if err != nil {
		return "", fmt.Errorf("running %s on %s: %w", tool.Name, path, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// runTool executes one checker and parses its output. Checkers signal
// findings with a non-zero exit code and parseable stdout; a non-zero
// exit with unparseable output is a tool failure.
func runTool(ctx context.Context, tool Tool, root, path string) ([]string, error) {
	stdout, exitErr, err := execTool(ctx, tool, root, path)
	if err != nil {
		return nil, err
	}

	details, parseErr := parseOutput(tool.Parser, stdout)
	if parseErr != nil {
		if exitErr != nil {
			return nil, fmt.Errorf("%s exited non-zero with unparseable output: %w", tool.Name, parseErr)
		}
		return nil, fmt.Errorf("parsing %s output: %w", tool.Name, parseErr)
	}
	return details, nil
}

// execTool runs the tool command with {file} expanded. A non-zero exit is
// returned via exitErr, not err, so callers can treat it as "findings
// present" when stdout parses.
func execTool(ctx context.Context, tool Tool, root, path string) (stdout []byte, exitErr *exec.ExitError, err error) {
	args := make([]string, 0, len(tool.Args))
	target := filepath.Join(root, path)
	for _, a := range tool.Args {
		args = append(args, strings.ReplaceAll(a, "{file}", target))
	}

	cmd := exec.CommandContext(ctx, tool.Command, args...)
	cmd.Dir = root
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if runErr != nil {
		var ee *exec.ExitError
		if errors.As(runErr, &ee) {
			return out.Bytes(), ee, nil
		}
		return nil, nil, fmt.Errorf("starting %s: %w", tool.Command, runErr)
	}
	return out.Bytes(), nil, nil
}
