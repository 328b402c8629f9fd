package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type recordsKind int

const (
	recordsKindPulls recordsKind = iota
	recordsKindIssues
)

// recordRow is one ledger entry flattened for display.
type recordRow struct {
	ID         int64
	Title      string
	Author     string
	URL        string
	NotifiedAt time.Time
}

// RecordsModel lists the ledger entries of one kind, newest first.
type RecordsModel struct {
	load    SnapshotFunc
	kind    recordsKind
	rows    []recordRow
	loadErr error
	width   int
	height  int
	cursor  int
	loading bool
}

type recordsLoadedMsg struct {
	kind recordsKind
	rows []recordRow
	err  error
}

// NewRecordsModel creates a RecordsModel.
func NewRecordsModel(load SnapshotFunc, kind recordsKind) RecordsModel {
	return RecordsModel{load: load, kind: kind, loading: true}
}

func (m RecordsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RecordsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.load()
		if err != nil {
			return recordsLoadedMsg{kind: m.kind, err: err}
		}
		src := snap.Pulls
		if m.kind == recordsKindIssues {
			src = snap.Issues
		}
		rows := make([]recordRow, 0, len(src))
		for id, rec := range src {
			rows = append(rows, recordRow{
				ID:         id,
				Title:      rec.Title,
				Author:     rec.Author,
				URL:        rec.URL,
				NotifiedAt: rec.NotifiedAt,
			})
		}
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].NotifiedAt.Equal(rows[j].NotifiedAt) {
				return rows[i].NotifiedAt.After(rows[j].NotifiedAt)
			}
			return rows[i].ID > rows[j].ID
		})
		return recordsLoadedMsg{kind: m.kind, rows: rows}
	}
}

func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		if msg.kind != m.kind {
			return m, nil
		}
		m.rows = msg.rows
		m.loadErr = msg.err
		m.loading = false
		return m, tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
			return m.loadCmd()()
		})

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.cursor++
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
	return m, nil
}

func (m *RecordsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m RecordsModel) View() string {
	title := "Notified Pull Requests"
	if m.kind == recordsKindIssues {
		title = "Notified Issues"
	}

	if m.loading && len(m.rows) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render("Loading ledger...")
	}
	if m.loadErr != nil {
		return panelStyle.Width(max(20, m.width-2)).Render(
			badStyle.Render("ledger unavailable: " + m.loadErr.Error()))
	}

	lineLimit := m.height - 8
	if lineLimit < 5 {
		lineLimit = 5
	}
	offset := 0
	if m.cursor >= lineLimit {
		offset = m.cursor - lineLimit + 1
	}

	rows := ""
	for i := offset; i < len(m.rows) && i < offset+lineLimit; i++ {
		row := m.rows[i]
		when := "unknown"
		if !row.NotifiedAt.IsZero() {
			when = row.NotifiedAt.Format("2006-01-02 15:04")
		}
		line := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(8).Foreground(slate).Render(fmt.Sprintf("#%d", row.ID)),
			lipgloss.NewStyle().Width(44).Foreground(ink).Render(truncate(row.Title, 42)),
			lipgloss.NewStyle().Width(18).Foreground(slate).Render(truncate(row.Author, 16)),
			dimStyle.Render(when),
		)
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(accent).Render("> ") + line
		} else {
			line = "  " + line
		}
		rows += line + "\n"
	}
	if len(m.rows) == 0 {
		rows = dimStyle.Render("Nothing notified yet.\n")
	}

	return panelStyle.Width(max(20, m.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render(title),
			dimStyle.Render(fmt.Sprintf("%d records  j/k scroll  r refresh", len(m.rows))),
			"",
			rows,
		),
	)
}
