package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/ledger"
)

// DashboardModel shows the overview: watched repositories and how many
// notifications have gone out per kind.
type DashboardModel struct {
	cfg      *config.Config
	load     SnapshotFunc
	snap     ledger.Snapshot
	loadErr  error
	width    int
	height   int
	lastLoad time.Time
	loading  bool
}

// dashLoadedMsg carries a freshly loaded ledger snapshot.
type dashLoadedMsg struct {
	snap ledger.Snapshot
	err  error
}

// NewDashboardModel creates a DashboardModel.
func NewDashboardModel(cfg *config.Config, load SnapshotFunc) DashboardModel {
	return DashboardModel{cfg: cfg, load: load, loading: true}
}

func (d DashboardModel) Init() tea.Cmd {
	return d.loadCmd()
}

func (d DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := d.load()
		return dashLoadedMsg{snap: snap, err: err}
	}
}

func (d DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashLoadedMsg:
		d.snap = msg.snap
		d.loadErr = msg.err
		d.loading = false
		d.lastLoad = time.Now()
		// Refresh every 10 seconds.
		return d, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return d.loadCmd()()
		})
	case tea.KeyMsg:
		if msg.String() == "r" {
			d.loading = true
			return d, d.loadCmd()
		}
	}
	return d, nil
}

func (d *DashboardModel) SetSize(w, h int) {
	d.width = w
	d.height = h
}

func (d DashboardModel) View() string {
	if d.loading && d.lastLoad.IsZero() {
		return panelStyle.Width(max(20, d.width-2)).Render("Loading ledger...")
	}
	if d.loadErr != nil {
		return panelStyle.Width(max(20, d.width-2)).Render(
			badStyle.Render("ledger unavailable: " + d.loadErr.Error()))
	}

	cardW := 22
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCounter("Pull Requests", len(d.snap.Pulls), okStyle, cardW),
		renderCounter("Issues", len(d.snap.Issues), lipgloss.NewStyle().Foreground(blue), cardW),
		renderCounter("Repositories", len(d.cfg.Monitor.Repositories), lipgloss.NewStyle().Foreground(accent), cardW),
	)

	lineLimit := d.height - 12
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, repo := range d.cfg.Monitor.Repositories {
		if i >= lineLimit {
			break
		}
		rows += lipgloss.NewStyle().Foreground(ink).Render(repo) + "\n"
	}
	if len(d.cfg.Monitor.Repositories) == 0 {
		rows = dimStyle.Render("No repositories configured. Run: repowatch onboard\n")
	}

	updated := "never"
	if !d.lastLoad.IsZero() {
		updated = d.lastLoad.Format("15:04:05")
	}
	refreshInfo := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
		"   ",
		dimStyle.Render("updated "+updated),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(summary),
		panelStyle.Width(max(20, d.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Watched Repositories"),
				dimStyle.Render(fmt.Sprintf("provider: %s  interval: %s", d.cfg.Monitor.Provider, d.cfg.Monitor.Interval)),
				rows,
				refreshInfo,
			),
		),
	)
}

func renderCounter(label string, count int, style lipgloss.Style, width int) string {
	return boxStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(fmt.Sprintf("%d", count)),
			dimStyle.Render(label),
		),
	) + "  "
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max+1:]
}
