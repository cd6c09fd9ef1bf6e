package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	tea "github.com/charmbracelet/bubbletea"
)

// dashboardModel is the Bubble Tea model for the live lockup status screen.
type dashboardModel struct {
	view       *lockup.View
	lang       Lang
	network    string
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    func() (lockup.View, error)
	err        string
}

type tickMsg time.Time
type viewFetchedMsg lockup.View
type viewErrorMsg string

// NewDashboard creates a Bubble Tea program that reloads the lockup status
// every interval.
func NewDashboard(network string, lang Lang, interval time.Duration, fetcher func() (lockup.View, error)) *tea.Program {
	return tea.NewProgram(newDashboardModel(network, lang, interval, fetcher))
}

func newDashboardModel(network string, lang Lang, interval time.Duration, fetcher func() (lockup.View, error)) dashboardModel {
	return dashboardModel{
		network:  network,
		lang:     lang,
		interval: interval,
		fetcher:  fetcher,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case viewFetchedMsg:
		v := lockup.View(msg)
		m.view = &v
		m.lastUpdate = time.Now()
		m.err = ""

	case viewErrorMsg:
		m.err = string(msg)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ Live Lockup Status · "+m.network) + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · r to refresh · q to quit", updated)) + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}

	if m.view == nil {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
	} else {
		sb.WriteString(RenderView(*m.view, m.lang))
	}

	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		v, err := m.fetcher()
		if err != nil {
			return viewErrorMsg(err.Error())
		}
		return viewFetchedMsg(v)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
