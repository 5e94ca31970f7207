// Package tui provides the Bubble Tea trainer interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/cstrafe/internal/clock"
	"github.com/verte-zerg/cstrafe/internal/model"
	"github.com/verte-zerg/cstrafe/internal/strafe"
	"github.com/verte-zerg/cstrafe/internal/trainer"
)

// Session is the part of the trainer the UI drives.
type Session interface {
	Step(now model.Timestamp) trainer.Frame
	Reset(now model.Timestamp)
	Snapshot(now model.Timestamp) trainer.Snapshot
}

type tickMsg time.Time

type keyMap struct {
	Reset key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap(quitLabel string) keyMap {
	return keyMap{
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset session")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp(strings.ToLower(quitLabel)+"/ctrl+c", "quit")),
	}
}

// Model implements the Bubble Tea trainer UI.
type Model struct {
	session  Session
	interval time.Duration
	now      func() model.Timestamp
	keys     keyMap
	help     help.Model

	width  int
	height int

	lost     bool
	overflow int
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	mainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	subStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	lostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3A3A3A")).Padding(1, 4)
	trendStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	statsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BFBFBF"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs the trainer UI. fps sets the redraw and step rate.
func NewModel(session Session, fps int, quitLabel string) *Model {
	if fps <= 0 {
		fps = 120
	}
	return &Model{
		session:  session,
		interval: time.Second / time.Duration(fps),
		now:      clock.Now,
		keys:     newKeyMap(quitLabel),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		frame := m.session.Step(m.now())
		if frame.Overflow {
			m.overflow++
		}
		if frame.Lost {
			m.lost = true
		}
		if frame.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.tick()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.session.Reset(m.now())
			m.overflow = 0
			return m, nil
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.session.Snapshot(m.now())

	sections := []string{
		titleStyle.Render("COUNTER-STRAFE TRAINER"),
		cardStyle.Render(renderCard(snap.Display)),
	}
	if m.lost || snap.Frozen {
		sections = append(sections, lostStyle.Render("Keyboard capture lost. Restart to continue."))
	} else if m.overflow > 0 {
		sections = append(sections, warningStyle.Render(fmt.Sprintf("Input dropped %d time(s); timings may be off", m.overflow)))
	}
	sections = append(sections, renderFeed(snap.Feed))
	sections = append(sections, statsStyle.Render(renderStats(snap)))
	if trend := renderTrend(snap.Holds, 40); trend != "" {
		sections = append(sections, trend)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)

	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	return footerStyle.Render(m.help.View(m.keys))
}

func renderCard(d strafe.DisplayInfo) string {
	if d.ShowTimer {
		timer := bandStyle(d.Band).Bold(true).Render(fmt.Sprintf("%dms", d.Hold.Milliseconds()))
		target := targetStyle.Render(fmt.Sprintf("TARGET: %dms", strafe.OptimalHold.Milliseconds()))
		return lipgloss.JoinVertical(lipgloss.Center, timer, target)
	}
	return lipgloss.JoinVertical(lipgloss.Center, mainStyle.Render(d.Main), subStyle.Render(d.Sub))
}

func bandStyle(b strafe.Band) lipgloss.Style {
	switch b {
	case strafe.BandPerfect:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(perfectColor))
	case strafe.BandGood:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(goodColor))
	case strafe.BandTooFast, strafe.BandTooSlow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(failedColor))
	default:
		return mainStyle
	}
}
