// ABOUTME: Bubbletea model for the ultradian flow timer.
// ABOUTME: Keys and huh prompts drive a flow.Machine; a one-second tick advances it.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/lifeos/internal/flow"
)

type tickMsg time.Time

type formKind int

const (
	formNone formKind = iota
	formMission
	formCapture
	formEffort
)

// FlowModel renders and drives a flow session.
type FlowModel struct {
	machine *flow.Machine
	now     func() time.Time
	help    help.Model

	width  int
	height int

	form     *huh.Form
	formKind formKind
	text     *string
	notes    *string
	rating   *string

	status string
}

// NewFlowModel wraps m. A nil now uses time.Now.
func NewFlowModel(m *flow.Machine, now func() time.Time) FlowModel {
	if now == nil {
		now = time.Now
	}
	return FlowModel{
		machine: m,
		now:     now,
		help:    help.New(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the ticker.
func (m FlowModel) Init() tea.Cmd {
	return tickCmd()
}

// FormActive reports whether a prompt currently owns the keyboard.
func (m FlowModel) FormActive() bool {
	return m.formKind != formNone && m.form != nil
}

// Update implements tea.Model.
func (m FlowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.machine.Tick()
		if m.FormActive() {
			form, cmd := m.form.Update(msg)
			if f, ok := form.(*huh.Form); ok {
				m.form = f
			}
			return m, tea.Batch(tickCmd(), cmd)
		}
		return m, tickCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	if m.FormActive() {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FlowModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	phase := m.machine.Phase()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Start) && phase == flow.PhaseIdle:
		return m.openForm(formMission)
	case key.Matches(msg, keys.Confirm) && phase == flow.PhaseAnchor:
		m.machine.ResolveAnchor(true)
		m.status = "Focus started"
	case key.Matches(msg, keys.Cancel) && phase == flow.PhaseAnchor:
		m.machine.ResolveAnchor(false)
		m.status = ""
	case key.Matches(msg, keys.Confirm) && phase == flow.PhaseEffort:
		return m.openForm(formEffort)
	case key.Matches(msg, keys.Pause):
		m.machine.ToggleTimer()
	case key.Matches(msg, keys.Capture):
		return m.openForm(formCapture)
	case key.Matches(msg, keys.Break) && phase == flow.PhaseRefraction:
		m.machine.StartBreak(flow.DefaultBreak)
		m.status = "Break started"
	case key.Matches(msg, keys.Finish) && phase == flow.PhaseRefraction:
		m.machine.Finish()
		m.status = "Session complete"
	case key.Matches(msg, keys.Reset):
		m.machine.ResetTimer()
		m.status = "Reset"
	}
	return m, nil
}

func (m FlowModel) openForm(kind formKind) (tea.Model, tea.Cmd) {
	m.formKind = kind
	m.text = new(string)
	m.notes = new(string)
	m.rating = new(string)

	switch kind {
	case formMission:
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Mission").
					Placeholder("What will this block produce?").
					Value(m.text),
			),
		)
	case formCapture:
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Capture thought").Value(m.text),
			),
		)
	case formEffort:
		options := []huh.Option[string]{huh.NewOption("Skip", "0")}
		for i := 1; i <= 10; i++ {
			options = append(options, huh.NewOption(strconv.Itoa(i), strconv.Itoa(i)))
		}
		*m.rating = "0"
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().Title("Perceived effort").Options(options...).Value(m.rating),
				huh.NewText().Title("Notes").Value(m.notes),
			),
		)
	}
	return m, m.form.Init()
}

func (m FlowModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.applyForm()
		m.closeForm()
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

// applyForm feeds the collected prompt values into the machine.
func (m *FlowModel) applyForm() {
	switch m.formKind {
	case formMission:
		m.machine.StartSession(*m.text)
		m.status = "Anchor: clear the desk, then press enter"
	case formCapture:
		if strings.TrimSpace(*m.text) != "" {
			m.machine.HandleCapture(*m.text)
			m.status = "Thought captured"
		}
	case formEffort:
		rating, _ := strconv.Atoi(*m.rating)
		if s, ok := m.machine.SubmitEffort(rating, *m.notes); ok {
			m.status = fmt.Sprintf("Logged %d focus minutes", s.FocusMinutes)
		}
	}
}

func (m *FlowModel) closeForm() {
	m.form = nil
	m.formKind = formNone
}

// View implements tea.Model.
func (m FlowModel) View() string {
	st := m.machine.State()

	title := titleStyle.Render("Flow")
	if st.Mission != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, mutedStyle.Render("  "+st.Mission))
	}

	var body string
	if m.FormActive() {
		body = m.form.View()
	} else {
		body = m.phaseView(st)
	}

	parts := []string{title, "", body}
	if n := len(st.Thoughts); n > 0 {
		parts = append(parts, "", mutedStyle.Render(fmt.Sprintf("%d captured thought(s)", n)))
	}
	if m.status != "" {
		parts = append(parts, "", highlightStyle.Render(m.status))
	}
	parts = append(parts, "", m.help.View(keys))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m FlowModel) phaseView(st flow.State) string {
	switch st.Phase {
	case flow.PhaseIdle:
		return mutedStyle.Render("Press s to set a mission and begin a 90 minute block.")
	case flow.PhaseAnchor:
		return lipgloss.JoinVertical(lipgloss.Left,
			accentStyle.Render("Anchor"),
			"Close tabs, silence notifications, take three slow breaths.",
			mutedStyle.Render("enter to begin focus, esc to cancel"),
		)
	case flow.PhaseFocus, flow.PhaseBreak:
		label := "Focus"
		if st.Phase == flow.PhaseBreak {
			label = "Break"
		}
		if !st.Running {
			label += " (paused)"
		}
		lines := []string{
			accentStyle.Render(label),
			timerStyle.Render(FormatCountdown(st.Remaining)),
		}
		if z := m.machine.Zone(m.now()); z != nil {
			style := zoneStyles[z.Index%len(zoneStyles)]
			lines = append(lines, style.Render("Zone: "+z.Name))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case flow.PhaseEffort:
		return lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Block complete"),
			mutedStyle.Render("enter to rate perceived effort"),
		)
	case flow.PhaseRefraction:
		return lipgloss.JoinVertical(lipgloss.Left,
			accentStyle.Render("Refraction"),
			"Let the work settle before switching context.",
			mutedStyle.Render("b for a 20 minute break, f to finish"),
		)
	case flow.PhaseComplete:
		return lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Session complete"),
			mutedStyle.Render("r to start over, q to quit"),
		)
	}
	return ""
}

// FormatCountdown renders d as MM:SS, or H:MM:SS past an hour.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}

// RunFlow runs the timer full screen until the user quits.
func RunFlow(m *flow.Machine) error {
	p := tea.NewProgram(NewFlowModel(m, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
