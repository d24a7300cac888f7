package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/internal/observability"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelTimer
	panelStats
	panelCount
)

const progressWidth = 30

type dashboardModel struct {
	board  *core.Dashboard
	alerts observability.AlertEngine

	timerEvents <-chan core.TimerEvent
	messages    <-chan string
	changes     <-chan struct{}

	activePanel int
	width       int
	height      int

	// Data.
	snapshot    models.Snapshot
	filter      models.TaskFilter
	cursor      int
	alertList   []observability.Alert
	notice      string
	err         error
	adding      bool
	input       string
	alertsError error
}

// timerEventMsg carries a TimerEngine update into the model.
type timerEventMsg core.TimerEvent

// timerNoticeMsg carries a user-facing timer message such as a completed
// work session.
type timerNoticeMsg string

// tasksChangedMsg signals that the task collection was modified.
type tasksChangedMsg struct{}

// streamClosedMsg is sent when a subscription channel has been closed.
type streamClosedMsg struct{}

// Styles that do not depend on the theme.
var (
	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// dashboardStyles holds the theme dependent styles.
type dashboardStyles struct {
	title       lipgloss.Style
	panel       lipgloss.Style
	activePanel lipgloss.Style
	header      lipgloss.Style
	muted       lipgloss.Style
	selected    lipgloss.Style
	clock       lipgloss.Style
	help        lipgloss.Style
}

// stylesFor returns the light or dark palette.
func stylesFor(dark bool) dashboardStyles {
	accent, border, text, muted, bg := lipgloss.Color("62"), lipgloss.Color("240"), lipgloss.Color("235"), lipgloss.Color("245"), lipgloss.Color("230")
	if dark {
		accent, border, text, muted, bg = lipgloss.Color("212"), lipgloss.Color("238"), lipgloss.Color("252"), lipgloss.Color("243"), lipgloss.Color("236")
	}
	return dashboardStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(bg).
			Background(accent).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Foreground(text).
			Padding(1, 2),
		activePanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Foreground(text).
			Padding(1, 2),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		muted:    lipgloss.NewStyle().Foreground(muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		clock:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		help:     lipgloss.NewStyle().Foreground(muted),
	}
}

// newDashboardModel subscribes to board and takes the first snapshot.
// alerts may be nil.
func newDashboardModel(board *core.Dashboard, alerts observability.AlertEngine) dashboardModel {
	m := dashboardModel{
		board:       board,
		alerts:      alerts,
		timerEvents: board.Timer.Subscribe(16),
		messages:    board.Messages().Subscribe(8),
		changes:     board.Changes(8),
		activePanel: panelTasks,
		filter:      models.FilterAll,
	}
	m.refresh()
	return m
}

// unsubscribe releases the timer subscriptions. The task change channel is
// closed with the board.
func (m dashboardModel) unsubscribe() {
	m.board.Timer.Unsubscribe(m.timerEvents)
	m.board.Messages().Unsubscribe(m.messages)
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForTimerEvent(m.timerEvents),
		waitForNotice(m.messages),
		waitForChange(m.changes),
	)
}

func waitForTimerEvent(ch <-chan core.TimerEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return timerEventMsg(ev)
	}
}

func waitForNotice(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return timerNoticeMsg(msg)
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return streamClosedMsg{}
		}
		return tasksChangedMsg{}
	}
}

// refresh re-reads the board and re-evaluates alerts.
func (m *dashboardModel) refresh() {
	m.snapshot = m.board.Snapshot(m.filter)
	if m.cursor >= len(m.snapshot.Tasks) {
		m.cursor = len(m.snapshot.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.alerts != nil {
		m.alertList, m.alertsError = m.alerts.Evaluate()
	}
}

func (m dashboardModel) selectedTask() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Tasks) {
		return models.Task{}, false
	}
	return m.snapshot.Tasks[m.cursor], true
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case timerEventMsg:
		m.snapshot.Timer = msg.State
		m.snapshot.Stats = msg.Stats
		return m, waitForTimerEvent(m.timerEvents)

	case timerNoticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.messages)

	case tasksChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	}

	return m, nil
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	timer := m.board.Timer
	m.err = nil

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.activePanel = (m.activePanel + 1) % panelCount
	case "shift+tab":
		m.activePanel = (m.activePanel - 1 + panelCount) % panelCount

	// Timer controls.
	case "s":
		timer.Start()
	case "p":
		timer.Pause()
	case "r":
		timer.Reset()
	case "w":
		m.err = timer.SwitchMode(models.ModeWork)
	case "b":
		m.err = timer.SwitchMode(models.ModeBreak)

	// Task list.
	case "j", "down":
		if m.cursor < len(m.snapshot.Tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "f":
		m.filter = m.filter.Next()
		m.cursor = 0
	case "n":
		m.adding = true
		m.input = ""
		m.notice = ""
	case "x", " ":
		if task, ok := m.selectedTask(); ok {
			done, err := m.board.Tasks.Complete(task.ID)
			switch {
			case err != nil:
				m.err = err
			case !done:
				m.notice = fmt.Sprintf("%q is already completed", task.Title)
			}
		}
	case "d":
		if task, ok := m.selectedTask(); ok {
			m.err = m.board.Tasks.Delete(task.ID)
		}
	case "t":
		_, m.err = m.board.Preferences.ToggleDarkMode()
	}

	m.refresh()
	m.snapshot.Timer = timer.State()
	return m, nil
}

// updateInput edits the new task title. Enter creates the task, esc cancels.
func (m dashboardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.input = ""
	case tea.KeyEnter:
		task, err := m.board.Tasks.Create(models.TaskInput{Title: m.input})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.adding = false
		m.input = ""
		m.err = nil
		m.notice = fmt.Sprintf("Added %q", task.Title)
		m.refresh()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	st := stylesFor(m.snapshot.DarkMode)
	title := st.title.Render(" focusboard ")
	help := st.help.Render(m.helpLine())

	tasksPanel := m.renderTasksPanel(st)
	timerPanel := m.renderTimerPanel(st)
	statsPanel := m.renderStatsPanel(st)

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		tasksPanel = m.applyPanelStyle(st, panelTasks, tasksPanel, colWidth-4)
		timerPanel = m.applyPanelStyle(st, panelTimer, timerPanel, colWidth-4)
		statsPanel = m.applyPanelStyle(st, panelStats, statsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasksPanel, timerPanel, statsPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		tasksPanel = m.applyPanelStyle(st, panelTasks, tasksPanel, panelWidth)
		timerPanel = m.applyPanelStyle(st, panelTimer, timerPanel, panelWidth)
		statsPanel = m.applyPanelStyle(st, panelStats, statsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, timerPanel, tasksPanel, statsPanel)
	}

	status := ""
	switch {
	case m.err != nil:
		status = errorStyle.Render("Error: " + m.err.Error())
	case m.notice != "":
		status = st.selected.Render(m.notice)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, body, status, help)
}

func (m dashboardModel) helpLine() string {
	if m.adding {
		return "enter: add task | esc: cancel"
	}
	return "s/p/r: start/pause/reset | w/b: work/break | n: new | x: complete | d: delete | f: filter | t: theme | tab: panel | q: quit"
}

func (m dashboardModel) applyPanelStyle(st dashboardStyles, panel int, content string, width int) string {
	style := st.panel
	if m.activePanel == panel {
		style = st.activePanel
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel(st dashboardStyles) string {
	var b strings.Builder
	b.WriteString(st.header.Render(fmt.Sprintf("Tasks (%s)", m.filter)))
	b.WriteString("\n")

	if m.adding {
		b.WriteString(fmt.Sprintf("  New task: %s_\n\n", m.input))
	}

	if len(m.snapshot.Tasks) == 0 {
		b.WriteString(st.muted.Render("  No tasks found."))
		return b.String()
	}

	for i, task := range m.snapshot.Tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		mark := "[ ]"
		if task.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", mark, styleForPriority(task.Priority).Render(priorityTag(task.Priority)), task.Title)
		if task.DueDate != "" {
			line += st.muted.Render(" due " + task.DueDate)
		}
		switch {
		case i == m.cursor:
			line = st.selected.Render(cursor) + line
		case task.Completed:
			line = cursor + st.muted.Render(line)
		default:
			line = cursor + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m dashboardModel) renderTimerPanel(st dashboardStyles) string {
	var b strings.Builder
	state := m.snapshot.Timer

	label := "Work"
	if state.Mode == models.ModeBreak {
		label = "Break"
	}
	b.WriteString(st.header.Render(label))
	b.WriteString("\n")
	b.WriteString("  " + st.clock.Render(state.Display()))
	b.WriteString("\n\n")

	filled := int(state.Progress() * progressWidth)
	b.WriteString("  " + strings.Repeat("█", filled) + st.muted.Render(strings.Repeat("░", progressWidth-filled)))
	b.WriteString("\n\n")

	if state.Running {
		b.WriteString("  running")
	} else {
		b.WriteString(st.muted.Render("  paused"))
	}
	return b.String()
}

func (m dashboardModel) renderStatsPanel(st dashboardStyles) string {
	var b strings.Builder
	b.WriteString(st.header.Render("Statistics"))
	b.WriteString("\n")

	stats := m.snapshot.Stats
	counts := m.snapshot.Counts
	lines := []struct {
		label string
		value string
	}{
		{"Sessions", fmt.Sprintf("%d", stats.CompletedSessions)},
		{"Focused", stats.FocusedDisplay()},
		{"Tasks", fmt.Sprintf("%d", counts.Total)},
		{"Pending", fmt.Sprintf("%d", counts.Pending)},
		{"Completed", fmt.Sprintf("%d", counts.Completed)},
	}
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", l.label, l.value))
	}

	switch {
	case m.alertsError != nil:
		b.WriteString("\n" + errorStyle.Render("  alerts: "+m.alertsError.Error()))
	case len(m.alertList) > 0:
		b.WriteString("\n")
		for _, a := range m.alertList {
			sev := styleForSeverity(a.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
			b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.Message))
		}
	}

	return b.String()
}

func priorityTag(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "!!!"
	case models.PriorityLow:
		return "!  "
	default:
		return "!! "
	}
}

func styleForPriority(p models.Priority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return severityHigh
	case models.PriorityLow:
		return severityLow
	default:
		return severityMedium
	}
}

func styleForSeverity(severity observability.AlertSeverity) lipgloss.Style {
	switch severity {
	case observability.SeverityHigh:
		return severityHigh
	case observability.SeverityMedium:
		return severityMedium
	case observability.SeverityLow:
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI with tasks, focus timer and statistics",
	Long: `Launch an interactive terminal dashboard showing the task list, the
focus timer and lifetime statistics in a live-updating view.

Press n to add a task, x to complete the selected one, s to start the timer
and q to quit. The full key list is shown at the bottom of the screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}
		m := newDashboardModel(Board, AlertEngine)
		defer m.unsubscribe()

		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
