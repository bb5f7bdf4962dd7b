// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lumen/internal/buildpipeline"
)

const (
	statusColumn = 10
	nsColumn     = 18
)

type unitRow struct {
	path      string
	namespace string
	stage     buildpipeline.Stage
	status    buildpipeline.Status
	elapsed   time.Duration
	err       error
}

func (r unitRow) label() string {
	return r.status.Label(r.stage)
}

type buildModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []unitRow
	byPath  map[string]int
	stage   buildpipeline.Stage
	failure error
	width   int
	done    bool
}

type eventMsg buildpipeline.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per unit file.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	return newBuildModel(title, files, events)
}

func newBuildModel(title string, files []string, events <-chan buildpipeline.Event) *buildModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &buildModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]unitRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = unitRow{path: file, stage: buildpipeline.StageLoad, status: buildpipeline.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *buildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// сборка идёт в фоне; ctrl+c только закрывает экран
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *buildModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// apply folds one event into the model and returns the bar animation, if any.
func (m *buildModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		m.stage = ev.Stage
		if ev.Status == buildpipeline.StatusError && ev.Err != nil && m.failure == nil {
			m.failure = ev.Err
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	if row.status.Finished() && ev.Stage != buildpipeline.StageLink {
		return nil
	}
	row.stage = ev.Stage
	row.status = ev.Status
	if ev.Namespace != "" {
		row.namespace = ev.Namespace
	}
	if ev.Status.Finished() {
		row.elapsed = ev.Elapsed
		row.err = ev.Err
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *buildModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range m.rows {
		if r.status.Finished() {
			sum++
			continue
		}
		if r.status == buildpipeline.StatusWorking {
			sum += r.stage.Weight()
		}
	}
	return sum / float64(len(m.rows))
}

// tally counts finished units by outcome.
func (m *buildModel) tally() (lowered, cached, failed int) {
	for _, r := range m.rows {
		switch r.status {
		case buildpipeline.StatusDone:
			lowered++
		case buildpipeline.StatusCached:
			cached++
		case buildpipeline.StatusError:
			failed++
		}
	}
	return lowered, cached, failed
}

func (m *buildModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.header()))
	b.WriteString("\n\n")

	pathWidth := max(m.width-statusColumn-nsColumn-14, 16)
	for _, r := range m.rows {
		label := statusStyle(r.status).Render(fmt.Sprintf("%*s", statusColumn, r.label()))
		ns := fit(r.namespace, nsColumn)
		line := fmt.Sprintf("  %s  %-*s %s", label, nsColumn, ns, fit(r.path, pathWidth))
		if r.status.Finished() && r.elapsed > 0 {
			line += dim.Render(fmt.Sprintf("  %dms", r.elapsed.Milliseconds()))
		}
		if r.err != nil {
			line += "  " + statusStyle(r.status).Render(fit(r.err.Error(), 40))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	b.WriteString(m.summary())
	return b.String()
}

func (m *buildModel) header() string {
	h := m.title
	if active := m.stage.Active(); active != "" && !m.done {
		h = fmt.Sprintf("%s (%s)", h, active)
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func (m *buildModel) summary() string {
	lowered, cached, failed := m.tally()
	line := fmt.Sprintf("%d lowered, %d cached", lowered, cached)
	if failed > 0 {
		line += ", " + statusStyle(buildpipeline.StatusError).Render(fmt.Sprintf("%d failed", failed))
	}
	line += "\n"
	if m.failure != nil {
		line += statusStyle(buildpipeline.StatusError).Render(fit(m.failure.Error(), m.width-2)) + "\n"
	}
	return line
}

var dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func statusStyle(s buildpipeline.Status) lipgloss.Style {
	switch s {
	case buildpipeline.StatusDone, buildpipeline.StatusCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case buildpipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case buildpipeline.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
}

// fit clips value to width display cells.
func fit(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
