// Package tui shows a live progress view while the wrapped build runs.
// Cargo's own incremental progress arrives on the child's stderr; the
// view mirrors its most recent line next to a spinner and elapsed time.
// Pipeline status lines are printed above the view so they survive it.
// The build's stdout stays fully buffered for decoding either way.
package tui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted is returned when the user quits the progress view
// before the build finishes.
var ErrInterrupted = errors.New("build interrupted")

type buildOutputMsg struct {
	data string
}

type statusLineMsg struct {
	line string
}

type buildDoneMsg struct {
	err error
}

type timerTickMsg struct{}

type outputWriter struct {
	ch chan<- tea.Msg
}

func (w outputWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.ch == nil {
		return len(p), nil
	}
	w.ch <- buildOutputMsg{data: string(append([]byte{}, p...))}
	return len(p), nil
}

// statusWriter forwards complete lines of pipeline status output to the
// view, which prints them above itself instead of racing its renderer.
type statusWriter struct {
	ch  chan<- tea.Msg
	buf []byte
}

func (w *statusWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := strings.TrimRight(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		w.ch <- statusLineMsg{line: line}
	}
}

// flush sends any trailing partial line.
func (w *statusWriter) flush() {
	if len(w.buf) > 0 {
		w.ch <- statusLineMsg{line: string(w.buf)}
		w.buf = nil
	}
}

func listenOutputCmd(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return <-ch
	}
}

func tickCmd() tea.Cmd {
	return func() tea.Msg {
		<-time.After(1 * time.Second)
		return timerTickMsg{}
	}
}

var statusStyle = lipgloss.NewStyle().Faint(true)

type model struct {
	title       string
	spinner     spinner.Model
	started     time.Time
	elapsed     time.Duration
	status      string
	done        bool
	interrupted bool
	err         error
	ch          <-chan tea.Msg
}

func newModel(title string, ch <-chan tea.Msg) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		title:   title,
		spinner: s,
		started: time.Now(),
		ch:      ch,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenOutputCmd(m.ch), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case buildOutputMsg:
		if line := lastLine(msg.data); line != "" {
			m.status = line
		}
		return m, listenOutputCmd(m.ch)
	case statusLineMsg:
		return m, tea.Batch(tea.Println(msg.line), listenOutputCmd(m.ch))
	case buildDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case timerTickMsg:
		m.elapsed = time.Since(m.started).Truncate(time.Second)
		return m, tickCmd()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m model) View() string {
	if m.done {
		return ""
	}
	line := fmt.Sprintf("%s %s (%s)", m.spinner.View(), m.title, m.elapsed)
	if m.status != "" {
		line += "\n" + statusStyle.Render(m.status)
	}
	return line + "\n"
}

// lastLine returns the trailing non-empty line of a chunk of output.
func lastLine(data string) string {
	lines := strings.Split(strings.TrimRight(data, "\r\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// RunBuild displays the progress view while run executes. The first
// writer handed to run carries pipeline status lines, the second the
// child's live stderr. Returns run's error, or ErrInterrupted when the
// user quit the view first.
func RunBuild(title string, run func(out, stderr io.Writer) error) error {
	ch := make(chan tea.Msg, 64)
	go func() {
		status := &statusWriter{ch: ch}
		err := run(status, outputWriter{ch: ch})
		status.flush()
		ch <- buildDoneMsg{err: err}
	}()

	final, err := tea.NewProgram(newModel(title, ch)).Run()
	if err != nil {
		return fmt.Errorf("run progress view: %w", err)
	}
	m := final.(model)
	if m.interrupted {
		return ErrInterrupted
	}
	return m.err
}
