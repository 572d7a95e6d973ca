package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/poliverai/poliver/types"
)

// Outcome is the settled result of the stream driving the view.
type Outcome struct {
	Result *types.AnalysisResult
	Err    error
}

// progressMsg carries one stream progress update into the model.
type progressMsg types.ProgressUpdate

// doneMsg carries the stream's settled outcome into the model.
type doneMsg Outcome

// VerifyModel is the Bubble Tea model for a live verification run.
type VerifyModel struct {
	docName string
	updates <-chan types.ProgressUpdate
	outcome <-chan Outcome
	// cancel aborts the underlying stream; invoked on Ctrl+C/q.
	cancel func()

	spinner  spinner.Model
	bar      progress.Model
	percent  int
	message  string
	canceled bool
	done     bool
	result   Outcome
}

// NewVerifyModel creates a verification view fed by the given channels.
// The outcome channel must deliver exactly one value after updates stop.
func NewVerifyModel(docName string, updates <-chan types.ProgressUpdate, outcome <-chan Outcome, cancel func()) VerifyModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = TitleStyle

	return VerifyModel{
		docName: docName,
		updates: updates,
		outcome: outcome,
		cancel:  cancel,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
		message: "submitting document",
	}
}

// Init implements tea.Model.
func (m VerifyModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

// listen waits for the next stream update or the settled outcome.
func (m VerifyModel) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case u, ok := <-m.updates:
			if ok {
				return progressMsg(u)
			}
			return doneMsg(<-m.outcome)
		case o := <-m.outcome:
			return doneMsg(o)
		}
	}
}

// Update implements tea.Model.
func (m VerifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Cancel the stream and wait for it to wind down; the
			// outcome message quits the program.
			if !m.canceled && m.cancel != nil {
				m.canceled = true
				m.cancel()
			}
			return m, nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil

	case progressMsg:
		m.percent = msg.Progress
		if msg.Message != "" {
			m.message = msg.Message
		}
		return m, m.listen()

	case doneMsg:
		m.done = true
		m.result = Outcome(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m VerifyModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Analyzing " + m.docName))
	b.WriteString("\n\n")

	switch {
	case m.done && m.result.Err != nil:
		b.WriteString(ErrorStyle.Render("✗ " + m.result.Err.Error()))
	case m.done:
		verdict := m.result.Result.Verdict
		b.WriteString(VerdictStyle(verdict).Render("✓ verdict: " + verdict))
		b.WriteString(fmt.Sprintf("\n%s\n", MessageStyle.Render(fmt.Sprintf("score: %.2f", m.result.Result.Score))))
	case m.canceled:
		b.WriteString(MessageStyle.Render("canceling..."))
	default:
		b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), MessageStyle.Render(m.message)))
		b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	}

	help := HelpStyle.Render("Press q or Ctrl+C to cancel")
	if m.done {
		help = ""
	}
	return BoxStyle.Render(b.String()) + "\n" + help
}

// Outcome returns the settled stream result after the program exits.
func (m VerifyModel) Outcome() Outcome {
	return m.result
}

// RunVerify runs the live view until the stream settles or the user
// cancels, and returns the stream's outcome.
func RunVerify(docName string, updates <-chan types.ProgressUpdate, outcome <-chan Outcome, cancel func()) (Outcome, error) {
	model := NewVerifyModel(docName, updates, outcome, cancel)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("tui: %w", err)
	}
	m, ok := final.(VerifyModel)
	if !ok {
		return Outcome{}, fmt.Errorf("tui: unexpected final model %T", final)
	}
	return m.Outcome(), nil
}
