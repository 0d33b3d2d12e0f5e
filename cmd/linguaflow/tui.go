package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/linguaflow/core"
	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/koscakluka/linguaflow/internal/config"
)

const translateDebounce = 600 * time.Millisecond

// controller is the part of the orchestrator the terminal UI drives.
type controller interface {
	Configure(continuous bool, language string)
	Start(ctx context.Context, opts ...orchestration.StartOption)
	Stop(ctx context.Context)
	Speak(ctx context.Context, text, language string)
	Translate(ctx context.Context, text, from, to string, onResult func(translation.Result))
	SetAutoSpeak(autoSpeak bool)
	AutoSpeak() bool
}

type (
	transcriptMsg struct {
		text  string
		final bool
	}
	stateMsg       struct{ state orchestration.State }
	errMsg         struct{ err error }
	translationMsg struct{ result translation.Result }
	debounceMsg    struct{ seq int }
	eventMsg       struct{ event events.Event }
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	interimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type model struct {
	ctx  context.Context
	ctrl controller
	// send delivers messages from orchestrator callbacks, set once the
	// program exists.
	send func(tea.Msg)

	source, target string
	continuous     bool
	bridgeURL      string

	state       orchestration.State
	transcript  string
	interim     bool
	translation translation.Result
	speaking    bool
	err         error
	seq         int

	input   textinput.Model
	spinner spinner.Model
	width   int
}

func newModel(ctx context.Context, ctrl controller, cfg *config.Config) *model {
	input := textinput.New()
	input.Placeholder = "type to translate, enter to send"
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &model{
		ctx:        ctx,
		ctrl:       ctrl,
		send:       func(tea.Msg) {},
		source:     cfg.Languages.Source,
		target:     cfg.Languages.Target,
		continuous: cfg.Recognition.Continuous,
		input:      input,
		spinner:    s,
		width:      80,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case transcriptMsg:
		m.transcript = msg.text
		m.interim = !msg.final
		return m, m.scheduleTranslation()

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.translate(m.transcript)
		return m, nil

	case translationMsg:
		m.translation = msg.result
		return m, nil

	case stateMsg:
		m.state = msg.state
		if msg.state != orchestration.StateError {
			m.err = nil
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case eventMsg:
		switch event := msg.event.(type) {
		case events.SpeechRequested:
			m.speaking = true
		case events.SpeechRendered, events.SpeechSuperseded:
			m.speaking = false
		case events.SpeechFailed:
			m.speaking = false
			m.err = event.Err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.ctrl.Stop(m.ctx)
		return m, tea.Quit
	case "ctrl+l":
		m.toggleListening()
	case "tab":
		m.swapLanguages()
	case "ctrl+o":
		m.source = nextLanguage(m.source)
		m.ctrl.Configure(m.continuous, m.source)
		return m, m.scheduleTranslation()
	case "ctrl+t":
		m.target = nextLanguage(m.target)
		return m, m.scheduleTranslation()
	case "ctrl+s":
		if m.translation.Text != "" {
			m.ctrl.Speak(m.ctx, m.translation.Text, m.target)
		}
	case "ctrl+a":
		m.ctrl.SetAutoSpeak(!m.ctrl.AutoSpeak())
	case "ctrl+x":
		m.reset()
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.transcript = text
		m.interim = false
		m.seq++
		m.translate(text)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) toggleListening() {
	if m.state == orchestration.StateListening {
		m.ctrl.Stop(m.ctx)
		return
	}

	m.err = nil
	m.ctrl.Configure(m.continuous, m.source)
	m.ctrl.Start(m.ctx,
		orchestration.WithTranscriptCallback(func(transcript string, isFinal bool) {
			m.send(transcriptMsg{text: transcript, final: isFinal})
		}),
		orchestration.WithStateChangedCallback(func(state orchestration.State) {
			m.send(stateMsg{state: state})
		}),
		orchestration.WithErrorCallback(func(err error) {
			m.send(errMsg{err: err})
		}),
	)
}

// swapLanguages exchanges source and target, the translation becomes the
// new source text.
func (m *model) swapLanguages() {
	m.source, m.target = m.target, m.source
	m.ctrl.Configure(m.continuous, m.source)

	if m.translation.Text != "" && m.translation.Source != translation.SourcePlaceholder {
		m.transcript, m.translation = m.translation.Text, translation.Result{Text: m.transcript}
		m.seq++
		m.translate(m.transcript)
	}
}

func (m *model) reset() {
	if m.state == orchestration.StateListening {
		m.ctrl.Stop(m.ctx)
	}
	m.transcript = ""
	m.interim = false
	m.translation = translation.Result{}
	m.err = nil
	m.seq++
	m.input.Reset()
}

func (m *model) scheduleTranslation() tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(translateDebounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *model) translate(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	m.ctrl.Translate(m.ctx, text, m.source, m.target, func(result translation.Result) {
		m.send(translationMsg{result: result})
	})
}

func nextLanguage(current string) string {
	for i, language := range translation.Languages {
		if language.Code == current {
			return translation.Languages[(i+1)%len(translation.Languages)].Code
		}
	}
	return translation.Languages[0].Code
}

func (m *model) View() string {
	width := max(m.width-4, 20)
	var b strings.Builder

	b.WriteString(titleStyle.Render("linguaflow"))
	b.WriteString("  ")
	b.WriteString(fmt.Sprintf("%s → %s", translation.LanguageName(m.source), translation.LanguageName(m.target)))
	b.WriteString("\n")

	status := m.state.String()
	if m.state == orchestration.StateListening {
		status = m.spinner.View() + " " + status
	}
	if m.speaking {
		status += ", speaking"
	}
	if m.ctrl.AutoSpeak() {
		status += ", autospeak on"
	}
	b.WriteString(labelStyle.Render(status))
	b.WriteString("\n")
	if m.bridgeURL != "" {
		b.WriteString(labelStyle.Render("microphone page: " + m.bridgeURL))
		b.WriteString("\n")
	}

	transcript := wordwrap.String(m.transcript, width)
	if m.interim {
		transcript = interimStyle.Render(transcript)
	}
	b.WriteString(panelStyle.Width(width).Render(labelStyle.Render("heard") + "\n" + transcript))
	b.WriteString("\n")

	translated := wordwrap.String(m.translation.Text, width)
	if m.translation.Degraded {
		translated = degradedStyle.Render(translated + " (" + m.translation.Source + ")")
	}
	b.WriteString(panelStyle.Width(width).Render(labelStyle.Render("translation") + "\n" + translated))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(wordwrap.String("error: "+m.err.Error(), width)))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("ctrl+l listen  tab swap  ctrl+o/ctrl+t languages  ctrl+s speak  ctrl+a autospeak  ctrl+x reset  esc quit"))
	return b.String()
}
