package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/logging"
)

// logSource tags key and evaluation log lines from the terminal UI.
const logSource = "tui"

// calculatorKeyMap lists the bindings shown in help. Digits and operators
// are not matched through bindings; every key press is forwarded to the
// display by name.
type calculatorKeyMap struct {
	Digits    key.Binding
	Operators key.Binding
	Evaluate  key.Binding
	Backspace key.Binding
	Clear     key.Binding
	Input     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k calculatorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Evaluate, k.Clear, k.Input, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k calculatorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Digits, k.Operators, k.Evaluate},
		{k.Backspace, k.Clear, k.Input},
		{k.Help, k.Quit},
	}
}

// inputKeyMap applies while the expression input line is open.
type inputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Cancel}}
}

func newCalculatorKeyMap() calculatorKeyMap {
	return calculatorKeyMap{
		Digits: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "."),
			key.WithHelp("0-9 .", "digits"),
		),
		Operators: key.NewBinding(
			key.WithKeys("+", "-", "*", "x", "/"),
			key.WithHelp("+ - * x /", "operators"),
		),
		Evaluate: key.NewBinding(
			key.WithKeys("enter", "="),
			key.WithHelp("enter/=", "evaluate"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc", "c", "C"),
			key.WithHelp("esc/c", "clear"),
		),
		Input: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "type expression"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryEntry is one evaluation.
type HistoryEntry struct {
	Expression string
	Result     string
	Err        error
}

// Options configures the calculator screen.
type Options struct {
	Calculator calc.Options
	ShowKeypad bool
	ShowHelp   bool
}

// CalculatorModel is the interactive terminal calculator.
type CalculatorModel struct {
	Display *calc.Display
	History []HistoryEntry
	LastKey string
	LastErr error

	Input     textinput.Model
	InputMode bool

	ShowKeypad bool
	ShowHelp   bool

	Width  int
	Height int

	Help      help.Model
	Keys      calculatorKeyMap
	InputKeys inputKeyMap
}

// NewCalculatorModel creates the calculator screen with an empty display.
func NewCalculatorModel(opts Options) CalculatorModel {
	input := textinput.New()
	input.Placeholder = "12×3+4"
	input.Prompt = "› "
	input.CharLimit = 256
	input.Width = DisplayWidth - 2

	return CalculatorModel{
		Display:    calc.NewDisplay(opts.Calculator),
		Input:      input,
		ShowKeypad: opts.ShowKeypad,
		ShowHelp:   opts.ShowHelp,
		Help:       help.New(),
		Keys:       newCalculatorKeyMap(),
		InputKeys: inputKeyMap{
			Submit: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "replay into display"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "cancel"),
			),
		},
	}
}

// Init implements tea.Model
func (m CalculatorModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m CalculatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.InputMode {
			return m.updateInputMode(msg)
		}
		return m.updateCalculatorMode(msg)
	}

	return m, nil
}

func (m CalculatorModel) updateCalculatorMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	case key.Matches(msg, m.Keys.Input):
		m.InputMode = true
		m.Input.SetValue("")
		return m, m.Input.Focus()
	}

	if name, ok := KeyName(msg); ok {
		m.press(name)
	}
	return m, nil
}

func (m CalculatorModel) updateInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.InputKeys.Cancel):
		m.InputMode = false
		m.Input.Blur()
		return m, nil
	case key.Matches(msg, m.InputKeys.Submit):
		m.InputMode = false
		m.Input.Blur()
		for _, r := range m.Input.Value() {
			m.press(string(r))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// press forwards one key name to the display and records the outcome.
func (m *CalculatorModel) press(name string) {
	before := m.Display.Text()
	action, err := calc.Dispatch(m.Display, name)
	logging.LogKeyEvent(logSource, name, m.Display.Text(), action != calc.ActionNone)
	if action == calc.ActionNone {
		return
	}

	m.LastKey = name
	m.LastErr = nil
	if action == calc.ActionEvaluate {
		m.LastErr = err
		logging.LogEvaluation(logSource, calc.MachineExpression(before), m.Display.Text(), err)
		m.History = append(m.History, HistoryEntry{Expression: before, Result: m.Display.Text(), Err: err})
		if len(m.History) > HistorySize {
			m.History = m.History[len(m.History)-HistorySize:]
		}
	}
}

// KeyName translates a terminal key press to the browser key name the
// display understands. Multi-rune input such as a paste is not a key.
func KeyName(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return calc.KeyEnter, true
	case tea.KeyBackspace:
		return calc.KeyBackspace, true
	case tea.KeyEsc:
		return calc.KeyEscape, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return string(msg.Runes[0]), true
		}
	}
	return "", false
}

// View implements tea.Model
func (m CalculatorModel) View() string {
	sections := []string{RenderHeader(), ""}

	for _, h := range m.History {
		line := strings.TrimSpace(h.Expression) + " = " + h.Result
		sections = append(sections, HistoryStyle.Render(line))
	}

	displayStyle := DisplayStyle
	if m.Display.State() == calc.StateError {
		displayStyle = DisplayErrorStyle
	}
	text := m.Display.Text()
	if text == "" {
		text = " "
	}
	sections = append(sections, displayStyle.Render(text))

	var calcErr *calc.Error
	if errors.As(m.LastErr, &calcErr) {
		sections = append(sections, StatusStyle.Render(calcErr.Kind.String()))
	}

	if m.InputMode {
		sections = append(sections, InputStyle.Render(m.Input.View()))
	}

	if m.ShowKeypad {
		sections = append(sections, "", renderKeypad(m.LastKey))
	}

	if m.ShowHelp {
		if m.InputMode {
			sections = append(sections, HelpStyle.Render(m.Help.View(m.InputKeys)))
		} else {
			sections = append(sections, HelpStyle.Render(m.Help.View(m.Keys)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}
