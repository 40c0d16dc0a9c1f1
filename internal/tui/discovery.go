package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tapcalc/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	instances []*discovery.Instance
	err       error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Quit},
	}
}

// instanceItem wraps an Instance for use with bubbles/list
type instanceItem struct {
	instance *discovery.Instance
}

func (i instanceItem) FilterValue() string {
	return i.instance.Name + " " + i.instance.IP + " " + i.instance.Hostname
}

func (i instanceItem) Title() string { return i.instance.Name }

func (i instanceItem) Description() string {
	version := i.instance.Version
	if version == "" {
		version = "unknown"
	}
	return fmt.Sprintf("%s • v%s", i.instance.URL(), version)
}

// instanceDelegate renders one line per instance plus its URL.
type instanceDelegate struct{}

func (d instanceDelegate) Height() int  { return 2 }
func (d instanceDelegate) Spacing() int { return 1 }

func (d instanceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d instanceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(instanceItem)
	if !ok {
		return
	}
	title := "  " + it.Title()
	if index == m.Index() {
		title = SelectedItemStyle.Render("→ " + it.Title())
	}
	fmt.Fprintf(w, "%s\n    %s", title, StatusStyle.Render(it.Description()))
}

// ScanFunc browses the network for calculator servers.
type ScanFunc func(ctx context.Context) ([]*discovery.Instance, error)

// DiscoveryModel lists the calculator servers found over mDNS.
type DiscoveryModel struct {
	Scanning     bool
	InstanceList list.Model
	Selected     *discovery.Instance
	Err          error

	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap

	scan ScanFunc
}

// NewDiscoveryModel creates the discovery screen. A nil scan uses an mDNS
// scanner with the given timeout.
func NewDiscoveryModel(scan ScanFunc, timeout time.Duration) DiscoveryModel {
	if scan == nil {
		scanner := discovery.NewScanner()
		if timeout > 0 {
			scanner.Timeout = timeout
		}
		scan = scanner.Scan
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	instances := list.New([]list.Item{}, instanceDelegate{}, 60, 12)
	instances.Title = "Calculator servers"
	instances.SetShowStatusBar(false)
	instances.SetShowHelp(false)
	instances.SetFilteringEnabled(true)
	instances.Styles.Title = TitleStyle

	return DiscoveryModel{
		InstanceList: instances,
		Spinner:      s,
		Help:         help.New(),
		Keys: discoveryKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Enter: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "select"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		scan: scan,
	}
}

// scanCmd runs one browse in the background.
func (m DiscoveryModel) scanCmd() tea.Cmd {
	scan := m.scan
	return func() tea.Msg {
		instances, err := scan(context.Background())
		return scanCompleteMsg{instances: instances, err: err}
	}
}

// Init implements tea.Model
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scanCmd(),
		m.Spinner.Tick,
	)
}

// Update implements tea.Model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.InstanceList.SetWidth(msg.Width - 4)
		m.InstanceList.SetHeight(max(msg.Height-8, 4))

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.instances))
		for i, inst := range msg.instances {
			items[i] = instanceItem{instance: inst}
		}
		cmd = m.InstanceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.InstanceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.InstanceList, cmd = m.InstanceList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Enter):
		if m.Scanning {
			return m, nil
		}
		if it, ok := m.InstanceList.SelectedItem().(instanceItem); ok {
			m.Selected = it.instance
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.Err = nil
		m.InstanceList.SetItems([]list.Item{})
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			m.scanCmd(),
			m.Spinner.Tick,
		)
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.InstanceList, cmd = m.InstanceList.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m DiscoveryModel) View() string {
	var b strings.Builder
	b.WriteString(RenderHeader())
	b.WriteString("\n\n")

	switch {
	case m.Scanning:
		elapsed := int(time.Since(m.ScanStartTime).Seconds())
		b.WriteString(TitleStyle.Render(m.Spinner.View() + " Searching for calculator servers"))
		b.WriteString("\n")
		b.WriteString(StatusStyle.Render(fmt.Sprintf("Elapsed: %ds", elapsed)))
	case m.Err != nil:
		b.WriteString(ErrorStyle.Render("Discovery failed: " + m.Err.Error()))
	case len(m.InstanceList.Items()) == 0:
		b.WriteString(StatusStyle.Render("No calculator servers found. Start one with: tapcalc serve --mdns"))
	default:
		b.WriteString(m.InstanceList.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, b.String(), HelpStyle.Render(m.Help.View(m.Keys))) + "\n"
}
