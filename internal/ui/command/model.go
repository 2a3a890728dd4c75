// Package command implements the ":" palette.
package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fedinotify/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Refresh  Name = "refresh"
	Clear    Name = "clear"
	Accounts Name = "accounts"
	Quit     Name = "quit"
)

// Commands lists every command with a short description, in the order
// shown in the palette and help.
var Commands = []struct {
	Name        Name
	Description string
}{
	{Refresh, "reload notifications"},
	{Clear, "delete all notifications"},
	{Accounts, "manage accounts"},
	{Quit, "exit"},
}

// aliases maps short forms to commands.
var aliases = map[string]Name{
	"r": Refresh,
	"q": Quit,
}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg struct {
	Name Name
}

// Parse resolves input to a command, accepting aliases and any unique
// prefix.
func Parse(input string) (Name, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", fmt.Errorf("empty command")
	}
	if n, ok := aliases[in]; ok {
		return n, nil
	}

	var match []Name
	for _, c := range Commands {
		if string(c.Name) == in {
			return c.Name, nil
		}
		if strings.HasPrefix(string(c.Name), in) {
			match = append(match, c.Name)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	if len(match) > 1 {
		return "", fmt.Errorf("ambiguous command %q", input)
	}
	return "", fmt.Errorf("unknown command %q", input)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh, clear, accounts, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	suggestions := make([]string, len(Commands))
	for i, c := range Commands {
		suggestions[i] = string(c.Name)
	}
	ti.SetSuggestions(suggestions)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		name, err := Parse(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.Reset()
		return m, func() tea.Msg { return CommandMsg{Name: name} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Reset clears the input and any previous error.
func (m *Model) Reset() {
	m.input.Reset()
	m.err = nil
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View()}
	if m.err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err.Error()))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
