package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fahmaliyi/otpvault/logger"
	"github.com/fahmaliyi/otpvault/totp"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
	codeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+"="+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, ", "))
}

// --- Account selection ---

type selectModel struct {
	names  []string
	cursor int
	chosen string
}

func selectAccount(names []string, in io.Reader, out io.Writer) (string, bool, error) {
	p := tea.NewProgram(selectModel{names: names}, tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("account selection: %w", err)
	}
	m := final.(selectModel)
	return m.chosen, m.chosen != "", nil
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Quit):
		return m, tea.Quit
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Select):
		m.chosen = m.names[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.chosen != "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Accounts") + "\n\n")
	for i, name := range m.names {
		line := fmt.Sprintf("%d. %s", i+1, name)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + helpLine(keys.Up, keys.Down, keys.Select, keys.Quit) + "\n")
	return b.String()
}

// --- Live code display ---

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type watchModel struct {
	account string
	gen     *totp.Generator
	clip    Clipboard
	log     *slog.Logger
	bar     progress.Model
	code    string
	remain  uint32
	msg     string
	failed  bool
}

func newWatchModel(account string, gen *totp.Generator, clip Clipboard, log *slog.Logger) watchModel {
	m := watchModel{
		account: account,
		gen:     gen,
		clip:    clip,
		log:     log,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
	}
	m.refresh()
	return m
}

func runWatch(account string, gen *totp.Generator, app *App, out io.Writer) error {
	m := newWatchModel(account, gen, app.Clipboard, app.Log)
	if _, err := tea.NewProgram(m, tea.WithInput(app.In), tea.WithOutput(out)).Run(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// refresh recomputes the code and copies it when it changed.
func (m *watchModel) refresh() {
	code, remain := m.gen.Generate()
	m.remain = remain
	if code == m.code {
		return
	}
	m.code = code
	if err := m.clip.WriteAll(code); err != nil {
		m.log.Warn("clipboard unavailable", logger.Error(err))
		m.msg, m.failed = "Clipboard unavailable", true
		return
	}
	m.msg, m.failed = "Copied to clipboard", false
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-4, 40))
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	s := titleStyle.Render(m.account) + "\n\n"
	s += codeStyle.Render(m.code) + "\n\n"
	s += m.bar.ViewAs(float64(m.remain)/totp.Period) + fmt.Sprintf(" remain %2ds\n", m.remain)
	if m.msg != "" {
		style := msgStyle
		if m.failed {
			style = errStyle
		}
		s += "\n" + style.Render(m.msg) + "\n"
	}
	s += "\n" + helpLine(keys.Quit) + "\n"
	return s
}
