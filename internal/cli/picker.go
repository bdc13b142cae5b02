package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultPickerHeight = 15

type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Filter  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x", "tab"), key.WithHelp("space", "mark")),
		All:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "mark all")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+c", "q"), key.WithHelp("esc", "cancel")),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.Filter, k.Confirm, k.Cancel}
}

// pickerModel is a multi-select list over plain text lines. Enter with
// nothing marked picks the row under the cursor.
type pickerModel struct {
	prompt string
	lines  []string
	keys   pickerKeyMap

	marked    map[int]bool
	cursor    int // index into visible()
	offset    int
	height    int
	filtering bool
	filter    string

	done      bool
	cancelled bool
}

func newPickerModel(prompt string, lines []string) *pickerModel {
	return &pickerModel{
		prompt: prompt,
		lines:  lines,
		keys:   defaultPickerKeys(),
		marked: make(map[int]bool),
		height: defaultPickerHeight,
	}
}

func (m *pickerModel) Init() tea.Cmd { return nil }

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Take the lower part of the screen and leave room for the prompt
		// and help lines.
		m.height = max(msg.Height*2/5-3, 3)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *pickerModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(visible) {
			idx := visible[m.cursor]
			m.marked[idx] = !m.marked[idx]
			if m.cursor < len(visible)-1 {
				m.cursor++
			}
		}
	case key.Matches(msg, m.keys.All):
		all := true
		for _, idx := range visible {
			if !m.marked[idx] {
				all = false
				break
			}
		}
		for _, idx := range visible {
			m.marked[idx] = !all
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
	case key.Matches(msg, m.keys.Confirm):
		if m.markedCount() == 0 && m.cursor < len(visible) {
			m.marked[visible[m.cursor]] = true
		}
		m.done = true
		return m, tea.Quit
	}
	m.scroll()
	return m, nil
}

func (m *pickerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.filter += " "
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
	}
	m.cursor = 0
	m.offset = 0
	return m, nil
}

// visible returns the indexes of lines matching the filter.
func (m *pickerModel) visible() []int {
	lf := strings.ToLower(m.filter)
	out := make([]int, 0, len(m.lines))
	for i, l := range m.lines {
		if lf == "" || strings.Contains(strings.ToLower(l), lf) {
			out = append(out, i)
		}
	}
	return out
}

func (m *pickerModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *pickerModel) markedCount() int {
	n := 0
	for _, v := range m.marked {
		if v {
			n++
		}
	}
	return n
}

// Selected returns the marked lines in display order, or nil when the
// picker was cancelled.
func (m *pickerModel) Selected() []string {
	if m.cancelled || !m.done {
		return nil
	}
	var out []string
	for i, l := range m.lines {
		if m.marked[i] {
			out = append(out, l)
		}
	}
	return out
}

func (m *pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	visible := m.visible()

	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render(m.prompt))
	if m.filtering || m.filter != "" {
		b.WriteString(formatter.StyleYellow.Render("/") + m.filter)
		if m.filtering {
			b.WriteString("█")
		}
	}
	b.WriteString(formatter.Dim(fmt.Sprintf("  %d/%d  %d marked", len(visible), len(m.lines), m.markedCount())))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(visible))
	for i := m.offset; i < end; i++ {
		idx := visible[i]
		cursor := "  "
		style := formatter.StyleFg
		if i == m.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			style = formatter.StyleBold
		}
		mark := "  "
		if m.marked[idx] {
			mark = formatter.StyleGreen.Render("● ")
		}
		b.WriteString(cursor + mark + style.Render(m.lines[idx]) + "\n")
	}

	var hints []string
	for _, k := range m.keys.ShortHelp() {
		hints = append(hints, k.Help().Key+": "+k.Help().Desc)
	}
	b.WriteString(formatter.Dim(strings.Join(hints, "  ")))
	return b.String()
}

// NewPickerSelector returns a Selector that runs the multi-select picker
// on the given terminal streams.
func NewPickerSelector(in io.Reader, out io.Writer) Selector {
	return SelectorFunc(func(prompt string, lines []string) ([]string, error) {
		m := newPickerModel(prompt, lines)
		final, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run()
		if err != nil {
			return nil, fmt.Errorf("running picker: %w", err)
		}
		return final.(*pickerModel).Selected(), nil
	})
}
