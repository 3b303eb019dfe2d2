package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/selection"
	"github.com/matzehuels/domgraph/pkg/visualizer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listConnected     = lipgloss.NewStyle().Foreground(colorGreen)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ExploreModel - Search and select over a loaded graph
// =============================================================================

// ExploreModel is the bubbletea model behind the explore command. Typing
// edits the search query; the list shows the matching nodes. Enter selects
// the node under the cursor and highlights its connected set.
type ExploreModel struct {
	ctrl  *visualizer.Controller
	nodes map[int]*graph.Node

	Query     string
	Matches   []int
	Cursor    int
	Offset    int
	Height    int
	Connected selection.Set
	Err       error
}

// NewExploreModel creates a model over the controller's current graph.
func NewExploreModel(ctrl *visualizer.Controller) ExploreModel {
	m := ExploreModel{
		ctrl:   ctrl,
		nodes:  make(map[int]*graph.Node),
		Height: 15,
	}
	if g := ctrl.Graph(); g != nil {
		for _, n := range g.Nodes {
			m.nodes[n.ID] = n
		}
	}
	m.Matches = ctrl.Matches()
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Connected != nil {
				m.ctrl.ClearSelection()
				m.Connected = nil
				return m, nil
			}
			return m, tea.Quit
		case "up":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down":
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Matches) == 0 {
				return m, nil
			}
			set, err := m.ctrl.SelectNode(m.Matches[m.Cursor])
			m.Connected, m.Err = set, err
		case "backspace":
			if r := []rune(m.Query); len(r) > 0 {
				m = m.search(string(r[:len(r)-1]))
			}
		default:
			if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
				m = m.search(m.Query + string(msg.Runes))
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ExploreModel) search(query string) ExploreModel {
	m.Query = query
	m.ctrl.SetSearch(query)
	m.Matches = m.ctrl.Matches()
	m.Cursor, m.Offset = 0, 0
	return m
}

// Current returns the node under the cursor.
func (m ExploreModel) Current() (*graph.Node, bool) {
	if m.Cursor >= len(m.Matches) {
		return nil, false
	}
	n, ok := m.nodes[m.Matches[m.Cursor]]
	return n, ok
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore DOM Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to search  ↑/↓ navigate  ⏎ select  esc clear/quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("search: ") + StyleValue.Render(m.Query) + StyleHighlight.Render("▏"))
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.Matches))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.nodes[m.Matches[i]]
		if n == nil {
			continue
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprint(n.ID), string(n.Type), n.Name, truncate(n.Data.Content, 32)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Name", "Content").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Matches) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Connected.Has(m.Matches[idx]):
				return listConnected
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Matches)), len(m.Matches))))

	if id, ok := m.ctrl.Selected(); ok {
		b.WriteString("  ")
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("selected #%d · %d connected", id, len(m.Connected)-1)))
	}
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
