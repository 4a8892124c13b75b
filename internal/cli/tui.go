package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vfxgraph/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(colorGray)
	detailPaneStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// browserModel - Interactive graph browser
// =============================================================================

// browserRow is one visible line of the tree.
type browserRow struct {
	node  graph.Node
	depth int
}

// browserModel is the bubbletea model behind `inspect --tui`. The left
// pane is the ownership tree, the right pane shows the selected node's
// ports, metadata and edges.
type browserModel struct {
	view     graph.Graph
	title    string
	expanded map[string]bool
	rows     []browserRow
	cursor   int
	offset   int
	height   int
	edges    map[string][]string // node ID -> rendered edge lines
}

func newBrowserModel(view graph.Graph, title string) browserModel {
	m := browserModel{
		view:     view,
		title:    title,
		expanded: make(map[string]bool),
		height:   20,
		edges:    edgeIndex(view),
	}
	for _, n := range view.Roots() {
		m.expanded[n.ID] = true
	}
	m.rows = m.visibleRows()
	return m
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ", "right", "l":
			m.toggle(true)
		case "left", "h":
			m.toggle(false)
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	m.scroll()
	return m, nil
}

// toggle expands or collapses the selected node. Collapsing a leaf moves
// the cursor to its parent.
func (m *browserModel) toggle(open bool) {
	if len(m.rows) == 0 {
		return
	}
	n := m.rows[m.cursor].node
	hasChildren := len(m.view.Children(n.ID)) > 0
	switch {
	case open && hasChildren:
		m.expanded[n.ID] = !m.expanded[n.ID]
	case !open && hasChildren && m.expanded[n.ID]:
		m.expanded[n.ID] = false
	case !open && n.Parent != "":
		for i, r := range m.rows {
			if r.node.ID == n.Parent {
				m.cursor = i
				break
			}
		}
	}
	m.rows = m.visibleRows()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *browserModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browserModel) visibleRows() []browserRow {
	var rows []browserRow
	var walk func(nodes []graph.Node, depth int)
	walk = func(nodes []graph.Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, browserRow{node: n, depth: depth})
			if m.expanded[n.ID] {
				walk(m.view.Children(n.ID), depth+1)
			}
		}
	}
	walk(m.view.Roots(), 0)
	return rows
}

func (m browserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	if m.view.Version > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  version %d", m.view.Version)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  ← collapse  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty graph)"))
		return b.String()
	}

	tree := m.renderTree()
	detail := detailPaneStyle.Render(m.renderDetail(m.rows[m.cursor].node))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tree, "  ", detail))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	return b.String()
}

func (m browserModel) renderTree() string {
	var b strings.Builder
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if len(m.view.Children(r.node.ID)) > 0 {
			marker = "▸ "
			if m.expanded[r.node.ID] {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", r.depth) + marker + r.node.DisplayLabel() + " " + listDimStyle.Render(r.node.Kind)
		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case r.node.Meta["disabled"] == true:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browserModel) renderDetail(n graph.Node) string {
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(n.DisplayLabel()))
	b.WriteString("\n")
	b.WriteString(detailKeyStyle.Render(n.ID))
	b.WriteString("\n")

	if len(n.Meta) > 0 {
		b.WriteString("\n")
		keys := make([]string, 0, len(n.Meta))
		for k := range n.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(detailKeyStyle.Render(k+": ") + fmt.Sprint(n.Meta[k]) + "\n")
		}
	}

	if len(n.Ports) > 0 {
		b.WriteString("\n")
		for _, p := range n.Ports {
			writePort(&b, p, 0)
		}
	}

	if lines := m.edges[n.ID]; len(lines) > 0 {
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writePort(b *strings.Builder, p graph.Port, depth int) {
	dir := "in "
	if p.Output {
		dir = "out"
	}
	line := strings.Repeat("  ", depth) + listDimStyle.Render(dir) + " " + p.Name
	if p.Type != "" {
		line += listDimStyle.Render(" " + p.Type)
	}
	if p.Value != "" {
		line += " = " + StyleValue.Render(p.Value)
	}
	b.WriteString(line + "\n")
	for _, c := range p.Children {
		writePort(b, c, depth+1)
	}
}

// edgeIndex groups edge descriptions by the node that owns either end.
// Port IDs are attributed to their owner node.
func edgeIndex(v graph.Graph) map[string][]string {
	owner := func(id string) string {
		if i := strings.Index(id, "/port/"); i >= 0 {
			return id[:i]
		}
		return id
	}
	out := make(map[string][]string)
	for _, e := range v.Edges {
		from, to := owner(e.From), owner(e.To)
		out[from] = append(out[from], fmt.Sprintf("%s %s %s", e.Kind, iconArrow, e.To))
		if to != from {
			out[to] = append(out[to], fmt.Sprintf("%s %s %s", e.Kind, "←", e.From))
		}
	}
	return out
}
