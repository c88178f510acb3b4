package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pageprint/pkg/canon"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// TreeModel - Interactive document browser
// =============================================================================

// treeRow is one visible line of the tree.
type treeRow struct {
	node  *canon.Node
	depth int
}

// TreeModel is the bubbletea model for browsing a canonical tree. Nodes
// start collapsed below the first level.
type TreeModel struct {
	Doc      *canon.Document
	Expanded map[string]bool
	Cursor   int
	Height   int
	Offset   int

	rows    []treeRow
	parents map[string]*canon.Node
}

// newTreeModel creates a tree model with the root expanded.
func newTreeModel(doc *canon.Document) TreeModel {
	m := TreeModel{
		Doc:      doc,
		Expanded: map[string]bool{doc.Tree.ID: true},
		Height:   20,
		parents:  map[string]*canon.Node{},
	}
	doc.Tree.Walk(func(n *canon.Node, _ int) bool {
		for _, c := range n.Children {
			m.parents[c.ID] = n
		}
		return true
	})
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the tree.
func (m *TreeModel) rebuild() {
	m.rows = m.rows[:0]
	m.Doc.Tree.Walk(func(n *canon.Node, depth int) bool {
		m.rows = append(m.rows, treeRow{node: n, depth: depth})
		return m.Expanded[n.ID]
	})
	m.Cursor = min(m.Cursor, len(m.rows)-1)
}

// Selected returns the node under the cursor.
func (m TreeModel) Selected() *canon.Node {
	return m.rows[m.Cursor].node
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "right", "l", "enter", " ":
			n := m.Selected()
			if len(n.Children) > 0 {
				m.Expanded[n.ID] = !m.Expanded[n.ID] || msg.String() == "right" || msg.String() == "l"
				m.rebuild()
			}
		case "left", "h":
			n := m.Selected()
			if m.Expanded[n.ID] && len(n.Children) > 0 {
				m.Expanded[n.ID] = false
				m.rebuild()
			} else if p, ok := m.parents[n.ID]; ok {
				m.moveTo(p.ID)
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.scroll()
	}
	return m, nil
}

// moveTo places the cursor on the row of id.
func (m *TreeModel) moveTo(id string) {
	for i, r := range m.rows {
		if r.node.ID == id {
			m.Cursor = i
			return
		}
	}
}

// scroll keeps the cursor inside the window.
func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(firstNonEmpty(m.Doc.Source.URL, "Document")))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  →/⏎ expand  ← collapse  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if len(r.node.Children) > 0 {
			marker = "▸ "
			if m.Expanded[r.node.ID] {
				marker = "▾ "
			}
		}
		line := fmt.Sprintf("%s%s%s %s", strings.Repeat("  ", r.depth), marker, r.node.Name, listDimStyle.Render(string(r.node.Kind)))
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render("› " + line))
		case r.node.ExtractionError != "":
			b.WriteString(listErrorStyle.Render("  " + line))
		case len(m.Doc.States) > 0 && len(r.node.ObservedInStates) < len(m.Doc.States):
			b.WriteString(listDimStyle.Render("  " + line))
		default:
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(nodeDetail(m.Selected())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}

// nodeDetail describes one node for the detail pane.
func nodeDetail(n *canon.Node) string {
	lines := []string{
		fmt.Sprintf("%s  %s", StyleValue.Render(n.ID), listDimStyle.Render(string(n.Kind))),
		fmt.Sprintf("rect %s  z %d  order %d  opacity %g", n.Rect, n.ZIndex, n.DocOrder, n.Opacity),
		"states " + strings.Join(n.ObservedInStates, ", "),
	}
	if n.AutoLayout.Active() {
		lines = append(lines, fmt.Sprintf("layout %s gap %g", n.AutoLayout.Direction, n.AutoLayout.Gap))
	}
	if n.TextStyle != nil {
		lines = append(lines, fmt.Sprintf("text %q  %s %d %gpx", truncateText(n.Characters, 40), strings.Join(n.TextStyle.Families, ","), n.TextStyle.Weight, n.TextStyle.Size))
	}
	if len(n.Paints)+len(n.Strokes)+len(n.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("%d paints  %d strokes  %d effects", len(n.Paints), len(n.Strokes), len(n.Effects)))
	}
	if n.ExtractionError != "" {
		lines = append(lines, listErrorStyle.Render("error "+n.ExtractionError))
	}
	return strings.Join(lines, "\n")
}

func truncateText(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
