// Command cidxmltree is an interactive terminal browser over a document
// parsed by cidxml: arrow keys/j/k move the cursor, enter/space expands or
// collapses the selected subtree, and a side panel shows the attributes of
// whatever element is currently selected.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lestrrat/cidxml"
)

func main() {
	os.Exit(run())
}

func run() int {
	width := flag.Int("w", 0, "terminal width override (0 = auto-detect)")
	validate := flag.Bool("validate", false, "run DTD validation while parsing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cidxmltree [flags] <file.xml>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}

	p := cidxml.NewParser()
	if *validate {
		p.SetOptions(cidxml.Validate)
	}
	doc, diags, err := p.ParseFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cols := *width
	if cols == 0 {
		if w, _, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			cols = w
		} else {
			cols = 80
		}
	}

	m := newModel(doc, diags, cols)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// treeRow is one visible line of the flattened, expand-aware tree.
type treeRow struct {
	node        cidxml.Node
	depth       int
	hasChildren bool
}

type model struct {
	doc       *cidxml.Document
	diagCount int
	collapsed map[cidxml.Node]bool
	rows      []treeRow
	cursor    int
	width     int
	height    int
}

func newModel(doc *cidxml.Document, diags []cidxml.Diagnostic, width int) *model {
	m := &model{
		doc:       doc,
		diagCount: len(diags),
		collapsed: make(map[cidxml.Node]bool),
		width:     width,
		height:    24,
	}
	m.rebuild()
	return m
}

func (m *model) rebuild() {
	m.rows = m.rows[:0]
	var walk func(n cidxml.Node, depth int)
	walk = func(n cidxml.Node, depth int) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			_, hasKids := c.(*cidxml.Element)
			hasKids = hasKids && c.FirstChild() != nil
			m.rows = append(m.rows, treeRow{node: c, depth: depth, hasChildren: hasKids})
			if hasKids && !m.collapsed[c] {
				walk(c, depth+1)
			}
		}
	}
	walk(m.doc, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyPressMsg:
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
		case "enter", " ":
			if m.cursor < len(m.rows) {
				row := m.rows[m.cursor]
				if row.hasChildren {
					m.collapsed[row.node] = !m.collapsed[row.node]
					m.rebuild()
				}
			}
		}
	}
	return m, nil
}

var (
	styleSelected = lipgloss.NewStyle().Bold(true).Reverse(true)
	stylePanel    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	styleHeader   = lipgloss.NewStyle().Bold(true).Underline(true)
)

func nodeLabel(n cidxml.Node) string {
	switch t := n.(type) {
	case *cidxml.Element:
		return "<" + t.Name() + ">"
	case *cidxml.Text:
		return "#text"
	case *cidxml.Comment:
		return "<!--comment-->"
	case *cidxml.ProcessingInstruction:
		return "<?" + t.Target() + "?>"
	default:
		return n.Name()
	}
}

func (m *model) View() tea.View {
	panelWidth := m.width / 3
	if panelWidth < 20 {
		panelWidth = 20
	}
	treeWidth := m.width - panelWidth - 4
	if treeWidth < 10 {
		treeWidth = 10
	}

	var tree string
	for i, row := range m.rows {
		marker := "  "
		if row.hasChildren {
			if m.collapsed[row.node] {
				marker = "+ "
			} else {
				marker = "- "
			}
		}
		line := fmt.Sprintf("%s%s%s", indent(row.depth), marker, nodeLabel(row.node))
		if i == m.cursor {
			line = styleSelected.Render(line)
		}
		tree += line + "\n"
	}

	panel := styleHeader.Render("Attributes") + "\n"
	if m.cursor < len(m.rows) {
		if e, ok := m.rows[m.cursor].node.(*cidxml.Element); ok {
			for _, a := range e.Attributes() {
				panel += fmt.Sprintf("%s = %s\n", a.Name(), a.Value())
			}
		}
	}
	panel += fmt.Sprintf("\n%d diagnostics\n", m.diagCount)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(treeWidth).Render(tree),
		stylePanel.Width(panelWidth).Render(panel),
	)

	return tea.NewView(body)
}

func indent(depth int) string {
	out := make([]byte, depth*2)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
