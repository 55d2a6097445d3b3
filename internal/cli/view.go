package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/editor"
	"github.com/matzehuels/stateflow/pkg/focus"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/render/sink"
)

// viewCommand creates the interactive flow browser.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <id|file>",
		Short: "Browse the flows of a diagram interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDiagram(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := editor.New(d, nil, editor.WithClock(c.now), editor.WithLogger(c.Logger))
			m := newViewModel(s, layout.WithConfig(c.cfg.Layout))

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

type viewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Focus  key.Binding
	Export key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Focus, k.Export, k.Quit}
}

func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Focus}, {k.Export, k.Help, k.Quit}}
}

var viewKeys = viewKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Focus:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "focus flow")),
	Export: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save svg")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// focusMsg carries a consumed focus request to the model.
type focusMsg struct {
	req focus.Request
	ok  bool
}

// exportedMsg reports the result of saving the focused SVG.
type exportedMsg struct {
	path string
	err  error
}

// viewModel is the bubbletea model for the flow browser. The left pane
// lists flows; the right pane shows the steps of the focused flow as
// laid out by the engine.
type viewModel struct {
	session *editor.Session
	layout  layout.Layout
	diagram *model.Diagram
	opts    []layout.Option

	cursor int
	target *focus.Target
	status string

	width    int
	height   int
	viewport viewport.Model
	help     help.Model
}

func newViewModel(s *editor.Session, opts ...layout.Option) viewModel {
	m := viewModel{
		session:  s,
		opts:     opts,
		viewport: viewport.New(60, 15),
		help:     help.New(),
	}
	m.refresh(s.Diagram())
	return m
}

// refresh recomputes the layout for d.
func (m *viewModel) refresh(d *model.Diagram) {
	m.diagram = d
	m.layout = layout.Compute(d, m.opts...)
	if m.cursor >= len(d.Flows) {
		m.cursor = max(0, len(d.Flows)-1)
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

// takeFocus consumes the session's pending focus request.
func (m viewModel) takeFocus() tea.Msg {
	req, ok := m.session.TakeFocus()
	return focusMsg{req: req, ok: ok}
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, viewKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, viewKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, viewKeys.Down):
			if m.cursor < len(m.diagram.Flows)-1 {
				m.cursor++
			}
		case key.Matches(msg, viewKeys.Focus):
			if len(m.diagram.Flows) == 0 {
				return m, nil
			}
			if !m.session.RequestFocus(m.diagram.Flows[m.cursor].ID) {
				m.status = "flow no longer exists"
				return m, nil
			}
			return m, m.takeFocus
		case key.Matches(msg, viewKeys.Export):
			return m, m.export
		case key.Matches(msg, viewKeys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case focusMsg:
		if !msg.ok {
			return m, nil
		}
		t, ok := focus.Resolve(m.layout, msg.req.FlowID)
		if !ok {
			m.target = nil
			m.status = fmt.Sprintf("flow %s has nothing to show", msg.req.FlowID)
			return m, nil
		}
		m.target = &t
		m.status = ""
		m.viewport.SetContent(m.flowDetail(t.FlowID))
		m.viewport.GotoTop()
	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "wrote " + msg.path
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = max(20, msg.Width-paneWidth(m.diagram)-8)
		m.viewport.Height = max(5, msg.Height-8)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// export writes the diagram SVG, highlighting the focused flow.
func (m viewModel) export() tea.Msg {
	opts := []sink.SVGOption{sink.WithLegend()}
	if m.target != nil {
		opts = append(opts, sink.WithFocus(m.target.FlowID))
	}
	path := m.diagram.ID + ".svg"
	err := os.WriteFile(path, sink.RenderSVG(m.layout, opts...), 0o644)
	return exportedMsg{path: path, err: err}
}

// flowDetail lists the drawn steps of a flow in row order.
func (m viewModel) flowDetail(flowID string) string {
	var b strings.Builder
	if f, ok := model.NewIndex(m.diagram).Flow(flowID); ok {
		b.WriteString(StyleTitle.Render(f.Name))
		b.WriteString("\n")
		if f.Description != "" {
			b.WriteString(StyleDim.Render(f.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	names := make(map[string]string)
	for _, n := range m.layout.Actors() {
		names[n.ID] = n.Label
	}
	for i, e := range m.layout.FlowEdges(flowID) {
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color))
		fmt.Fprintf(&b, "%2d %s %s %s %s\n",
			i+1,
			color.Render(e.Glyph),
			StyleValue.Render(names[e.Source]),
			StyleDim.Render(iconArrow),
			StyleValue.Render(names[e.Target]))
		fmt.Fprintf(&b, "   %s\n", e.Caption)
		if e.Condition != "" {
			fmt.Fprintf(&b, "   %s\n", StyleWarning.Render("if "+e.Condition))
		}
	}

	skipped := 0
	for _, s := range m.layout.Skipped {
		if s.FlowID == flowID {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n%s\n", StyleWarning.Render(plural(skipped, "step")+" skipped"))
	}
	return b.String()
}

func paneWidth(d *model.Diagram) int {
	w := 20
	if d == nil {
		return w
	}
	for _, f := range d.Flows {
		w = max(w, lipgloss.Width(f.Name)+4)
	}
	return min(w, 40)
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.diagram.Name))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s", plural(len(m.diagram.Actors), "actor"), plural(len(m.diagram.Flows), "flow"))))
	b.WriteString("\n\n")

	var list strings.Builder
	if len(m.diagram.Flows) == 0 {
		list.WriteString(listDimStyle.Render("no flows"))
	}
	for i, f := range m.diagram.Flows {
		line := "  " + f.Name
		switch {
		case i == m.cursor:
			line = listSelectedStyle.Render("▸ " + f.Name)
		case m.target != nil && m.target.FlowID == f.ID:
			line = listNormalStyle.Render("• " + f.Name)
		default:
			line = listNormalStyle.Render(line)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	left := paneStyle.Width(paneWidth(m.diagram)).Render(strings.TrimRight(list.String(), "\n"))
	right := listDimStyle.Render("press enter to focus a flow")
	if m.target != nil {
		right = m.viewport.View()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, paneStyle.Render(right)))
	b.WriteString("\n")

	if m.target != nil {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  focus %s at (%.0f, %.0f)", m.target.ID, m.target.X, m.target.Y)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleWarning.Render("  " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(viewKeys))
	return b.String()
}
