package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/host"
	"github.com/matzehuels/autofilter/pkg/layout"
	"github.com/matzehuels/autofilter/pkg/manifest"
	"github.com/matzehuels/autofilter/pkg/render"
)

// Terminal cells are mapped to container pixels so that breakpoints and
// manifest heights keep their meaning.
const (
	cellWidth  = 10.0
	cellHeight = 20.0

	minCardLines = 3
	headerLines  = 6
)

// =============================================================================
// Terminal host
// =============================================================================

type frameMsg func()

type redrawMsg struct{}

// termHost is a memory host whose frames and redraws are delivered to the
// bubbletea event loop. At most one frame is outstanding per controller, so
// the frame channel never blocks; redraws coalesce.
type termHost struct {
	*host.Memory
	frames chan func()
	redraw chan struct{}
}

func newTermHost(width float64) *termHost {
	return &termHost{
		Memory: host.NewMemory(width),
		frames: make(chan func(), 4),
		redraw: make(chan struct{}, 1),
	}
}

// RequestFrame implements autofilter.FrameScheduler.
func (h *termHost) RequestFrame(fn func()) {
	h.frames <- fn
}

// SetContainerHeight ends every layout pass, so it schedules a redraw.
func (h *termHost) SetContainerHeight(px float64) {
	h.Memory.SetContainerHeight(px)
	select {
	case h.redraw <- struct{}{}:
	default:
	}
}

// wait blocks until the next frame or redraw.
func (h *termHost) wait() tea.Msg {
	select {
	case fn := <-h.frames:
		return frameMsg(fn)
	case <-h.redraw:
		return redrawMsg{}
	}
}

// =============================================================================
// wallModel - interactive wall
// =============================================================================

type wallModel struct {
	ctrl     *autofilter.Controller
	host     *termHost
	manifest *manifest.Manifest

	buttons    []string
	cursor     int
	input      textinput.Model
	inputFocus bool

	width, height int
	offset        int
}

func newWallModel(c *CLI, m *manifest.Manifest, opts ...autofilter.Option) (*wallModel, error) {
	h := newTermHost(80 * cellWidth)
	m.Populate(h.Memory)

	opts = append([]autofilter.Option{autofilter.WithLogger(c.Logger), autofilter.WithFrames(h)}, opts...)
	ctrl, err := autofilter.New(c.config, h, m.Elements(), opts...)
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Placeholder = "type to filter"
	in.Prompt = "/ "
	in.CharLimit = 64
	in.Width = 32

	active, _ := ctrl.ActiveFilter()
	buttons := buttonValues(ctrl.Tags())
	cursor := 0
	for i, b := range buttons {
		if b == active {
			cursor = i
		}
	}

	return &wallModel{
		ctrl:     ctrl,
		host:     h,
		manifest: m,
		buttons:  buttons,
		cursor:   cursor,
		input:    in,
		width:    80,
		height:   24,
	}, nil
}

func (m *wallModel) Init() tea.Cmd {
	return m.host.wait
}

func (m *wallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		msg()
		return m, m.host.wait
	case redrawMsg:
		return m, m.host.wait
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.host.SetWidth(float64(msg.Width) * cellWidth)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *wallModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Destroy()
		return m, tea.Quit
	case "tab":
		m.inputFocus = !m.inputFocus
		if m.inputFocus {
			return m, m.input.Focus()
		}
		m.input.Blur()
		return m, nil
	}

	if m.inputFocus {
		if msg.String() == "esc" {
			m.inputFocus = false
			m.input.Blur()
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.ctrl.Input(m.input.Value())
		}
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		m.ctrl.Destroy()
		return m, tea.Quit
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.buttons)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.ctrl.Click(m.buttons[m.cursor])
	case "r":
		m.cursor = 0
		m.input.SetValue("")
		m.ctrl.Reset()
	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}
	case "down", "j":
		m.offset++
	}
	return m, nil
}

func (m *wallModel) View() string {
	var b strings.Builder

	title := m.manifest.Title
	if title == "" {
		title = appName
	}
	active, _ := m.ctrl.ActiveFilter()
	cursor := m.cursor
	if m.inputFocus {
		cursor = -1
	}

	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderTags(m.buttons, active, cursor))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	res := m.ctrl.Layout()
	status := fmt.Sprintf("%d/%d visible · %d columns", m.ctrl.VisibleCount(), len(m.manifest.Items), res.Columns)
	if u := m.host.String(); u != "" && u != "/" {
		status += " · " + u
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n\n")

	wall := render.NewWall(m.host.Snapshot(), res, m.manifest)
	lines := strings.Split(renderTermWall(wall, res, m.ctrl.Options().Layout.Gutter), "\n")
	room := m.height - headerLines - 1
	if room < 1 {
		room = 1
	}
	if m.offset > len(lines)-1 {
		m.offset = max(len(lines)-1, 0)
	}
	end := min(m.offset+room, len(lines))
	b.WriteString(strings.Join(lines[m.offset:end], "\n"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ tag  ⏎ apply  tab search  ↑/↓ scroll  r reset  q quit"))

	return b.String()
}

// renderTermWall draws visible cards column by column.
func renderTermWall(w render.Wall, res layout.Result, gutter float64) string {
	if res.Columns == 0 || len(w.Visible()) == 0 {
		return listDimStyle.Render("  nothing to show")
	}
	cards := make(map[string]render.Card, len(w.Cards))
	for _, c := range w.Visible() {
		cards[c.ID] = c
	}

	colCells := max(int(res.ColumnWidth/cellWidth), 4)
	gap := strings.Repeat(" ", max(int(math.Round(gutter/cellWidth)), 1))

	columns := make([]string, 0, 2*res.Columns)
	for col := 0; col < res.Columns; col++ {
		var parts []string
		row := 0
		for _, blk := range res.ColumnOf(col) {
			c, ok := cards[blk.ItemID]
			if !ok {
				continue
			}
			top := int(math.Round(blk.Top / cellHeight))
			if top > row {
				parts = append(parts, strings.Repeat("\n", top-row-1))
				row = top
			}
			lines := max(int(math.Round(blk.Height()/cellHeight)), minCardLines)
			parts = append(parts, renderTermCard(c, colCells, lines))
			row += lines
		}
		column := lipgloss.NewStyle().Width(colCells).Render(strings.Join(parts, "\n"))
		if col > 0 {
			columns = append(columns, gap)
		}
		columns = append(columns, column)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderTermCard(c render.Card, width, lines int) string {
	inner := width - 2
	body := lipgloss.NewStyle().Bold(true).MaxWidth(inner).Render(c.Label)
	if c.Tags != "" && lines > minCardLines {
		body += "\n" + listDimStyle.MaxWidth(inner).Render(c.Tags)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.Color)).
		Width(inner).
		Height(lines - 2).
		MaxHeight(lines).
		Render(body)
}

// tuiCommand creates the interactive wall browser.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [manifest]",
		Short: "Browse a wall interactively",
		Long: `Browse a wall interactively in the terminal.

Cards are laid out with the configured breakpoints, one terminal column per
10px of container width and one line per 20px of item height. Pick a tag
with the arrow keys and Enter, or press Tab and type to filter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadManifest(args[0])
			if err != nil {
				return fmt.Errorf("load manifest %s: %w", args[0], err)
			}
			model, err := newWallModel(c, m)
			if err != nil {
				return err
			}
			defer model.ctrl.Destroy()

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
