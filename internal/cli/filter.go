package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autofilter/pkg/autofilter"
	"github.com/matzehuels/autofilter/pkg/host"
	"github.com/matzehuels/autofilter/pkg/manifest"
)

// filterCommand creates the filter command, which reports what a token shows.
func (c *CLI) filterCommand() *cobra.Command {
	var (
		input bool
		width float64
	)

	cmd := &cobra.Command{
		Use:   "filter [manifest] [token]",
		Short: "Show which items a filter token matches",
		Long: `Show which items a filter token matches.

Without --input the token is applied as a button filter (exact tag match; an
empty token shows everything). With --input it is applied as text input, so
min_chars and sub_string from the configuration apply.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 2 {
				token = args[1]
			}
			return c.runFilter(args[0], token, input, width)
		},
	}

	cmd.Flags().BoolVar(&input, "input", false, "apply the token as text input")
	cmd.Flags().Float64Var(&width, "width", 0, "container width (default: manifest width or 1000)")

	return cmd
}

func (c *CLI) runFilter(path, token string, input bool, width float64) error {
	m, err := c.loadManifest(path)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", path, err)
	}
	if width == 0 {
		width = m.Width
	}
	if width == 0 {
		width = 1000
	}

	h := host.NewMemory(width)
	m.Populate(h)
	ctrl, err := autofilter.New(c.config, h, m.Elements(),
		autofilter.WithLogger(c.Logger),
		autofilter.WithFrames(autofilter.SyncFrames{}))
	if err != nil {
		return err
	}
	defer ctrl.Destroy()

	var matched bool
	if input {
		ctrl.Input(token)
		ctrl.Flush()
		active, _ := ctrl.ActiveFilter()
		matched = active == "" || ctrl.VisibleCount() > 0
	} else {
		matched = ctrl.Click(token)
	}

	active, _ := ctrl.ActiveFilter()
	fmt.Println(renderTags(buttonValues(ctrl.Tags()), active, -1))
	printNewline()
	fmt.Println(itemTable(m, ctrl))

	if !matched {
		printWarning("No item matches %q", token)
	}
	printStats(ctrl.VisibleCount(), len(m.Items), ctrl.Layout().Columns, false)
	return nil
}

// itemTable lists every item with its visibility and placement.
func itemTable(m *manifest.Manifest, ctrl *autofilter.Controller) string {
	res := ctrl.Layout()
	rows := make([][]string, 0, len(m.Items))
	for _, it := range m.Items {
		col, pos := "-", "-"
		if b, ok := res.Block(it.ID); ok && ctrl.Visible(it.ID) {
			col = strconv.Itoa(b.Column)
			pos = fmt.Sprintf("%.0f,%.0f", b.X(), b.Y())
		}
		tags := it.Tags
		if tags == "" {
			tags = "(untagged)"
		}
		rows = append(rows, []string{it.ID, it.Label, tags, strconv.FormatBool(ctrl.Visible(it.ID)), col, pos})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Tags", "Visible", "Col", "X,Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(m.Items) && !ctrl.Visible(m.Items[row].ID) {
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}
