package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/lint"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/store"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var id, description string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := errors.ValidateName(name); err != nil {
				return err
			}

			d := model.New(name, c.now())
			d.Description = description
			if id != "" {
				if err := errors.ValidateID(id); err != nil {
					return err
				}
				d.ID = id
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			if _, err := st.Get(ctx, d.ID); err == nil {
				return errors.New(errors.ErrCodeConflict, "diagram %s already exists", d.ID)
			} else if !errors.IsNotFound(err) {
				return err
			}
			if err := st.Put(ctx, d); err != nil {
				return err
			}

			printSuccess("Created %s", StyleHighlight.Render(d.Name))
			printKeyValue("ID", d.ID)
			printNewline()
			printNextStep("Add an actor", fmt.Sprintf("%s actor add %s <name> --type component", appName, d.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "diagram id (default: random uuid)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "diagram description (markdown)")

	return cmd
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored diagrams",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			list, err := st.List(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			if len(list) == 0 {
				printInfo("No diagrams yet")
				printNextStep("Create one", appName+" new <name>")
				return nil
			}
			fmt.Fprintln(out, renderSummaryTable(list, c.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print summaries as JSON")

	return cmd
}

// renderSummaryTable formats diagram summaries as a bordered table.
func renderSummaryTable(list []store.Summary, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID,
			s.Name,
			fmt.Sprint(s.Actors),
			fmt.Sprint(s.Flows),
			fmt.Sprint(s.Steps),
			formatRelativeTime(s.UpdatedAt, now),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Actors", "Flows", "Steps", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return StyleDim
			case col >= 2 && col <= 4:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id|file>",
		Short: "Describe a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDiagram(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			md := describe(d)
			if !raw {
				md, err = c.renderMarkdown(md)
				if err != nil {
					return err
				}
			}
			fmt.Fprint(out, md)

			report := lint.Check(d)
			if n := len(report.Issues); n > 0 {
				printWarning("%s found, run `%s check %s` for details", plural(n, "issue"), appName, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")

	return cmd
}

// renderMarkdown renders md for the terminal with glamour.
func (c *CLI) renderMarkdown(md string) (string, error) {
	style := glamour.WithAutoStyle()
	if c.noColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}

// describe summarizes d as markdown.
func describe(d *model.Diagram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(d.Description))
	}
	fmt.Fprintf(&b, "`%s` · %s · %s · %s · updated %s\n\n",
		d.ID,
		plural(len(d.Actors), "actor"),
		plural(len(d.Flows), "flow"),
		plural(d.TotalSteps(), "step"),
		d.UpdatedAt.UTC().Format(time.RFC3339))

	if len(d.Actors) > 0 {
		b.WriteString("## Actors\n\n| ID | Name | Type | Scope |\n|---|---|---|---|\n")
		for _, a := range d.Actors {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(a.ID), cell(a.Name), a.Type, a.Scope)
		}
		b.WriteString("\n")
	}

	if len(d.States) > 0 {
		b.WriteString("## States\n\n| ID | Name | Owner | Type |\n|---|---|---|---|\n")
		for _, s := range d.States {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(s.ID), cell(s.Name), cell(s.Owner), cell(s.DataType))
		}
		b.WriteString("\n")
	}

	for _, f := range d.Flows {
		fmt.Fprintf(&b, "## Flow: %s\n\n", f.Name)
		if f.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(f.Description))
		}
		fmt.Fprintf(&b, "Triggered by **%s** `%s` on `%s`\n\n", f.Trigger.Type, f.Trigger.Action, f.Trigger.Actor)
		for i, s := range f.Steps {
			fmt.Fprintf(&b, "%d. `%s` %s → %s", i+1, s.Type, orDash(s.From), orDash(s.To))
			if s.Action != "" {
				fmt.Fprintf(&b, ": %s", s.Action)
			}
			if s.State != "" {
				fmt.Fprintf(&b, " (%s)", s.State)
			}
			if s.IsAsync {
				b.WriteString(" *async*")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.Conditions) > 0 {
		b.WriteString("## Conditions\n\n")
		for _, cond := range d.Conditions {
			fmt.Fprintf(&b, "- `%s`: `%s`\n", cond.ID, cond.Expression)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// rmCommand creates the "rm" command.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete stored diagrams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			for _, id := range args {
				d, err := st.Get(ctx, id)
				if err != nil {
					return err
				}
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted %s %s", StyleHighlight.Render(d.Name), StyleDim.Render(id))
			}
			return nil
		},
	}
}

// formatRelativeTime renders t relative to now, switching to a date after
// a week.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
