package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/lint"
)

// checkCommand creates the "check" command. It exits non-zero only when
// error-severity issues are found.
func (c *CLI) checkCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <id|file>",
		Short: "Report dangling references and other diagram problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.loadDiagram(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report := lint.Check(d)

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(report)
			}

			if report.HasErrors() {
				return errors.New(errors.ErrCodeInvalidInput, "%s has %s", d.Name, plural(report.Count(lint.SeverityError), "error"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func printReport(r lint.Report) {
	if len(r.Issues) == 0 {
		printSuccess("No issues found")
		return
	}
	for _, i := range r.Issues {
		switch i.Severity {
		case lint.SeverityError:
			printError("%s %s", StyleValue.Render(i.Path), i.Message)
		case lint.SeverityWarning:
			printWarning("%s %s", i.Path, i.Message)
		default:
			printInfo("%s %s", StyleDim.Render(i.Path), i.Message)
		}
		printDetail("%s", i.Kind)
	}
	printRule(40)
	printInline("%s, %s, %s\n",
		plural(r.Count(lint.SeverityError), "error"),
		plural(r.Count(lint.SeverityWarning), "warning"),
		plural(r.Count(lint.SeverityInfo), "note"))
}
