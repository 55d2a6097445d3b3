package cli

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/errors"
	sfio "github.com/matzehuels/stateflow/pkg/io"
)

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var id string
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or YAML diagram document into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := sfio.ImportFile(args[0], c.now())
			if err != nil {
				return err
			}
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
			if !force {
				if _, err := st.Get(ctx, d.ID); err == nil {
					return errors.New(errors.ErrCodeConflict, "diagram %s already exists (use --force to replace it)", d.ID)
				} else if !errors.IsNotFound(err) {
					return err
				}
			}
			if err := st.Put(ctx, d); err != nil {
				return err
			}

			printSuccess("Imported %s", StyleHighlight.Render(d.Name))
			printKeyValue("ID", d.ID)
			printStats(len(d.Actors), d.TotalSteps(), 0, false)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "store under this id instead of the document's")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing diagram with the same id")

	return cmd
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var formatStr, output string
	var toClipboard bool

	cmd := &cobra.Command{
		Use:   "export <id|file>",
		Short: "Export a diagram as a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := sfio.DetectFormat(output)
			if formatStr != "" {
				f, err := sfio.ParseFormat(formatStr)
				if err != nil {
					return err
				}
				format = f
			}

			d, err := c.loadDiagram(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := sfio.Export(d, format)
			if err != nil {
				return err
			}

			switch {
			case toClipboard:
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				printSuccess("Copied %s (%s) to the clipboard", d.Name, format)
			case output != "":
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Exported %s", d.Name)
				printFile(output)
			default:
				_, err = out.Write(data)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "document format: json (default), yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format inferred from the extension)")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the document to the system clipboard")

	return cmd
}
