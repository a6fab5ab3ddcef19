package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imishinist/congstat/internal/config"
	"github.com/imishinist/congstat/internal/models"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List and validate log layouts",
	Long: `List the built-in layouts and those loaded from --layouts-file, validated
against their sample lines, and show which layout each configured flavor uses.`,
	RunE: runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	tok, err := cfg.Tokenizer()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry(tok)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LAYOUT\tEVENT\tTOKENS\tFIELDS")
	for _, name := range reg.Names() {
		l, err := reg.Get(name)
		if err != nil {
			return err
		}
		event := l.Event
		if event == "" {
			event = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.Name, event, l.NeededTokens(), formatFields(l.Fields))
	}
	tw.Flush()

	fmt.Println()
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FLAVOR\tLAYOUT")
	for _, flavor := range cfg.Flavors {
		l, err := reg.ForFlavor(flavor)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", flavor, l.Name)
	}
	tw.Flush()

	if len(cfg.ExtraLayouts) > 0 {
		fmt.Printf("\nExtra layouts: %s\n", strings.Join(cfg.ExtraLayouts, ", "))
	}
	fmt.Printf("\nAll %d layouts valid\n", len(reg.Names()))
	return nil
}

func formatFields(fields []models.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s@%d", f.Name, f.Index)
	}
	return strings.Join(parts, " ")
}
