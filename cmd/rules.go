package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentscore/scoring"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the scoring criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		renderCatalog(cmd.OutOrStdout(), engine.Catalog())
		return nil
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <field>",
	Short: "List the criteria a field or field category influences",
	Long: `Prints the criteria re-evaluated when the given form field changes. Accepts raw
field names (title, urlSlug, ...) and the categories seoTitle, keywords, url,
body and locale.`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	field := args[0]
	idx := engine.Impact()
	if !idx.Known(field) {
		return fmt.Errorf("%w: %q", scoring.ErrUnknownField, field)
	}

	out := cmd.OutOrStdout()
	ids := idx.Affected(field)
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s affects %d criteria", field, len(ids))))
	for _, id := range ids {
		r, _ := engine.Catalog().Rule(id)
		fmt.Fprintf(out, " %s  %s\n", idStyle.Render(fmt.Sprintf("%-4d", id)), r.Description)
	}
	return nil
}
