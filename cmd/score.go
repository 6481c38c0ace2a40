package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentscore/formstate"
	"github.com/seo-optimizer/contentscore/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a saved form snapshot",
	Long: `Reads a form state as JSON (top-level fields, stepN objects or "stepN.field"
keys) and prints its SEO score. Pass --previous with an earlier --json output to
list the criteria whose outcome changed.`,
	Example: `  seoscore score -f form.json
  seoscore score -f form.json --json > prev.json
  seoscore score -f edited.json --previous prev.json`,
	RunE: runScore,
}

var (
	scoreFile     string
	scorePrevious string
	scoreJSON     bool
	scoreVerbose  bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Form state JSON file, - for stdin")
	scoreCmd.Flags().StringVar(&scorePrevious, "previous", "", "Result JSON of an earlier run")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the result as JSON")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Show criterion tooltips")
	_ = scoreCmd.MarkFlagRequired("file")
}

func runScore(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, scoreFile)
	if err != nil {
		return err
	}
	values, err := formstate.ResolveJSON(data)
	if err != nil {
		return err
	}

	var prev *scoring.Result
	if scorePrevious != "" {
		raw, err := os.ReadFile(scorePrevious)
		if err != nil {
			return fmt.Errorf("failed to read previous result: %w", err)
		}
		prev = new(scoring.Result)
		if err := json.Unmarshal(raw, prev); err != nil {
			return fmt.Errorf("failed to parse previous result: %w", err)
		}
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	res := engine.EvaluateSince(values, prev)

	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderResult(out, res, scoreVerbose)
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form state: %w", err)
	}
	return data, nil
}
