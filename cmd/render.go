package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seo-optimizer/contentscore/scoring"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	tipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	scoreBox     = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())

	statusColors = map[scoring.Status]lipgloss.Color{
		scoring.StatusSuccess:  "10",
		scoring.StatusWarning:  "11",
		scoring.StatusError:    "9",
		scoring.StatusPending:  "8",
		scoring.StatusInactive: "8",
	}
	statusIcons = map[scoring.Status]string{
		scoring.StatusSuccess:  "✓",
		scoring.StatusWarning:  "!",
		scoring.StatusError:    "✗",
		scoring.StatusPending:  "…",
		scoring.StatusInactive: "-",
	}
)

func statusStyle(s scoring.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[s])
}

func formatPoints(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// renderResult prints the overall score followed by every section and its
// criteria. Tooltips are only shown when verbose is set.
func renderResult(w io.Writer, res scoring.Result, verbose bool) {
	overall := res.Overall
	fmt.Fprintln(w, scoreBox.Render(fmt.Sprintf("SEO score %d/%d", overall.Score, overall.MaxScore)))
	if len(overall.ChangedCriterionIDs) > 0 {
		ids := make([]string, len(overall.ChangedCriterionIDs))
		for i, id := range overall.ChangedCriterionIDs {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(w, "Changed since previous: %s\n", strings.Join(ids, ", "))
	}

	for _, s := range res.Sections {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n",
			sectionStyle.Render(fmt.Sprintf("%s (%d%%)", s.Title, s.WeightPercent)),
			statusStyle(s.Type).Render(fmt.Sprintf("%d%% %s", s.ProgressPercent, s.Type)))
		fmt.Fprintln(w, strings.Repeat("─", 72))

		for _, item := range s.Items {
			fmt.Fprintf(w, " %s %s %-50s %s\n",
				statusStyle(item.Status).Render(statusIcons[item.Status]),
				idStyle.Render(fmt.Sprintf("%d", item.RuleID)),
				item.Description,
				fmt.Sprintf("%s/%s", formatPoints(item.EarnedScore), formatPoints(item.MaxScore)))
			if item.ActionLabel != "" {
				fmt.Fprintf(w, "       %s\n", actionStyle.Render("→ "+item.ActionLabel))
			}
			if verbose && item.Tooltip != "" {
				fmt.Fprintf(w, "       %s\n", tipStyle.Render(item.Tooltip))
			}
		}
	}
}

// renderCatalog prints the rule table grouped by section
func renderCatalog(w io.Writer, catalog *scoring.Catalog) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(" %-4s  %-5s  %-20s  %s", "ID", "MAX", "FIELD", "DESCRIPTION")))
	for _, s := range catalog.Sections() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("%s: %d%% of the score, %s points",
			s.Title, s.WeightPercent, formatPoints(s.MaxPoints))))
		fmt.Fprintln(w, strings.Repeat("─", 72))
		for _, id := range s.RuleIDs {
			r, _ := catalog.Rule(id)
			desc := r.Description
			if r.Inactive {
				desc += " (inactive)"
			}
			fmt.Fprintf(w, " %s  %-5s  %-20s  %s\n",
				idStyle.Render(fmt.Sprintf("%-4d", r.ID)),
				formatPoints(r.MaxScore),
				r.InputField,
				desc)
		}
	}
	fmt.Fprintf(w, "\nTotal points: %s\n", formatPoints(catalog.TotalPoints()))
}
