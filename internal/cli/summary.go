package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"semgraph/internal/domain"
)

var (
	summaryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
)

// renderSummary is the block printed after a successful build.
func renderSummary(res *domain.Result) string {
	rows := [][2]string{
		{"Documents", fmt.Sprint(len(res.Graph.Nodes))},
		{"Clusters", fmt.Sprint(res.Clusters)},
		{"Links", fmt.Sprint(len(res.Graph.Links))},
		{"Output", res.Output},
		{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
	}
	lines := []string{summaryTitleStyle.Render("Analysis complete")}
	for _, r := range rows {
		lines = append(lines, summaryLabelStyle.Render(r[0])+r[1])
	}
	return summaryBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}
