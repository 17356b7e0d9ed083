package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"social-insights-service/internal/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1)

	impactStyles = map[domain.Impact]lipgloss.Style{
		domain.ImpactHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.ImpactMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.ImpactLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// RenderReport formats a report for the terminal.
func RenderReport(r *Report) string {
	a := r.Aggregates

	summary := strings.Join([]string{
		metric("Posts", fmt.Sprint(a.TotalPosts)),
		metric("Likes", fmt.Sprint(a.TotalLikes)),
		metric("Comments", fmt.Sprint(a.TotalComments)),
		metric("Shares", fmt.Sprint(a.TotalShares)),
		metric("Avg engagement", fmt.Sprintf("%.2f%%", a.AvgEngagement)),
		metric("Trend", string(a.Trend)),
	}, "\n")

	sections := []string{
		headingStyle.Render("Summary"),
		boxStyle.Render(summary),
	}

	if len(a.Platforms) > 0 {
		rows := make([]string, len(a.Platforms))
		for i, g := range domain.SortGroups(a.Platforms, domain.SortByEngagement) {
			rows[i] = fmt.Sprintf("%-12s %4d posts  %7.2f%%  %s", g.Key, g.Posts, g.AvgEngagement, g.Performance)
		}
		sections = append(sections, headingStyle.Render("Platforms"), strings.Join(rows, "\n"))
	}

	if len(r.Insights) > 0 {
		rows := make([]string, len(r.Insights))
		for i, in := range r.Insights {
			style, ok := impactStyles[in.Impact]
			if !ok {
				style = labelStyle
			}
			rows[i] = style.Render("● ") + valueStyle.Render(in.Title) + "\n  " + in.Description
		}
		sections = append(sections, headingStyle.Render("Insights"), strings.Join(rows, "\n"))
	}

	sections = append(sections,
		headingStyle.Render("Forecast"),
		fmt.Sprintf("next weighted score %.0f (%s)", r.Forecast.NextWeighted, r.Forecast.Direction),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func metric(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-15s", label)) + valueStyle.Render(value)
}
